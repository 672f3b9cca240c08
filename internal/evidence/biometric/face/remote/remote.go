// Package remote implements a face engine backed by an HTTP face service.
//
// The service exposes POST /detect and POST /embed taking a base64 PNG image,
// and GET /health.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/platform/imaging"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Engine calls the remote face service.
type Engine struct {
	baseURL string
	client  HTTPDoer
}

// New creates an engine for the service at baseURL. A nil client gets a
// default client with a 30s timeout.
func New(baseURL string, client HTTPDoer) *Engine {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Engine{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type wireFace struct {
	Box       [4]float32  `json:"box"`
	Score     float32     `json:"score"`
	Landmarks [10]float32 `json:"landmarks"`
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Faces []wireFace `json:"faces"`
}

type embedRequest struct {
	Image string   `json:"image"`
	Face  wireFace `json:"face"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func toWire(d face.Detection) wireFace {
	return wireFace{Box: [4]float32{d.X, d.Y, d.W, d.H}, Score: d.Score, Landmarks: d.Landmarks}
}

func fromWire(w wireFace) face.Detection {
	return face.Detection{X: w.Box[0], Y: w.Box[1], W: w.Box[2], H: w.Box[3], Score: w.Score, Landmarks: w.Landmarks}
}

// Detect returns every face the service found.
func (e *Engine) Detect(ctx context.Context, img image.Image) ([]face.Detection, error) {
	encoded, err := encode(img)
	if err != nil {
		return nil, err
	}
	var resp detectResponse
	if err := e.post(ctx, "/detect", detectRequest{Image: encoded}, &resp); err != nil {
		return nil, err
	}
	faces := make([]face.Detection, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, fromWire(f))
	}
	return faces, nil
}

// Embed returns the feature vector of the given face.
func (e *Engine) Embed(ctx context.Context, img image.Image, d face.Detection) ([]float32, error) {
	encoded, err := encode(img)
	if err != nil {
		return nil, err
	}
	var resp embedResponse
	if err := e.post(ctx, "/embed", embedRequest{Image: encoded, Face: toWire(d)}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

// Health checks the service health endpoint.
func (e *Engine) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("face engine health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face engine unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (e *Engine) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("call face engine %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read face engine %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face engine %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode face engine %s response: %w", path, err)
	}
	return nil
}

func encode(img image.Image) (string, error) {
	png, err := imaging.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encode face image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
