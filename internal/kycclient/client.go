// Package kycclient is a small HTTP client for the verification API.
package kycclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"kycgate/internal/platform/health"
	"kycgate/internal/verification"
	"kycgate/internal/verification/handler"
)

const maxErrorBody = 64 << 10

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// File is one image part of an upload.
type File struct {
	Name string
	Data []byte
}

// Upload is the multipart body of a verification request.
type Upload struct {
	Front    File
	Back     *File
	Selfie   File
	FullName string
	DOB      string
}

// Client talks to a running server.
type Client struct {
	baseURL string
	token   string
	http    HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) { c.http = d }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify submits an upload to POST /api/kyc/verify.
func (c *Client) Verify(ctx context.Context, u Upload) (*verification.Result, error) {
	body, contentType, err := encodeUpload(u)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/kyc/verify", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var result verification.Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status fetches GET /health.
func (c *Client) Status(ctx context.Context) (*health.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	var status health.StatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Readiness fetches GET /health/ready. A not-ready server is reported in the
// response, not as an error.
func (c *Client) Readiness(ctx context.Context) (*health.ReadinessResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return nil, err
	}
	var ready health.ReadinessResponse
	err = c.do(req, &ready)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && ready.Status != "" {
		return &ready, nil
	}
	if err != nil {
		return nil, err
	}
	return &ready, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr) //nolint:errcheck // plain-text bodies keep the status only
		// Readiness reports its checks on 503.
		_ = json.Unmarshal(data, out) //nolint:errcheck // see above
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func encodeUpload(u Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	parts := []struct {
		field string
		file  *File
	}{
		{handler.FieldFront, &u.Front},
		{handler.FieldSelfie, &u.Selfie},
		{handler.FieldBack, u.Back},
	}
	for _, p := range parts {
		if p.file == nil {
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(p.file.Data); err != nil {
			return nil, "", err
		}
	}
	for field, value := range map[string]string{handler.FieldFullName: u.FullName, handler.FieldDOB: u.DOB} {
		if value == "" {
			continue
		}
		if err := mw.WriteField(field, value); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
