// Package client implements the OpenSanctions match API provider.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"kycgate/internal/evidence/sanctions"
)

const (
	ProviderID     = "opensanctions"
	DefaultBaseURL = "https://api.opensanctions.org"
	DefaultTimeout = 20 * time.Second

	maxResponseBytes = 4 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the OpenSanctions client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Client calls POST {base}/match.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  HTTPDoer
}

// New creates an OpenSanctions client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  httpClient,
	}
}

// ID returns the provider identifier.
func (c *Client) ID() string {
	return ProviderID
}

type matchQuery struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"`
}

type matchRequest struct {
	Query matchQuery `json:"query"`
	Size  int        `json:"size"`
}

type matchResponse struct {
	Results []matchResult `json:"results"`
}

type matchResult struct {
	ID      *string  `json:"id"`
	Name    *string  `json:"name"`
	Dataset *string  `json:"dataset"`
	Score   *float64 `json:"score"`
	Entity  *struct {
		Name    flexString `json:"name"`
		Country flexString `json:"country"`
		Schema  *string    `json:"schema"`
	} `json:"entity"`
	Target *struct {
		URL *string `json:"url"`
	} `json:"target"`
}

// flexString decodes a JSON string, the first element of a string array, or null.
type flexString struct {
	value *string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err == nil {
		f.value = s
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		f.value = &list[0]
	}
	return nil
}

func (r matchResult) toMatch() sanctions.Match {
	m := sanctions.Match{
		ID:      r.ID,
		Name:    r.Name,
		Dataset: r.Dataset,
		Score:   r.Score,
	}
	if r.Entity != nil {
		if m.Name == nil || *m.Name == "" {
			m.Name = r.Entity.Name.value
		}
		m.Country = r.Entity.Country.value
		m.Schema = r.Entity.Schema
	}
	if r.Target != nil {
		m.Link = r.Target.URL
	}
	return m
}

// Lookup queries the match endpoint and returns the results in provider order.
//
// Errors: every failure is a *sanctions.ProviderError classified by cause.
func (c *Client) Lookup(ctx context.Context, q sanctions.Query, size int) ([]sanctions.Match, error) {
	body, err := json.Marshal(matchRequest{
		Query: matchQuery{Name: q.Name, BirthDate: q.BirthDate},
		Size:  size,
	})
	if err != nil {
		return nil, sanctions.NewProviderError(sanctions.ErrorInternal, ProviderID, "failed to marshal request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return nil, sanctions.NewProviderError(sanctions.ErrorInternal, ProviderID, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, sanctions.NewProviderError(sanctions.ErrorTimeout, ProviderID, "request timeout", err)
		}
		return nil, sanctions.NewProviderError(sanctions.ErrorOutage, ProviderID, "failed to execute request", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, sanctions.NewProviderError(sanctions.ErrorTimeout, ProviderID, "response timeout", err)
		}
		return nil, sanctions.NewProviderError(sanctions.ErrorBadData, ProviderID, "failed to read response", err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var decoded matchResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, sanctions.NewProviderError(sanctions.ErrorBadData, ProviderID, "failed to parse response", err)
	}

	matches := make([]sanctions.Match, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		matches = append(matches, r.toMatch())
	}
	return matches, nil
}

// Health checks that the provider answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return sanctions.NewProviderError(sanctions.ErrorOutage, ProviderID, "health check failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return sanctions.NewProviderError(sanctions.ErrorOutage, ProviderID,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return sanctions.NewProviderError(sanctions.ErrorAuthentication, ProviderID,
			fmt.Sprintf("authentication failed: %d", status), nil)
	case status == http.StatusTooManyRequests:
		return sanctions.NewProviderError(sanctions.ErrorRateLimited, ProviderID, "rate limit exceeded", nil)
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return sanctions.NewProviderError(sanctions.ErrorTimeout, ProviderID,
			fmt.Sprintf("upstream timeout: %d", status), nil)
	case status >= 500:
		return sanctions.NewProviderError(sanctions.ErrorOutage, ProviderID,
			fmt.Sprintf("provider unavailable: %d", status), nil)
	default:
		return sanctions.NewProviderError(sanctions.ErrorBadData, ProviderID,
			fmt.Sprintf("unexpected status: %d", status), nil)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
