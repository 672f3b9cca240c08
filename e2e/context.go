package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds state between test steps.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	Token            string
	LastResponse     *http.Response
	LastResponseBody []byte

	files  map[string][]byte
	fields map[string]string
}

// NewTestContext creates a new test context from BASE_URL and KYC_TOKEN.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	tc := &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
	}
	tc.Reset()
	return tc
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.Token = os.Getenv("KYC_TOKEN")
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.files = make(map[string][]byte)
	tc.fields = make(map[string]string)
}

// AttachFile stages an upload part for the next multipart POST.
func (tc *TestContext) AttachFile(field string, data []byte) {
	tc.files[field] = data
}

// SetField stages a form value for the next multipart POST.
func (tc *TestContext) SetField(field, value string) {
	tc.fields[field] = value
}

// ClearToken drops the bearer credential.
func (tc *TestContext) ClearToken() {
	tc.Token = ""
}

// SetToken replaces the bearer credential.
func (tc *TestContext) SetToken(token string) {
	tc.Token = token
}

// POSTMultipart sends the staged files and fields to path.
func (tc *TestContext) POSTMultipart(path string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range tc.files {
		fw, err := mw.CreateFormFile(field, field+".png")
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write form file: %w", err)
		}
	}
	for field, value := range tc.fields {
		if err := mw.WriteField(field, value); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return tc.do(req)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.Token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tc.Token)
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a dotted path from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, key := range strings.Split(field, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		if data, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

// ResponseContains checks if the response body contains a field or text.
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	_, err := tc.GetResponseField(text)
	return err == nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
