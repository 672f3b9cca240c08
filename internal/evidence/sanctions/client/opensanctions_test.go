package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/evidence/sanctions"
)

type OpenSanctionsClientSuite struct {
	suite.Suite
}

func TestOpenSanctionsClientSuite(t *testing.T) {
	suite.Run(t, new(OpenSanctionsClientSuite))
}

func (s *OpenSanctionsClientSuite) newClient(handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, APIKey: "secret", Timeout: 2 * time.Second})
}

func (s *OpenSanctionsClientSuite) TestRequestShape() {
	var captured map[string]any
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/match", r.URL.Path)
		s.Equal("application/json", r.Header.Get("Accept"))
		s.Equal("ApiKey secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		s.Require().NoError(json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	s.Run("with birth date", func() {
		matches, err := client.Lookup(context.Background(), sanctions.Query{Name: "Jane Doe", BirthDate: "1980-01-02"}, 5)
		s.Require().NoError(err)
		s.Empty(matches)
		s.Equal(map[string]any{
			"query": map[string]any{"name": "Jane Doe", "birthDate": "1980-01-02"},
			"size":  float64(5),
		}, captured)
	})

	s.Run("without birth date", func() {
		_, err := client.Lookup(context.Background(), sanctions.Query{Name: "Jane Doe"}, 3)
		s.Require().NoError(err)
		s.Equal(map[string]any{"name": "Jane Doe"}, captured["query"])
	})
}

func (s *OpenSanctionsClientSuite) TestNoAuthorizationWithoutKey() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Empty(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	_, err := New(Config{BaseURL: server.URL}).Lookup(context.Background(), sanctions.Query{Name: "x"}, 1)
	s.NoError(err)
}

func (s *OpenSanctionsClientSuite) TestParsesResults() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":"Q1","name":"Jane Doe","dataset":"us_ofac_sdn","score":0.91,
			 "entity":{"name":"Ignored","country":"ru","schema":"Person"},
			 "target":{"url":"https://example.org/Q1"}},
			{"id":"Q2","name":"","score":null,"entity":{"name":["J. Doe","Jane D."],"country":["gb","us"]}},
			{"id":"Q3"}
		]}`))
	})

	matches, err := client.Lookup(context.Background(), sanctions.Query{Name: "Jane Doe"}, 5)
	s.Require().NoError(err)
	s.Require().Len(matches, 3)

	first := matches[0]
	s.Equal("Q1", *first.ID)
	s.Equal("Jane Doe", *first.Name)
	s.Equal("ru", *first.Country)
	s.Equal("us_ofac_sdn", *first.Dataset)
	s.Equal("Person", *first.Schema)
	s.InDelta(0.91, *first.Score, 1e-9)
	s.Equal("https://example.org/Q1", *first.Link)

	second := matches[1]
	s.Equal("J. Doe", *second.Name)
	s.Equal("gb", *second.Country)
	s.Nil(second.Score)
	s.Nil(second.Link)

	third := matches[2]
	s.Nil(third.Name)
	s.Nil(third.Country)
	s.Nil(third.Schema)
}

func (s *OpenSanctionsClientSuite) TestStatusClassification() {
	cases := []struct {
		status    int
		category  sanctions.ErrorCategory
		retryable bool
	}{
		{http.StatusUnauthorized, sanctions.ErrorAuthentication, false},
		{http.StatusForbidden, sanctions.ErrorAuthentication, false},
		{http.StatusTooManyRequests, sanctions.ErrorRateLimited, true},
		{http.StatusInternalServerError, sanctions.ErrorOutage, true},
		{http.StatusServiceUnavailable, sanctions.ErrorOutage, true},
		{http.StatusGatewayTimeout, sanctions.ErrorTimeout, true},
		{http.StatusBadRequest, sanctions.ErrorBadData, false},
	}
	for _, tc := range cases {
		client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := client.Lookup(context.Background(), sanctions.Query{Name: "x"}, 1)
		s.Require().Error(err, "status %d", tc.status)
		s.Equal(tc.category, sanctions.CategoryOf(err), "status %d", tc.status)
		s.Equal(tc.retryable, sanctions.IsRetryable(err), "status %d", tc.status)
	}
}

func (s *OpenSanctionsClientSuite) TestMalformedBody() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":`))
	})
	_, err := client.Lookup(context.Background(), sanctions.Query{Name: "x"}, 1)
	s.Equal(sanctions.ErrorBadData, sanctions.CategoryOf(err))
}

func (s *OpenSanctionsClientSuite) TestHealth() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	s.NoError(client.Health(context.Background()))
}

func TestLookupTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Lookup(context.Background(), sanctions.Query{Name: "x"}, 1)
	require.Error(t, err)
	assert.Equal(t, sanctions.ErrorTimeout, sanctions.CategoryOf(err))
	assert.True(t, sanctions.IsRetryable(err))
}

func TestConnectionRefusedIsOutage(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(Config{BaseURL: url, Timeout: time.Second}).Lookup(context.Background(), sanctions.Query{Name: "x"}, 1)
	require.Error(t, err)
	assert.Equal(t, sanctions.ErrorOutage, sanctions.CategoryOf(err))
}
