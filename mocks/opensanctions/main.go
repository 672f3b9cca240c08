// Command opensanctions-mock serves a deterministic subset of the
// OpenSanctions /match API for local runs and e2e tests.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "8082"
	defaultLatencyMs = "50"
	defaultSize      = 5
)

type matchRequest struct {
	Query struct {
		Name      string `json:"name"`
		BirthDate string `json:"birthDate"`
	} `json:"query"`
	Size int `json:"size"`
}

type entity struct {
	Name    []string `json:"name"`
	Country []string `json:"country"`
	Schema  string   `json:"schema"`
}

type target struct {
	URL string `json:"url"`
}

type result struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Dataset string  `json:"dataset"`
	Score   float64 `json:"score"`
	Entity  entity  `json:"entity"`
	Target  target  `json:"target"`
}

type matchResponse struct {
	Results []result `json:"results"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	apiKey    = os.Getenv("API_KEY")
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
)

// Magic name fragments let e2e tests steer the response. Matching is
// case-insensitive on the query name.
var magicScores = []struct {
	fragment string
	score    float64
	dataset  string
	schema   string
}{
	{"sanctioned", 0.97, "us_ofac_sdn", "Person"},
	{"pep", 0.88, "everypolitician", "Person"},
	{"watchlist", 0.72, "interpol_red_notices", "Person"},
	{"clean", 0, "", ""},
}

func main() {
	port := getEnv("PORT", defaultPort)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /match", handleMatch)
	mux.HandleFunc("POST /match/{dataset}", handleMatch)

	log.Printf("mock OpenSanctions API starting on port %s", port)
	log.Printf("api key required: %t", apiKey != "")
	log.Printf("simulated latency: %dms", latencyMs)

	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "opensanctions-mock",
		"version": "1.0.0",
	})
}

func handleMatch(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	if apiKey != "" {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "ApiKey ")
		if !ok || got != apiKey {
			sendError(w, "missing or invalid API key", http.StatusUnauthorized)
			return
		}
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Query.Name)
	if name == "" {
		sendError(w, "query.name is required", http.StatusBadRequest)
		return
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "outage"):
		sendError(w, "upstream index unavailable", http.StatusServiceUnavailable)
		return
	case strings.Contains(lower, "ratelimit"):
		sendError(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	size := req.Size
	if size <= 0 {
		size = defaultSize
	}
	results := generateResults(name, size)
	writeJSON(w, http.StatusOK, matchResponse{Results: results})
	log.Printf("match %q -> %d result(s)", name, len(results))
}

func generateResults(name string, size int) []result {
	lower := strings.ToLower(name)
	for _, m := range magicScores {
		if !strings.Contains(lower, m.fragment) {
			continue
		}
		if m.score == 0 {
			return []result{}
		}
		return []result{newResult(name, m.score, m.dataset, m.schema, 0)}
	}

	// Unknown names get up to three deterministic candidates scoring below 0.6.
	hash := sha256.Sum256([]byte(lower))
	n := min(int(hash[0]%4), size)
	out := make([]result, 0, n)
	for i := range n {
		score := float64(hash[i+1]) / 255 * 0.6
		out = append(out, newResult(name, score, "eu_fsf", "Person", i+1))
	}
	// Provider order is not score order.
	return out
}

func newResult(name string, score float64, dataset, schema string, variant int) result {
	id := "NK-mock-" + strconv.Itoa(variant) + "-" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return result{
		ID:      id,
		Name:    strings.ToUpper(name),
		Dataset: dataset,
		Score:   score,
		Entity: entity{
			Name:    []string{strings.ToUpper(name)},
			Country: []string{"xx"},
			Schema:  schema,
		},
		Target: target{URL: "https://www.opensanctions.org/entities/" + id + "/"},
	}
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, errorResponse{Error: http.StatusText(code), Message: message, Code: code})
	log.Printf("error response: %d - %s", code, message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid integer value for %s, using default: %s", key, defaultValue)
		n, _ = strconv.Atoi(defaultValue)
	}
	return n
}
