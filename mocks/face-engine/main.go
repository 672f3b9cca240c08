// Command face-engine-mock implements the remote face engine protocol
// (POST /detect, POST /embed, GET /health) with a toy detector for local runs.
//
// A face is "detected" in the centre of any image that is not flat. The
// embedding is a normalised 16x8 grayscale thumbnail of the face box, so the
// same photo matches itself and unrelated photos score low.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort      = "8090"
	defaultLatencyMs = "20"

	thumbW = 8
	thumbH = 16
	// Images whose luma standard deviation is below this have no face.
	flatThreshold = 4.0
)

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

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

func main() {
	port := getEnv("PORT", defaultPort)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /detect", handleDetect)
	mux.HandleFunc("POST /embed", handleEmbed)

	log.Printf("mock face engine starting on port %s", port)
	log.Printf("simulated latency: %dms", latencyMs)

	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "face-engine-mock",
		"version": "1.0.0",
	})
}

func handleDetect(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	img, err := decode(req.Image)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	faces := []wireFace{}
	if stddev(img, img.Bounds()) >= flatThreshold {
		faces = append(faces, centreFace(img.Bounds()))
	}
	writeJSON(w, http.StatusOK, detectResponse{Faces: faces})
}

func handleEmbed(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	img, err := decode(req.Image)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	b := req.Face.Box
	box := image.Rect(int(b[0]), int(b[1]), int(b[0]+b[2]), int(b[1]+b[3])).Intersect(img.Bounds())
	if box.Empty() {
		sendError(w, "face box outside image", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, embedResponse{Embedding: thumbnail(img, box)})
}

func decode(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func centreFace(b image.Rectangle) wireFace {
	w, h := float32(b.Dx()), float32(b.Dy())
	x, y := float32(b.Min.X)+w*0.2, float32(b.Min.Y)+h*0.2
	fw, fh := w*0.6, h*0.6
	return wireFace{
		Box:   [4]float32{x, y, fw, fh},
		Score: 0.9,
		Landmarks: [10]float32{
			x + fw*0.3, y + fh*0.4, // right eye
			x + fw*0.7, y + fh*0.4, // left eye
			x + fw*0.5, y + fh*0.55, // nose
			x + fw*0.35, y + fh*0.75, // mouth right
			x + fw*0.65, y + fh*0.75, // mouth left
		},
	}
}

func luma(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257
}

func stddev(img image.Image, box image.Rectangle) float64 {
	var sum, sq float64
	n := float64(box.Dx() * box.Dy())
	if n == 0 {
		return 0
	}
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			v := luma(img, x, y)
			sum += v
			sq += v * v
		}
	}
	mean := sum / n
	return math.Sqrt(math.Max(sq/n-mean*mean, 0))
}

// thumbnail averages box into thumbW x thumbH cells, centres the cells on
// their mean and scales them to unit length.
func thumbnail(img image.Image, box image.Rectangle) []float32 {
	cells := make([]float64, thumbW*thumbH)
	counts := make([]float64, thumbW*thumbH)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		cy := (y - box.Min.Y) * thumbH / box.Dy()
		for x := box.Min.X; x < box.Max.X; x++ {
			cx := (x - box.Min.X) * thumbW / box.Dx()
			cells[cy*thumbW+cx] += luma(img, x, y)
			counts[cy*thumbW+cx]++
		}
	}
	var mean float64
	for i := range cells {
		if counts[i] > 0 {
			cells[i] /= counts[i]
		}
		mean += cells[i]
	}
	mean /= float64(len(cells))

	var norm float64
	for i := range cells {
		cells[i] -= mean
		norm += cells[i] * cells[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(cells))
	if norm == 0 {
		return out
	}
	for i, v := range cells {
		out[i] = float32(v / norm)
	}
	return out
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
