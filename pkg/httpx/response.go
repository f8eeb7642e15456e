package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform success wrapper for all API responses.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Count   *int `json:"count,omitempty"` // set on list responses
}

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded; use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes data wrapped in the success envelope.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// OKList writes a slice wrapped in the success envelope with its count.
func OKList(w http.ResponseWriter, status int, data any, count int) {
	JSON(w, status, Envelope{Success: true, Data: data, Count: &count})
}
