package httpx

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// Pinger is satisfied by any infrastructure dependency that exposes a Ping
// method (database pool and redis client both qualify).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServiceInfo identifies the running process in the health payload.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

type dependencyHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type memoryUsage struct {
	RSS       string `json:"rss"`
	HeapTotal string `json:"heapTotal"`
	HeapUsed  string `json:"heapUsed"`
}

type healthResponse struct {
	Uptime      float64           `json:"uptime"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Database    dependencyHealth  `json:"database"`
	Cache       *dependencyHealth `json:"cache,omitempty"`
	Memory      memoryUsage       `json:"memory"`
}

// HealthHandler returns a read-only probe handler. It reports process
// uptime, memory usage, and a live database connectivity check; the response
// is 200 when the database probe succeeds and 503 otherwise. The cache probe
// is informational only and never affects the status code. Probe failures
// are reflected in the payload, never raised.
func HealthHandler(info ServiceInfo, db Pinger, cache Pinger) http.HandlerFunc {
	start := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Uptime:      time.Since(start).Seconds(),
			Timestamp:   time.Now().UTC(),
			Service:     info.Name,
			Version:     info.Version,
			Environment: info.Environment,
			Database:    dependencyHealth{Status: "healthy"},
			Memory:      readMemory(),
		}

		if err := db.Ping(ctx); err != nil {
			resp.Database = dependencyHealth{Status: "unhealthy", Error: err.Error()}
		}
		if cache != nil {
			ch := dependencyHealth{Status: "healthy"}
			if err := cache.Ping(ctx); err != nil {
				ch = dependencyHealth{Status: "unhealthy", Error: err.Error()}
			}
			resp.Cache = &ch
		}

		status := http.StatusOK
		if resp.Database.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func readMemory() memoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return memoryUsage{
		RSS:       mb(m.Sys),
		HeapTotal: mb(m.HeapSys),
		HeapUsed:  mb(m.HeapAlloc),
	}
}

func mb(bytes uint64) string {
	return fmt.Sprintf("%d MB", bytes/(1024*1024))
}
