package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthHandler_Healthy(t *testing.T) {
	h := HealthHandler(ServiceInfo{Name: "catalog", Version: "test", Environment: "testing"}, stubPinger{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Service != "catalog" || body.Environment != "testing" {
		t.Errorf("unexpected service identity: %+v", body)
	}
	if body.Database.Status != "healthy" {
		t.Errorf("expected healthy database, got %+v", body.Database)
	}
	if body.Cache != nil {
		t.Error("cache section must be absent when no cache pinger is wired")
	}
	if body.Memory.HeapUsed == "" || body.Memory.RSS == "" {
		t.Errorf("memory stats missing: %+v", body.Memory)
	}
	if body.Uptime < 0 {
		t.Errorf("negative uptime: %v", body.Uptime)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := HealthHandler(ServiceInfo{Name: "catalog"}, stubPinger{err: errors.New("connection refused")}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Database.Status != "unhealthy" || body.Database.Error == "" {
		t.Errorf("expected unhealthy database with reason, got %+v", body.Database)
	}
}

// TestHealthHandler_CacheDownDoesNotAffectStatus verifies the cache probe is
// informational only.
func TestHealthHandler_CacheDownDoesNotAffectStatus(t *testing.T) {
	h := HealthHandler(ServiceInfo{Name: "catalog"}, stubPinger{}, stubPinger{err: errors.New("redis down")})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 despite cache failure, got %d", rr.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Cache == nil || body.Cache.Status != "unhealthy" {
		t.Errorf("expected unhealthy cache section, got %+v", body.Cache)
	}
}
