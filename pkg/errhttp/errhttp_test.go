package errhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghuser/catalog/pkg/logger"
	domain "github.com/ghuser/catalog/services/catalog/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)                          {}
func (nopLogger) Error(string, ...any)                         {}
func (nopLogger) Warn(string, ...any)                          {}
func (nopLogger) Debug(string, ...any)                         {}
func (nopLogger) InfoContext(context.Context, string, ...any)  {}
func (nopLogger) ErrorContext(context.Context, string, ...any) {}
func (nopLogger) WarnContext(context.Context, string, ...any)  {}
func (nopLogger) DebugContext(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logger.Logger                  { return l }
func (nopLogger) ToSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResponder(environment string) *Responder {
	return New(nopLogger{}, environment)
}

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			"validation error",
			&domain.ValidationError{Fields: []domain.FieldError{{Field: "name", Message: "Name is required"}}},
			http.StatusBadRequest,
			"Validation error",
		},
		{
			"sku conflict",
			&domain.ConflictError{Field: "sku", Value: "ABC-1"},
			http.StatusConflict,
			"Duplicate entry",
		},
		{
			"route not found",
			&domain.NotFoundError{Method: http.MethodGet, Path: "/nope"},
			http.StatusNotFound,
			"Route not found: GET /nope",
		},
		{
			"item not found",
			domain.ErrItemNotFound,
			http.StatusNotFound,
			"Resource not found",
		},
		{
			"wrapped item not found",
			fmt.Errorf("get item: %w", domain.ErrItemNotFound),
			http.StatusNotFound,
			"Resource not found",
		},
		{
			"unauthorized",
			domain.ErrUnauthorized,
			http.StatusUnauthorized,
			"Unauthorized",
		},
		{
			"forbidden",
			domain.ErrForbidden,
			http.StatusForbidden,
			"Forbidden",
		},
		{
			"rate limited",
			domain.ErrRateLimited,
			http.StatusTooManyRequests,
			"Too many requests from this IP, please try again later.",
		},
		{
			"unknown error",
			errors.New("something unexpected"),
			http.StatusInternalServerError,
			"Internal server error",
		},
	}

	re := newTestResponder("production")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			re.WriteError(w, httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody), tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body.Success {
				t.Error("success must be false on errors")
			}
			if body.Error != tt.wantError {
				t.Errorf("error message: got %q, want %q", body.Error, tt.wantError)
			}
			if body.Timestamp.IsZero() {
				t.Error("timestamp must be set")
			}
		})
	}
}

func TestWriteError_ValidationDetails(t *testing.T) {
	re := newTestResponder("production")
	w := httptest.NewRecorder()
	re.WriteError(w, httptest.NewRequest(http.MethodPost, "/api/items", http.NoBody),
		&domain.ValidationError{Fields: []domain.FieldError{
			{Field: "name", Message: "Name is required"},
			{Field: "price", Message: "Price is required"},
		}})

	var body struct {
		Details []domain.FieldError `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Details) != 2 {
		t.Fatalf("expected both field errors reported, got %d", len(body.Details))
	}
	if body.Details[1].Field != "price" {
		t.Errorf("unexpected second detail: %+v", body.Details[1])
	}
}

func TestWriteError_StackOnlyInDevelopment(t *testing.T) {
	cause := errors.New("db exploded")

	w := httptest.NewRecorder()
	newTestResponder("development").WriteError(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), cause)
	var dev ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dev); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if dev.Stack == "" {
		t.Error("development responses must carry a stack trace")
	}
	if dev.Details != "db exploded" {
		t.Errorf("development responses must carry the cause, got %v", dev.Details)
	}

	w = httptest.NewRecorder()
	newTestResponder("production").WriteError(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), cause)
	var prod ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &prod); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if prod.Stack != "" || prod.Details != nil {
		t.Errorf("production responses must suppress detail, got %+v", prod)
	}
}

func TestNotFoundHandler(t *testing.T) {
	re := newTestResponder("production")
	w := httptest.NewRecorder()
	re.NotFoundHandler()(w, httptest.NewRequest(http.MethodDelete, "/api/nothing", http.NoBody))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error != "Route not found: DELETE /api/nothing" {
		t.Errorf("unexpected message: %q", body.Error)
	}
}

func TestRateLimitHandler_RetryHint(t *testing.T) {
	re := newTestResponder("production")
	w := httptest.NewRecorder()
	w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Minute).Unix()))
	re.RateLimitHandler()(w, httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.RetryAfter <= 0 || body.RetryAfter > 60 {
		t.Errorf("retryAfter out of range: %d", body.RetryAfter)
	}
}
