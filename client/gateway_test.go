package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	levels   []Level
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels = append(n.levels, level)
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func newTestGateway(serverURL string, tokens TokenStore, notify Notifier) *Gateway {
	return NewGateway(GatewayOptions{
		BaseURL: serverURL,
		Tokens:  tokens,
		Notify:  notify,
	})
}

func TestGateway_InjectsHeaders(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	_ = tokens.Set("secret-token")

	gw := newTestGateway(srv.URL, tokens, nil)
	var out map[string]any
	if err := gw.Get(context.Background(), "/items", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID must be generated per request")
	}
	if out["ok"] != true {
		t.Errorf("envelope data not decoded: %v", out)
	}
}

func TestGateway_NoTokenNoAuthHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL, NewMemoryTokenStore(), nil)
	if err := gw.Get(context.Background(), "/items", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth {
		t.Error("no Authorization header must be sent without a stored token")
	}
}

// TestGateway_401ClearsTokenWithoutRetry verifies a 401 clears the stored
// credential, invokes the redirect hook exactly once, and does not retry.
func TestGateway_401ClearsTokenWithoutRetry(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	_ = tokens.Set("stale-token")

	var redirects []string
	gw := NewGateway(GatewayOptions{
		BaseURL:           srv.URL,
		Tokens:            tokens,
		CurrentPath:       func() string { return "/items/create" },
		OnUnauthenticated: func(redirect string) { redirects = append(redirects, redirect) },
	})

	err := gw.Get(context.Background(), "/items", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}

	if _, ok := tokens.Token(); ok {
		t.Error("401 must clear the stored token")
	}
	if requests != 1 {
		t.Errorf("401 must not be retried, saw %d requests", requests)
	}
	if len(redirects) != 1 || redirects[0] != "/items/create" {
		t.Errorf("redirect hook: got %v", redirects)
	}
}

// TestGateway_401AtEntryViewKeepsQuiet verifies no redirect or token clearing
// happens when already at the unauthenticated entry view.
func TestGateway_401AtEntryViewKeepsQuiet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	_ = tokens.Set("token")

	var redirected bool
	gw := NewGateway(GatewayOptions{
		BaseURL:           srv.URL,
		Tokens:            tokens,
		CurrentPath:       func() string { return "/" },
		OnUnauthenticated: func(string) { redirected = true },
	})

	if err := gw.Get(context.Background(), "/items", nil); err == nil {
		t.Fatal("expected error")
	}
	if redirected {
		t.Error("no redirect when already at the entry view")
	}
	if _, ok := tokens.Token(); !ok {
		t.Error("token must survive a 401 at the entry view")
	}
}

func TestGateway_StatusSpecificNotifications(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel Level
	}{
		{http.StatusForbidden, LevelError},
		{http.StatusTooManyRequests, LevelWarning},
		{http.StatusInternalServerError, LevelError},
		{http.StatusBadGateway, LevelError},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"success":false,"error":"boom"}`))
		}))

		notify := &recordingNotifier{}
		gw := newTestGateway(srv.URL, nil, notify)

		err := gw.Get(context.Background(), "/items", nil)
		srv.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != tt.status {
			t.Fatalf("status %d: expected APIError, got %v", tt.status, err)
		}
		if notify.count() != 1 {
			t.Fatalf("status %d: expected one notification, got %d", tt.status, notify.count())
		}
		if notify.levels[0] != tt.wantLevel {
			t.Errorf("status %d: level got %q, want %q", tt.status, notify.levels[0], tt.wantLevel)
		}
	}
}

func TestGateway_404DoesNotNotify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Resource not found"}`))
	}))
	defer srv.Close()

	notify := &recordingNotifier{}
	gw := newTestGateway(srv.URL, nil, notify)

	if err := gw.Get(context.Background(), "/items/xyz", nil); err == nil {
		t.Fatal("expected error")
	}
	if notify.count() != 0 {
		t.Errorf("lookups that miss must not toast, got %v", notify.messages)
	}
}

func TestGateway_NetworkFailureNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing is listening anymore

	notify := &recordingNotifier{}
	gw := newTestGateway(srv.URL, nil, notify)

	err := gw.Get(context.Background(), "/items", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failures must not be APIErrors, got %v", apiErr)
	}
	if notify.count() != 1 || notify.levels[0] != LevelError {
		t.Errorf("expected one error notification, got %v", notify.messages)
	}
}
