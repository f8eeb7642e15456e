package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/pkg/logger"
)

const requestTimeout = 30 * time.Second

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status    int
	Message   string
	Details   any
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// errorEnvelope mirrors the server's failure payload.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details"`
	RequestID string `json:"requestId"`
}

// dataEnvelope mirrors the server's success payload.
type dataEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

// GatewayOptions configures a Gateway. BaseURL is required; everything else
// has a working default.
type GatewayOptions struct {
	BaseURL string
	Tokens  TokenStore
	Notify  Notifier
	Logger  logger.Logger
	// HTTPClient overrides the default client; mainly for tests.
	HTTPClient *http.Client

	// EntryPath is the unauthenticated entry view, where a 401 redirect
	// lands. Defaults to "/".
	EntryPath string
	// CurrentPath reports the active view path; used to skip the 401
	// redirect when already at the entry view.
	CurrentPath func() string
	// OnUnauthenticated is invoked after a 401 clears the stored token.
	// It receives the path the user should return to after signing in.
	OnUnauthenticated func(redirect string)
}

// Gateway wraps every outbound API call with credential injection, request
// correlation, and centralized failure handling. It never swallows an error:
// logging and notification are side effects, the error is always returned.
type Gateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	notify  Notifier
	log     logger.Logger

	entryPath         string
	currentPath       func() string
	onUnauthenticated func(redirect string)
}

// NewGateway returns a Gateway with a fixed 30 second request timeout.
func NewGateway(opts GatewayOptions) *Gateway {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	notify := opts.Notify
	if notify == nil {
		notify = NopNotifier{}
	}
	entry := opts.EntryPath
	if entry == "" {
		entry = "/"
	}
	return &Gateway{
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		http:              httpClient,
		tokens:            opts.Tokens,
		notify:            notify,
		log:               opts.Logger,
		entryPath:         entry,
		currentPath:       opts.CurrentPath,
		onUnauthenticated: opts.OnUnauthenticated,
	}
}

// Get issues a GET request and decodes the envelope's data field into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (g *Gateway) Patch(ctx context.Context, path string, body, out any) error {
	return g.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out any) error {
	req, err := g.newRequest(ctx, method, path, body)
	if err != nil {
		// Request construction failed before anything left the process.
		g.logError(ctx, "request setup error", method, path, "error", err)
		return err
	}

	res, err := g.http.Do(req)
	if err != nil {
		g.logError(ctx, "no response received", method, path, "error", err)
		g.notify.Notify(LevelError, "No response from the server. Check your network connection.")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		g.logError(ctx, "read response body", method, path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if g.log != nil {
			g.log.DebugContext(ctx, "api success", "method", method, "path", path, "status", res.StatusCode)
		}
		if out == nil {
			return nil
		}
		var env dataEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
		if len(env.Data) == 0 {
			return nil
		}
		return json.Unmarshal(env.Data, out)
	}

	apiErr := g.decodeError(res.StatusCode, raw)
	g.logError(ctx, "api error", method, path,
		"status", apiErr.Status,
		"error", apiErr.Message,
		"request_id", apiErr.RequestID,
	)
	g.react(apiErr)
	return apiErr
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if g.tokens != nil {
		if token, ok := g.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// react performs the status-specific side effects. The caller still returns
// the error afterwards.
func (g *Gateway) react(apiErr *APIError) {
	switch apiErr.Status {
	case http.StatusUnauthorized:
		if g.atEntry() {
			return
		}
		if g.tokens != nil {
			_ = g.tokens.Clear()
		}
		if g.onUnauthenticated != nil {
			redirect := g.entryPath
			if g.currentPath != nil {
				redirect = g.currentPath()
			}
			g.onUnauthenticated(redirect)
		}
	case http.StatusForbidden:
		g.notify.Notify(LevelError, "You do not have access to this resource.")
	case http.StatusNotFound:
		// Not-found is a normal outcome for lookups; no notification.
	case http.StatusTooManyRequests:
		g.notify.Notify(LevelWarning, "Too many requests. Wait a moment and try again.")
	case http.StatusInternalServerError:
		g.notify.Notify(LevelError, "Server error. Try again later.")
	default:
		if apiErr.Message != "" {
			g.notify.Notify(LevelError, apiErr.Message)
		} else {
			g.notify.Notify(LevelError, "An unexpected error occurred.")
		}
	}
}

func (g *Gateway) atEntry() bool {
	if g.currentPath == nil {
		return false
	}
	return g.currentPath() == g.entryPath
}

func (g *Gateway) decodeError(status int, raw []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == "" {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}
	return &APIError{
		Status:    status,
		Message:   env.Error,
		Details:   env.Details,
		RequestID: env.RequestID,
	}
}

func (g *Gateway) logError(ctx context.Context, msg, method, path string, args ...any) {
	if g.log == nil {
		return
	}
	g.log.ErrorContext(ctx, msg, append([]any{"method", method, "path", path}, args...)...)
}
