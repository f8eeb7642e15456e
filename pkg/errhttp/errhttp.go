// Package errhttp is the single point where errors become HTTP responses.
// Every failure (validation, uniqueness conflicts, lookups, rate limiting,
// database trouble, panic fallout) converges here so the status code and
// envelope shape are decided in exactly one place. The formatter always logs
// full request context server-side regardless of what it exposes to the
// client.
package errhttp

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	domain "github.com/ghuser/catalog/services/catalog/domain"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Success    bool      `json:"success"`
	Error      string    `json:"error"`
	Details    any       `json:"details,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Stack      string    `json:"stack,omitempty"`
}

// Responder formats errors into HTTP responses.
type Responder struct {
	log           logger.Logger
	isDevelopment bool
}

// New returns a Responder. Stack traces are included in response bodies only
// when environment is development.
func New(log logger.Logger, environment string) *Responder {
	return &Responder{log: log, isDevelopment: environment == config.EnvDevelopment}
}

// WriteError maps err to a status code and writes the JSON error envelope.
// Wrapped sentinels are matched with errors.Is/As.
func (re *Responder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	re.write(w, r, err, 0)
}

// NotFoundHandler synthesizes a 404 for unmatched routes, carrying the
// attempted method and path through the standard formatter.
func (re *Responder) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		re.WriteError(w, r, &domain.NotFoundError{Method: r.Method, Path: r.URL.Path})
	}
}

// RateLimitHandler formats the structured rejection payload for requests
// over the rate-limit ceiling. The limiter has already stamped the standard
// X-RateLimit-* headers on the response, so the retry hint is derived from
// them.
func (re *Responder) RateLimitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		re.write(w, r, domain.ErrRateLimited, retryAfterSeconds(w))
	}
}

func (re *Responder) write(w http.ResponseWriter, r *http.Request, err error, retryAfter int) {
	status, resp := re.classify(r, err)
	resp.RetryAfter = retryAfter

	re.log.ErrorContext(r.Context(), "request failed",
		"error", err,
		"status", status,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	httpx.JSON(w, status, resp)
}

func (re *Responder) classify(r *http.Request, err error) (int, ErrorResponse) {
	resp := ErrorResponse{
		Success:   false,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	}

	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		nf *domain.NotFoundError
		pe *pgconn.PgError
	)

	switch {
	case errors.As(err, &ve):
		resp.Error = "Validation error"
		resp.Details = ve.Fields
		return http.StatusBadRequest, resp

	case errors.As(err, &ce):
		resp.Error = "Duplicate entry"
		resp.Details = []domain.FieldError{{
			Field:   ce.Field,
			Message: ce.Error(),
			Value:   ce.Value,
		}}
		return http.StatusConflict, resp

	case errors.As(err, &nf):
		resp.Error = nf.Error()
		return http.StatusNotFound, resp

	case errors.Is(err, domain.ErrItemNotFound):
		resp.Error = "Resource not found"
		return http.StatusNotFound, resp

	case errors.Is(err, domain.ErrUnauthorized):
		resp.Error = "Unauthorized"
		return http.StatusUnauthorized, resp

	case errors.Is(err, domain.ErrForbidden):
		resp.Error = "Forbidden"
		return http.StatusForbidden, resp

	case errors.Is(err, domain.ErrRateLimited):
		resp.Error = "Too many requests from this IP, please try again later."
		return http.StatusTooManyRequests, resp

	case database.IsConnectionError(err):
		resp.Error = "Database connection error"
		return http.StatusServiceUnavailable, resp

	case errors.As(err, &pe):
		resp.Error = "Database error"
		return http.StatusInternalServerError, resp

	default:
		resp.Error = "Internal server error"
		if re.isDevelopment {
			resp.Details = err.Error()
			resp.Stack = string(debug.Stack())
		}
		return http.StatusInternalServerError, resp
	}
}

// retryAfterSeconds converts the limiter's X-RateLimit-Reset response header
// into a seconds-from-now hint; zero when unavailable.
func retryAfterSeconds(w http.ResponseWriter) int {
	s := w.Header().Get("X-RateLimit-Reset")
	if s == "" {
		return 0
	}
	reset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	if secs := reset - time.Now().Unix(); secs > 0 {
		return int(secs)
	}
	return 0
}
