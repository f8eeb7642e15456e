package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// ServerConfig holds the options for NewRouter.
type ServerConfig struct {
	ServiceName   string
	IsDevelopment bool
	// IsTesting disables request logging so test runs stay quiet.
	IsTesting bool
	// FrontendOrigin is the single origin allowed by CORS and whitelisted
	// in the CSP connect-src directive.
	FrontendOrigin string
}

// NewRouter returns a chi.Mux pre-wired with the project's standard middleware
// stack. Pass app-specific middlewares (logger, recovery, sentry, otel) in order;
// they are prepended before the chi built-ins.
//
// Middleware order (outermost → innermost):
//  1. recoveryMiddleware — catches panics that re-panic from sentry
//  2. sentryMiddleware   — captures panics, re-panics (Repanic: true)
//  3. RequestID          — correlation id: client X-Request-Id or generated
//  4. otelMiddleware     — starts trace span per request
//  5. loggerMiddleware   — request logging; omitted in testing
//  6. RealIP             — sets RemoteAddr from X-Forwarded-For
//  7. Security headers   — CSP referencing the frontend origin, nosniff, etc.
//  8. CORS               — single configured origin, credentials allowed
//  9. Compress           — gzip/deflate response compression
//  10. BodyLimit         — 10 MB request body cap
//  11. Timeout           — 30 s handler deadline
//
// Rate limiting is not part of this stack: mount RateLimit on the /api
// subtree only, so /health and /metrics stay unthrottled.
func NewRouter(
	cfg ServerConfig,
	loggerMiddleware func(http.Handler) http.Handler,
	recoveryMiddleware func(http.Handler) http.Handler,
	sentryMiddleware func(http.Handler) http.Handler,
	otelMiddleware func(http.Handler) http.Handler,
) *chi.Mux {
	sec := secure.New(secure.Options{
		STSSeconds:           63072000,
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		ContentSecurityPolicy: fmt.Sprintf(
			"default-src 'self'; style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"script-src 'self' 'unsafe-inline'; font-src 'self' https://fonts.gstatic.com; "+
				"img-src 'self' data: https:; connect-src 'self' %s", cfg.FrontendOrigin),
		PermissionsPolicy: "geolocation=(), microphone=(), camera=(), usb=(), magnetometer=(), gyroscope=()",
		IsDevelopment:     cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(
		recoveryMiddleware,
		sentryMiddleware,
		middleware.RequestID,
		otelMiddleware,
	)
	if !cfg.IsTesting {
		r.Use(loggerMiddleware)
	}
	r.Use(
		middleware.RealIP,
		sec.Handler,
		CORSMiddleware(cfg.FrontendOrigin),
		middleware.Compress(5),
		RequestBodyLimit(10<<20), // 10 MB
		middleware.Timeout(30*time.Second),
	)
	return r
}

// CORSMiddleware returns a CORS handler restricted to the single configured
// frontend origin, with credentials allowed and the methods and headers the
// API actually uses.
func CORSMiddleware(frontendOrigin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// RateLimit returns a fixed-window per-IP rate limiter for the API subtree.
// Standard X-RateLimit-* headers are exposed on every response; once the
// ceiling is exceeded, rejections go through limitHandler so they share the
// centralized error formatting.
func RateLimit(max int, window time.Duration, limitHandler http.HandlerFunc) func(http.Handler) http.Handler {
	return httprate.Limit(max, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitHandler),
	)
}

// RequestBodyLimit returns middleware that caps the request body at maxBytes.
// When the limit is exceeded, reads on the body return an error that handlers
// should convert to a 413 response.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server with production-ready timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
}
