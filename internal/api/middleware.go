// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/metrics"
)

// Middleware builds route-group middleware from the security config.
type Middleware struct {
	cfg config.SecurityConfig
	jwt *auth.JWTManager
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(cfg config.SecurityConfig, jwt *auth.JWTManager) *Middleware {
	return &Middleware{cfg: cfg, jwt: jwt}
}

// CORS applies the configured allowed origins. With none configured the
// handler passes through untouched.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	if len(m.cfg.CORSOrigins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}

// RateLimit applies the general per-IP request budget.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return httprate.Limit(
		m.cfg.RateLimitRPM,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimited),
	)(next)
}

// RateLimitLogin applies the stricter budget for credential endpoints,
// keyed by IP and path so register and login budgets do not pool.
func (m *Middleware) RateLimitLogin(next http.Handler) http.Handler {
	return httprate.Limit(
		m.cfg.LoginRateLimitRPM,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(rateLimited),
	)(next)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	Fail(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
}

// Authenticate rejects requests without a valid bearer token before any
// handler work happens, and counts the failure reason.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return m.jwt.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
		reason := "invalid_token"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired_token"
		} else if auth.BearerToken(r) == "" {
			reason = "missing_token"
		}
		metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
		Unauthorized(w, r, "authentication required")
	})(next)
}

// SecurityHeaders sets the standard hardening headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
