// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package middleware provides HTTP middleware shared across route groups.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/alezhuq/hub-back/internal/logging"
)

const (
	// HeaderRequestID carries the per-request ID assigned by the server.
	HeaderRequestID = "X-Request-ID"
	// HeaderCorrelationID is accepted from clients to tie requests across
	// services; a missing or oversized value gets a fresh ID.
	HeaderCorrelationID = "X-Correlation-ID"

	maxHeaderIDLen = 128
)

// RequestID assigns a request ID, propagates the correlation ID, stores
// both in the request context, and echoes them on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		correlationID := r.Header.Get(HeaderCorrelationID)
		if correlationID == "" || len(correlationID) > maxHeaderIDLen {
			correlationID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithCorrelationID(ctx, correlationID)

		w.Header().Set(HeaderRequestID, requestID)
		w.Header().Set(HeaderCorrelationID, correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
