// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"context"
	"net/http"
	"time"
)

// handleLive answers as long as the process serves requests.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	OK(w, r, map[string]string{"status": "ok"})
}

// handleReady checks the store responds within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.ListGenres(ctx); err != nil {
		Fail(w, r, http.StatusServiceUnavailable, ErrCodeInternal, "store unavailable")
		return
	}
	OK(w, r, map[string]string{"status": "ready"})
}
