// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"

	"github.com/alezhuq/hub-back/internal/recommend"
)

// handleRecommendations returns the caller's ranked book list, best first.
// Books the caller already liked never appear; everything else does, so
// clients truncate to taste.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)

	ranked, err := s.engine.Recommend(r.Context(), userID)
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownUser) {
			NotFound(w, r, "account not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, userID)
	OKList(w, r, ranked, len(ranked))
}
