// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"

	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/logging"
	"github.com/alezhuq/hub-back/internal/store"
	"github.com/alezhuq/hub-back/internal/validation"
)

type updateAccountRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	// Password is optional; empty keeps the current one.
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "account not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, userID)
	OK(w, r, user)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)

	var req updateAccountRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, s.cfg.Security.BcryptCost)
		if err != nil {
			InternalError(w, r, err)
			return
		}
		user.Password = hash
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			Conflict(w, r, "email already registered")
			return
		}
		InternalError(w, r, err)
		return
	}
	OK(w, r, user)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)
	if err := s.store.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "account not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("user_id", userID).Msg("Account deleted")
	NoContent(w, r)
}
