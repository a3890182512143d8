// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/logging"
	"github.com/alezhuq/hub-back/internal/metrics"
	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
	"github.com/alezhuq/hub-back/internal/validation"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		InternalError(w, r, err)
		return
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			Conflict(w, r, "email already registered")
			return
		}
		InternalError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User registered")
	Created(w, r, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			Unauthorized(w, r, "invalid credentials")
			return
		}
		InternalError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		Unauthorized(w, r, "invalid credentials")
		return
	}

	token, expires, err := s.jwt.Generate(user.ID, user.Email, user.Superuser)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, user.ID)

	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User logged in")
	OK(w, r, tokenResponse{Token: token, ExpiresAt: expires, User: user})
}
