// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"

	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
	"github.com/alezhuq/hub-back/internal/validation"
)

type genreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Genre writes are superuser-only; reads are open to any authenticated
// user.

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.store.ListGenres(r.Context())
	if err != nil {
		InternalError(w, r, err)
		return
	}
	if genres == nil {
		genres = []*models.Genre{}
	}
	OKList(w, r, genres, len(genres))
}

func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	genre, err := s.store.GetGenre(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "genre not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	OK(w, r, genre)
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	if !isSuperuser(r) {
		Forbidden(w, r, "superuser required")
		return
	}
	var req genreRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	genre := &models.Genre{Name: req.Name}
	if err := s.store.CreateGenre(r.Context(), genre); err != nil {
		if errors.Is(err, store.ErrGenreNameTaken) {
			Conflict(w, r, "genre name already exists")
			return
		}
		InternalError(w, r, err)
		return
	}
	Created(w, r, genre)
}

func (s *Server) handleUpdateGenre(w http.ResponseWriter, r *http.Request) {
	if !isSuperuser(r) {
		Forbidden(w, r, "superuser required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	var req genreRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	genre := &models.Genre{ID: id, Name: req.Name}
	if err := s.store.UpdateGenre(r.Context(), genre); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFound(w, r, "genre not found")
		case errors.Is(err, store.ErrGenreNameTaken):
			Conflict(w, r, "genre name already exists")
		default:
			InternalError(w, r, err)
		}
		return
	}
	OK(w, r, genre)
}

func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	if !isSuperuser(r) {
		Forbidden(w, r, "superuser required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := s.store.DeleteGenre(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "genre not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	NoContent(w, r)
}
