// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
	"github.com/alezhuq/hub-back/internal/validation"
)

type ratingRequest struct {
	Comment string   `json:"comment" validate:"max=2000"`
	Grade   *float64 `json:"grade" validate:"omitempty,gte=0,lte=5"`
	// ReadingTimeSeconds is added to the stored total on update.
	ReadingTimeSeconds int64 `json:"reading_time_seconds" validate:"min=0"`
}

func (s *Server) handleListBookRatings(w http.ResponseWriter, r *http.Request) {
	bookID, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if _, err := s.store.GetBook(r.Context(), bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "book not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	ratings, err := s.store.ListRatingsByBook(r.Context(), bookID)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	if ratings == nil {
		ratings = []*models.BookRating{}
	}
	OKList(w, r, ratings, len(ratings))
}

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	bookID, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	userID, _ := currentUserID(r)

	var req ratingRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	rating := &models.BookRating{
		UserID:      userID,
		BookID:      bookID,
		Comment:     req.Comment,
		Grade:       req.Grade,
		ReadingTime: time.Duration(req.ReadingTimeSeconds) * time.Second,
	}
	if err := s.store.CreateRating(r.Context(), rating); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFound(w, r, "book not found")
		case errors.Is(err, store.ErrRatingExists):
			Conflict(w, r, "rating already exists for this book")
		default:
			InternalError(w, r, err)
		}
		return
	}
	s.touchActivity(r, userID)
	Created(w, r, rating)
}

// requireRatingOwner loads the rating and checks the caller owns it.
func (s *Server) requireRatingOwner(w http.ResponseWriter, r *http.Request) (*models.BookRating, bool) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return nil, false
	}
	rating, err := s.store.GetRating(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "rating not found")
			return nil, false
		}
		InternalError(w, r, err)
		return nil, false
	}
	userID, _ := currentUserID(r)
	if rating.UserID != userID {
		Forbidden(w, r, "not the rating owner")
		return nil, false
	}
	return rating, true
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	rating, err := s.store.GetRating(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "rating not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	OK(w, r, rating)
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	rating, ok := s.requireRatingOwner(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if err := decode(w, r, &req, maxBodyBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}

	updated, err := s.store.UpdateRating(
		r.Context(),
		rating.ID,
		req.Comment,
		req.Grade,
		time.Duration(req.ReadingTimeSeconds)*time.Second,
	)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, rating.UserID)
	OK(w, r, updated)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	rating, ok := s.requireRatingOwner(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteRating(r.Context(), rating.ID); err != nil {
		InternalError(w, r, err)
		return
	}
	NoContent(w, r)
}
