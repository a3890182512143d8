// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
	"github.com/alezhuq/hub-back/internal/validation"
)

type bookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=300"`
	Description string `json:"description" validate:"max=5000"`
	GenreID     int64  `json:"genre_id" validate:"required,min=1"`
	FileName    string `json:"file_name" validate:"max=255"`
	FileSize    int64  `json:"file_size" validate:"min=0"`
	PictureName string `json:"picture_name" validate:"max=255"`
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := bookFilterFromQuery(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	books, err := s.store.ListBooks(r.Context(), filter)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	if books == nil {
		books = []*models.Book{}
	}
	OKList(w, r, books, len(books))
}

func (s *Server) handleMyBooks(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)
	filter, err := bookFilterFromQuery(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	filter.AuthorID = userID
	books, err := s.store.ListBooks(r.Context(), filter)
	if err != nil {
		InternalError(w, r, err)
		return
	}
	if books == nil {
		books = []*models.Book{}
	}
	OKList(w, r, books, len(books))
}

// bookFilterFromQuery parses ?search=, ?genre=, and ?ordering=. Ordering
// uses field names with an optional leading minus for descending, e.g.
// ordering=-likes.
func bookFilterFromQuery(r *http.Request) (store.BookFilter, error) {
	q := r.URL.Query()
	filter := store.BookFilter{Search: q.Get("search")}

	if g := q.Get("genre"); g != "" {
		id, err := strconv.ParseInt(g, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("invalid genre filter")
		}
		filter.GenreID = id
	}

	if ord := q.Get("ordering"); ord != "" {
		if strings.HasPrefix(ord, "-") {
			filter.Descending = true
			ord = ord[1:]
		}
		switch ord {
		case "id", "title", "author", "created_at", "likes":
			filter.OrderBy = ord
		default:
			return filter, errors.New("invalid ordering field")
		}
	}
	return filter, nil
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	book, err := s.store.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "book not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	OK(w, r, book)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUserID(r)

	var req bookRequest
	if err := decode(w, r, &req, s.cfg.Server.MaxUploadBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}
	if req.FileSize > s.cfg.Server.MaxUploadBytes {
		BadRequest(w, r, "file too large")
		return
	}
	if _, err := s.store.GetGenre(r.Context(), req.GenreID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			BadRequest(w, r, "unknown genre")
			return
		}
		InternalError(w, r, err)
		return
	}

	book := &models.Book{
		Title:       req.Title,
		Description: req.Description,
		GenreID:     req.GenreID,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		PictureName: req.PictureName,
		AuthorID:    userID,
	}
	if err := s.store.CreateBook(r.Context(), book); err != nil {
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, userID)
	Created(w, r, book)
}

// requireBookAuthor loads the book and checks the caller uploaded it.
// Superusers pass as well.
func (s *Server) requireBookAuthor(w http.ResponseWriter, r *http.Request) (*models.Book, bool) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return nil, false
	}
	book, err := s.store.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "book not found")
			return nil, false
		}
		InternalError(w, r, err)
		return nil, false
	}
	userID, _ := currentUserID(r)
	if book.AuthorID != userID && !isSuperuser(r) {
		Forbidden(w, r, "not the book author")
		return nil, false
	}
	return book, true
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	book, ok := s.requireBookAuthor(w, r)
	if !ok {
		return
	}
	var req bookRequest
	if err := decode(w, r, &req, s.cfg.Server.MaxUploadBytes); err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	if err := validation.Struct(&req); err != nil {
		ValidationFailed(w, r, err.Error())
		return
	}
	if _, err := s.store.GetGenre(r.Context(), req.GenreID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			BadRequest(w, r, "unknown genre")
			return
		}
		InternalError(w, r, err)
		return
	}

	book.Title = req.Title
	book.Description = req.Description
	book.GenreID = req.GenreID
	book.FileName = req.FileName
	book.FileSize = req.FileSize
	book.PictureName = req.PictureName

	if err := s.store.UpdateBook(r.Context(), book); err != nil {
		InternalError(w, r, err)
		return
	}
	OK(w, r, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := s.requireBookAuthor(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteBook(r.Context(), book.ID); err != nil {
		InternalError(w, r, err)
		return
	}
	NoContent(w, r)
}

func (s *Server) handleLikeBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	userID, _ := currentUserID(r)
	liked, err := s.store.ToggleLike(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "book not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, userID)
	OK(w, r, map[string]bool{"liked": liked})
}

func (s *Server) handleShareBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	userID, _ := currentUserID(r)
	if err := s.store.AddShare(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(w, r, "book not found")
			return
		}
		InternalError(w, r, err)
		return
	}
	s.touchActivity(r, userID)
	OK(w, r, map[string]bool{"shared": true})
}
