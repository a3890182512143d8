// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package store

import (
	"context"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/alezhuq/hub-back/internal/models"
)

// BookFilter narrows and orders ListBooks results. Zero values mean no
// filtering.
type BookFilter struct {
	// Search matches case-insensitively against title and description.
	Search string
	// GenreID restricts to a single genre when non-zero.
	GenreID int64
	// AuthorID restricts to a single uploader when non-zero.
	AuthorID int64
	// OrderBy is one of: id, title, author, created_at, likes. Default: id.
	OrderBy string
	// Descending reverses the sort order.
	Descending bool
}

// CreateBook assigns an ID and persists the book.
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id, err := nextID(s.bookSeq)
	if err != nil {
		return err
	}
	book.ID = id
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	if book.LikedBy == nil {
		book.LikedBy = []int64{}
	}
	if book.SharedBy == nil {
		book.SharedBy = []int64{}
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, recordKey(prefixBook, book.ID), book)
	})
}

// GetBook returns the book with the given ID.
func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var book models.Book
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, recordKey(prefixBook, id), &book)
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook persists changes to an existing book. Creation time, author,
// likes, and shares carry over from the stored record.
func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var existing models.Book
		if err := getJSON(txn, recordKey(prefixBook, book.ID), &existing); err != nil {
			return err
		}
		book.CreatedAt = existing.CreatedAt
		book.AuthorID = existing.AuthorID
		book.LikedBy = existing.LikedBy
		book.SharedBy = existing.SharedBy
		book.UpdatedAt = time.Now().UTC()
		return setJSON(txn, recordKey(prefixBook, book.ID), book)
	})
}

// DeleteBook removes the book and every rating attached to it.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(prefixBook, id)); err != nil {
			return ErrNotFound
		}

		var stale []*models.BookRating
		err := iteratePrefix(txn, prefixRating, func(r *models.BookRating) bool {
			if r.BookID == id {
				stale = append(stale, r)
			}
			return true
		})
		if err != nil {
			return err
		}
		for _, r := range stale {
			if err := txn.Delete(recordKey(prefixRating, r.ID)); err != nil {
				return err
			}
			if err := txn.Delete(ratingUBKey(r.UserID, r.BookID)); err != nil {
				return err
			}
		}
		return txn.Delete(recordKey(prefixBook, id))
	})
}

// ToggleLike flips the user's like on the book and returns the new state.
func (s *Store) ToggleLike(ctx context.Context, bookID, userID int64) (liked bool, err error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		var book models.Book
		if err := getJSON(txn, recordKey(prefixBook, bookID), &book); err != nil {
			return err
		}
		if book.LikedByUser(userID) {
			book.LikedBy = removeID(book.LikedBy, userID)
			liked = false
		} else {
			book.LikedBy = append(book.LikedBy, userID)
			liked = true
		}
		book.UpdatedAt = time.Now().UTC()
		return setJSON(txn, recordKey(prefixBook, bookID), &book)
	})
	return liked, err
}

// AddShare records that the user shared the book. Sharing twice is a no-op.
func (s *Store) AddShare(ctx context.Context, bookID, userID int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var book models.Book
		if err := getJSON(txn, recordKey(prefixBook, bookID), &book); err != nil {
			return err
		}
		if book.SharedByUser(userID) {
			return nil
		}
		book.SharedBy = append(book.SharedBy, userID)
		book.UpdatedAt = time.Now().UTC()
		return setJSON(txn, recordKey(prefixBook, bookID), &book)
	})
}

// ListBooks returns books matching the filter, sorted per its ordering.
// Search matches case-insensitively against title, description, and the
// uploader's first and last name; author ordering uses the uploader's name.
func (s *Store) ListBooks(ctx context.Context, filter BookFilter) ([]*models.Book, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	needNames := search != "" || filter.OrderBy == "author"

	var books []*models.Book
	authorNames := make(map[int64]string)
	err := s.db.View(func(txn *badger.Txn) error {
		if needNames {
			if err := iteratePrefix(txn, prefixUser, func(rec *userRecord) bool {
				authorNames[rec.ID] = strings.ToLower(strings.TrimSpace(rec.FirstName + " " + rec.LastName))
				return true
			}); err != nil {
				return err
			}
		}
		return iteratePrefix(txn, prefixBook, func(b *models.Book) bool {
			if filter.GenreID != 0 && b.GenreID != filter.GenreID {
				return true
			}
			if filter.AuthorID != 0 && b.AuthorID != filter.AuthorID {
				return true
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(b.Title), search) &&
				!strings.Contains(strings.ToLower(b.Description), search) &&
				!strings.Contains(authorNames[b.AuthorID], search) {
				return true
			}
			books = append(books, b)
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	sortBooks(books, filter.OrderBy, filter.Descending, authorNames)
	return books, nil
}

// sortBooks orders in place. Iteration already yields ascending IDs, so the
// default case only needs to handle the descending flag.
func sortBooks(books []*models.Book, orderBy string, desc bool, authorNames map[int64]string) {
	var less func(a, b *models.Book) bool
	switch orderBy {
	case "title":
		less = func(a, b *models.Book) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.ID < b.ID
		}
	case "author":
		less = func(a, b *models.Book) bool {
			an, bn := authorNames[a.AuthorID], authorNames[b.AuthorID]
			if an != bn {
				return an < bn
			}
			return a.ID < b.ID
		}
	case "created_at":
		less = func(a, b *models.Book) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}
	case "likes":
		less = func(a, b *models.Book) bool {
			if len(a.LikedBy) != len(b.LikedBy) {
				return len(a.LikedBy) < len(b.LikedBy)
			}
			return a.ID < b.ID
		}
	default:
		if !desc {
			return
		}
		less = func(a, b *models.Book) bool { return a.ID < b.ID }
	}

	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
