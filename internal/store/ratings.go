// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package store

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/alezhuq/hub-back/internal/models"
)

// CreateRating persists a new rating. Each (user, book) pair may hold at
// most one rating; a second create returns ErrRatingExists.
func (s *Store) CreateRating(ctx context.Context, rating *models.BookRating) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id, err := nextID(s.ratingSeq)
	if err != nil {
		return err
	}
	rating.ID = id
	now := time.Now().UTC()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	ubKey := ratingUBKey(rating.UserID, rating.BookID)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(prefixBook, rating.BookID)); err != nil {
			return ErrNotFound
		}
		if _, err := txn.Get(ubKey); err == nil {
			return ErrRatingExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(ubKey, encodeID(rating.ID)); err != nil {
			return err
		}
		return setJSON(txn, recordKey(prefixRating, rating.ID), rating)
	})
}

// GetRating returns the rating with the given ID.
func (s *Store) GetRating(ctx context.Context, id int64) (*models.BookRating, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var rating models.BookRating
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, recordKey(prefixRating, id), &rating)
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// GetRatingByUserBook returns the rating for a (user, book) pair, if any.
func (s *Store) GetRatingByUserBook(ctx context.Context, userID, bookID int64) (*models.BookRating, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var rating models.BookRating
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ratingUBKey(userID, bookID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		var id int64
		if err := item.Value(func(val []byte) error {
			id, err = decodeID(val)
			return err
		}); err != nil {
			return err
		}
		return getJSON(txn, recordKey(prefixRating, id), &rating)
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateRating applies an update to an existing rating. A non-nil grade
// replaces the stored grade; additional reading time accumulates on top of
// the stored total. Comment always replaces.
func (s *Store) UpdateRating(ctx context.Context, id int64, comment string, grade *float64, addReadingTime time.Duration) (*models.BookRating, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var rating models.BookRating
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, recordKey(prefixRating, id), &rating); err != nil {
			return err
		}
		rating.Comment = comment
		if grade != nil {
			g := *grade
			rating.Grade = &g
		}
		if addReadingTime > 0 {
			rating.ReadingTime += addReadingTime
		}
		rating.UpdatedAt = time.Now().UTC()
		return setJSON(txn, recordKey(prefixRating, id), &rating)
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// DeleteRating removes the rating and its (user, book) index entry.
func (s *Store) DeleteRating(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var rating models.BookRating
		if err := getJSON(txn, recordKey(prefixRating, id), &rating); err != nil {
			return err
		}
		if err := txn.Delete(ratingUBKey(rating.UserID, rating.BookID)); err != nil {
			return err
		}
		return txn.Delete(recordKey(prefixRating, id))
	})
}

// ListRatingsByBook returns every rating for a book, ordered by ID.
func (s *Store) ListRatingsByBook(ctx context.Context, bookID int64) ([]*models.BookRating, error) {
	return s.listRatings(ctx, func(r *models.BookRating) bool { return r.BookID == bookID })
}

// ListRatingsByUser returns every rating made by a user, ordered by ID.
func (s *Store) ListRatingsByUser(ctx context.Context, userID int64) ([]*models.BookRating, error) {
	return s.listRatings(ctx, func(r *models.BookRating) bool { return r.UserID == userID })
}

// ListRatings returns all ratings, ordered by ID.
func (s *Store) ListRatings(ctx context.Context) ([]*models.BookRating, error) {
	return s.listRatings(ctx, func(*models.BookRating) bool { return true })
}

func (s *Store) listRatings(ctx context.Context, keep func(*models.BookRating) bool) ([]*models.BookRating, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var ratings []*models.BookRating
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixRating, func(r *models.BookRating) bool {
			if keep(r) {
				ratings = append(ratings, r)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
