// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package store

import (
	"context"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/alezhuq/hub-back/internal/models"
)

// CreateGenre assigns an ID and persists the genre. Names are unique,
// compared case-insensitively.
func (s *Store) CreateGenre(ctx context.Context, genre *models.Genre) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	id, err := nextID(s.genreSeq)
	if err != nil {
		return err
	}
	genre.ID = id

	return s.db.Update(func(txn *badger.Txn) error {
		taken, err := genreNameTaken(txn, genre.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrGenreNameTaken
		}
		return setJSON(txn, recordKey(prefixGenre, genre.ID), genre)
	})
}

// GetGenre returns the genre with the given ID.
func (s *Store) GetGenre(ctx context.Context, id int64) (*models.Genre, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var genre models.Genre
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, recordKey(prefixGenre, id), &genre)
	})
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// UpdateGenre renames an existing genre.
func (s *Store) UpdateGenre(ctx context.Context, genre *models.Genre) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var existing models.Genre
		if err := getJSON(txn, recordKey(prefixGenre, genre.ID), &existing); err != nil {
			return err
		}
		taken, err := genreNameTaken(txn, genre.Name, genre.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrGenreNameTaken
		}
		return setJSON(txn, recordKey(prefixGenre, genre.ID), genre)
	})
}

// DeleteGenre removes the genre. Books referencing it keep their genre ID;
// the API resolves missing genres to an empty name.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(prefixGenre, id)); err != nil {
			return ErrNotFound
		}
		return txn.Delete(recordKey(prefixGenre, id))
	})
}

// ListGenres returns all genres ordered by ID.
func (s *Store) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var genres []*models.Genre
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixGenre, func(g *models.Genre) bool {
			genres = append(genres, g)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return genres, nil
}

func genreNameTaken(txn *badger.Txn, name string, excludeID int64) (bool, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	taken := false
	err := iteratePrefix(txn, prefixGenre, func(g *models.Genre) bool {
		if g.ID != excludeID && strings.ToLower(g.Name) == want {
			taken = true
			return false
		}
		return true
	})
	return taken, err
}
