// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/alezhuq/hub-back/internal/models"
)

// userRecord is the persisted form of a user. models.User hides the
// password hash from JSON serialization at the API boundary, so the store
// keeps its own shape that includes it.
type userRecord struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"password_hash"`
	Superuser    bool      `json:"superuser"`
	LastActive   time.Time `json:"last_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.Password,
		Superuser:    u.Superuser,
		LastActive:   u.LastActive,
		CreatedAt:    u.CreatedAt,
	}
}

func (r *userRecord) toUser() *models.User {
	return &models.User{
		ID:         r.ID,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Password:   r.PasswordHash,
		Superuser:  r.Superuser,
		LastActive: r.LastActive,
		CreatedAt:  r.CreatedAt,
	}
}

// CreateUser assigns an ID and persists the user. Emails are unique and
// compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	id, err := nextID(s.userSeq)
	if err != nil {
		return err
	}
	user.ID = id
	user.Email = normalizeEmail(user.Email)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.LastActive = now

	emailKey := []byte(prefixUserEmail + user.Email)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey, encodeID(user.ID)); err != nil {
			return err
		}
		return setJSON(txn, recordKey(prefixUser, user.ID), toUserRecord(user))
	})
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, recordKey(prefixUser, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

// GetUserByEmail resolves the email index and returns the user.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixUserEmail + normalizeEmail(email)))
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
		return getJSON(txn, recordKey(prefixUser, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

// UpdateUser persists changes to an existing user. A changed email moves the
// unique index entry and must not collide with another account.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	user.Email = normalizeEmail(user.Email)

	return s.db.Update(func(txn *badger.Txn) error {
		var existing userRecord
		if err := getJSON(txn, recordKey(prefixUser, user.ID), &existing); err != nil {
			return err
		}
		if existing.Email != user.Email {
			newKey := []byte(prefixUserEmail + user.Email)
			if _, err := txn.Get(newKey); err == nil {
				return ErrEmailTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete([]byte(prefixUserEmail + existing.Email)); err != nil {
				return err
			}
			if err := txn.Set(newKey, encodeID(user.ID)); err != nil {
				return err
			}
		}
		user.CreatedAt = existing.CreatedAt
		return setJSON(txn, recordKey(prefixUser, user.ID), toUserRecord(user))
	})
}

// TouchUser updates the user's last-active timestamp. Missing users are
// ignored; this runs on every authenticated request.
func (s *Store) TouchUser(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		if err := getJSON(txn, recordKey(prefixUser, id), &rec); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		rec.LastActive = time.Now().UTC()
		return setJSON(txn, recordKey(prefixUser, id), &rec)
	})
}

// DeleteUser removes the user, its email index entry, its ratings, and its
// like/share edges on every book, all in one transaction. Books the user
// uploaded stay in the catalog.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		if err := getJSON(txn, recordKey(prefixUser, id), &rec); err != nil {
			return err
		}
		if err := txn.Delete([]byte(prefixUserEmail + rec.Email)); err != nil {
			return err
		}

		var stale []*models.BookRating
		if err := iteratePrefix(txn, prefixRating, func(r *models.BookRating) bool {
			if r.UserID == id {
				stale = append(stale, r)
			}
			return true
		}); err != nil {
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

		var touched []*models.Book
		if err := iteratePrefix(txn, prefixBook, func(b *models.Book) bool {
			if b.LikedByUser(id) || b.SharedByUser(id) {
				b.LikedBy = removeID(b.LikedBy, id)
				b.SharedBy = removeID(b.SharedBy, id)
				touched = append(touched, b)
			}
			return true
		}); err != nil {
			return err
		}
		for _, b := range touched {
			if err := setJSON(txn, recordKey(prefixBook, b.ID), b); err != nil {
				return err
			}
		}

		return txn.Delete(recordKey(prefixUser, id))
	})
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	var users []*models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixUser, func(rec *userRecord) bool {
			users = append(users, rec.toUser())
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
