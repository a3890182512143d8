// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package models defines the persisted domain types shared between the
// store, the API layer, and the recommendation engine.
package models

import "time"

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to API responses.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Password   string    `json:"-"`
	Superuser  bool      `json:"superuser"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Genre is a book category. Only superusers may create, rename, or delete
// genres; everyone may read them.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a shared title. LikedBy and SharedBy hold user IDs; likes toggle,
// shares are idempotent. The uploading user is the author and the only one
// allowed to modify or delete the record.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileName    string    `json:"file_name,omitempty"`
	FileSize    int64     `json:"file_size"`
	PictureName string    `json:"picture_name,omitempty"`
	GenreID     int64     `json:"genre_id"`
	AuthorID    int64     `json:"author_id"`
	LikedBy     []int64   `json:"liked_by"`
	SharedBy    []int64   `json:"shared_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LikedByUser reports whether the given user has liked the book.
func (b *Book) LikedByUser(userID int64) bool {
	return containsID(b.LikedBy, userID)
}

// SharedByUser reports whether the given user has shared the book.
func (b *Book) SharedByUser(userID int64) bool {
	return containsID(b.SharedBy, userID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// BookRating is a per-user, per-book rating record. At most one exists for
// each (user, book) pair. Grade is nil until the user assigns one; updates
// replace it. ReadingTime accumulates across updates.
type BookRating struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	BookID      int64         `json:"book_id"`
	Comment     string        `json:"comment,omitempty"`
	Grade       *float64      `json:"grade"`
	ReadingTime time.Duration `json:"reading_time"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
