// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "Alice@Example.com", FirstName: "Alice", Password: "hash"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID != 1 {
		t.Errorf("first user ID = %d, want 1", user.ID)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	dup := &models.User{Email: "ALICE@example.com", Password: "hash"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != user.ID || got.FirstName != "Alice" {
		t.Errorf("GetUserByEmail() = %+v, want id=%d name=Alice", got, user.ID)
	}
}

func TestUpdateUserEmailMove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1 := &models.User{Email: "a@example.com", Password: "h"}
	u2 := &models.User{Email: "b@example.com", Password: "h"}
	for _, u := range []*models.User{u1, u2} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}

	u1.Email = "b@example.com"
	if err := s.UpdateUser(ctx, u1); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("UpdateUser() to taken email error = %v, want ErrEmailTaken", err)
	}

	u1.Email = "c@example.com"
	if err := s.UpdateUser(ctx, u1); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "a@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old email still resolves, err = %v", err)
	}
	if got, err := s.GetUserByEmail(ctx, "c@example.com"); err != nil || got.ID != u1.ID {
		t.Errorf("new email lookup = (%+v, %v), want id=%d", got, err, u1.ID)
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "gone@example.com", Password: "h"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := s.GetUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "gone@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := &models.User{Email: "author@example.com", Password: "h"}
	reader := &models.User{Email: "reader@example.com", Password: "h"}
	for _, u := range []*models.User{author, reader} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}

	book := &models.Book{Title: "Dune", AuthorID: author.ID, GenreID: 1}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	if _, err := s.ToggleLike(ctx, book.ID, reader.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if err := s.AddShare(ctx, book.ID, reader.ID); err != nil {
		t.Fatalf("AddShare() error = %v", err)
	}
	if err := s.CreateRating(ctx, &models.BookRating{UserID: reader.ID, BookID: book.ID}); err != nil {
		t.Fatalf("CreateRating() error = %v", err)
	}

	if err := s.DeleteUser(ctx, reader.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := s.GetRatingByUserBook(ctx, reader.ID, book.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("rating survived user delete, err = %v", err)
	}
	ratings, err := s.ListRatingsByUser(ctx, reader.ID)
	if err != nil {
		t.Fatalf("ListRatingsByUser() error = %v", err)
	}
	if len(ratings) != 0 {
		t.Errorf("ratings after user delete = %d, want 0", len(ratings))
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if len(got.LikedBy) != 0 || len(got.SharedBy) != 0 {
		t.Errorf("like/share edges after user delete = %v / %v, want empty", got.LikedBy, got.SharedBy)
	}

	// Books the deleted user authored stay in the catalog.
	if err := s.DeleteUser(ctx, author.ID); err != nil {
		t.Fatalf("DeleteUser(author) error = %v", err)
	}
	if _, err := s.GetBook(ctx, book.ID); err != nil {
		t.Errorf("authored book gone after author delete, err = %v", err)
	}
}

func TestGenreUniqueName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateGenre(ctx, &models.Genre{Name: "Fantasy"}); err != nil {
		t.Fatalf("CreateGenre() error = %v", err)
	}
	err := s.CreateGenre(ctx, &models.Genre{Name: "fantasy"})
	if !errors.Is(err, ErrGenreNameTaken) {
		t.Errorf("duplicate genre error = %v, want ErrGenreNameTaken", err)
	}

	g2 := &models.Genre{Name: "Sci-Fi"}
	if err := s.CreateGenre(ctx, g2); err != nil {
		t.Fatalf("CreateGenre() error = %v", err)
	}
	g2.Name = "Fantasy"
	if err := s.UpdateGenre(ctx, g2); !errors.Is(err, ErrGenreNameTaken) {
		t.Errorf("rename to taken name error = %v, want ErrGenreNameTaken", err)
	}
}

func TestToggleLike(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", AuthorID: 1, GenreID: 1}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}

	liked, err := s.ToggleLike(ctx, book.ID, 7)
	if err != nil || !liked {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", liked, err)
	}
	liked, err = s.ToggleLike(ctx, book.ID, 7)
	if err != nil || liked {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", liked, err)
	}
	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if len(got.LikedBy) != 0 {
		t.Errorf("LikedBy after double toggle = %v, want empty", got.LikedBy)
	}
}

func TestAddShareIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", AuthorID: 1, GenreID: 1}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.AddShare(ctx, book.ID, 9); err != nil {
			t.Fatalf("AddShare() #%d error = %v", i, err)
		}
	}
	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if len(got.SharedBy) != 1 || got.SharedBy[0] != 9 {
		t.Errorf("SharedBy = %v, want [9]", got.SharedBy)
	}
}

func TestUserPasswordPersisted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "keeper@example.com", Password: "$2a$10$fakehashfakehashfakeha"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	byID, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if byID.Password != u.Password {
		t.Errorf("GetUser().Password = %q, want stored hash", byID.Password)
	}

	byEmail, err := s.GetUserByEmail(ctx, "keeper@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.Password != u.Password {
		t.Errorf("GetUserByEmail().Password = %q, want stored hash", byEmail.Password)
	}
}

func TestListBooksFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	authors := []*models.User{
		{Email: "frank@example.com", FirstName: "Frank", LastName: "Herbert", Password: "h"},
		{Email: "alan@example.com", FirstName: "Alan", LastName: "Donovan", Password: "h"},
	}
	for _, u := range authors {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", u.Email, err)
		}
	}

	seed := []*models.Book{
		{Title: "The Go Programming Language", Description: "systems", GenreID: 1, AuthorID: 1},
		{Title: "Dune", Description: "desert epic", GenreID: 2, AuthorID: 2},
		{Title: "Children of Dune", Description: "sequel", GenreID: 2, AuthorID: 1},
	}
	for _, b := range seed {
		if err := s.CreateBook(ctx, b); err != nil {
			t.Fatalf("CreateBook(%s) error = %v", b.Title, err)
		}
	}
	if _, err := s.ToggleLike(ctx, seed[1].ID, 5); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	tests := []struct {
		name    string
		filter  BookFilter
		wantIDs []int64
	}{
		{"no filter", BookFilter{}, []int64{1, 2, 3}},
		{"search title", BookFilter{Search: "dune"}, []int64{2, 3}},
		{"search description", BookFilter{Search: "SYSTEMS"}, []int64{1}},
		{"search author name", BookFilter{Search: "herbert"}, []int64{1, 3}},
		{"order by author", BookFilter{OrderBy: "author"}, []int64{2, 1, 3}},
		{"genre filter", BookFilter{GenreID: 2}, []int64{2, 3}},
		{"author filter", BookFilter{AuthorID: 1}, []int64{1, 3}},
		{"order by title", BookFilter{OrderBy: "title"}, []int64{3, 2, 1}},
		{"order by likes desc", BookFilter{OrderBy: "likes", Descending: true}, []int64{2, 3, 1}},
		{"order by id desc", BookFilter{Descending: true}, []int64{3, 2, 1}},
		{"no match", BookFilter{Search: "nonexistent"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := s.ListBooks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListBooks() error = %v", err)
			}
			var ids []int64
			for _, b := range books {
				ids = append(ids, b.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("ListBooks() ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("ListBooks() ids = %v, want %v", ids, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestRatingLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", GenreID: 1, AuthorID: 1}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}

	grade := 4.0
	rating := &models.BookRating{UserID: 3, BookID: book.ID, Grade: &grade, ReadingTime: 10 * time.Minute}
	if err := s.CreateRating(ctx, rating); err != nil {
		t.Fatalf("CreateRating() error = %v", err)
	}

	dup := &models.BookRating{UserID: 3, BookID: book.ID}
	if err := s.CreateRating(ctx, dup); !errors.Is(err, ErrRatingExists) {
		t.Errorf("duplicate rating error = %v, want ErrRatingExists", err)
	}

	newGrade := 5.0
	updated, err := s.UpdateRating(ctx, rating.ID, "great", &newGrade, 20*time.Minute)
	if err != nil {
		t.Fatalf("UpdateRating() error = %v", err)
	}
	if updated.Grade == nil || *updated.Grade != 5.0 {
		t.Errorf("grade = %v, want 5.0 (replace semantics)", updated.Grade)
	}
	if updated.ReadingTime != 30*time.Minute {
		t.Errorf("reading time = %v, want 30m (accumulate semantics)", updated.ReadingTime)
	}

	// Another update without a grade keeps the stored one.
	updated, err = s.UpdateRating(ctx, rating.ID, "still great", nil, 0)
	if err != nil {
		t.Fatalf("UpdateRating() error = %v", err)
	}
	if updated.Grade == nil || *updated.Grade != 5.0 {
		t.Errorf("grade after nil update = %v, want 5.0", updated.Grade)
	}

	if err := s.DeleteRating(ctx, rating.ID); err != nil {
		t.Fatalf("DeleteRating() error = %v", err)
	}
	if _, err := s.GetRatingByUserBook(ctx, 3, book.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRatingByUserBook() after delete error = %v, want ErrNotFound", err)
	}

	// The pair index is free again after delete.
	again := &models.BookRating{UserID: 3, BookID: book.ID}
	if err := s.CreateRating(ctx, again); err != nil {
		t.Errorf("CreateRating() after delete error = %v", err)
	}
}

func TestDeleteBookRemovesRatings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &models.Book{Title: "Dune", GenreID: 1, AuthorID: 1}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	r := &models.BookRating{UserID: 2, BookID: book.ID}
	if err := s.CreateRating(ctx, r); err != nil {
		t.Fatalf("CreateRating() error = %v", err)
	}

	if err := s.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook() error = %v", err)
	}
	ratings, err := s.ListRatingsByBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("ListRatingsByBook() error = %v", err)
	}
	if len(ratings) != 0 {
		t.Errorf("ratings after book delete = %d, want 0", len(ratings))
	}
}
