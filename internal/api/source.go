// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"context"

	"github.com/alezhuq/hub-back/internal/recommend"
	"github.com/alezhuq/hub-back/internal/store"
)

// storeSource feeds the recommendation engine from the store. Likes and
// shares live on book records, grades and reading time on ratings; the
// snapshot merges both into per-(user, book) interactions.
type storeSource struct {
	store *store.Store
}

func (s *storeSource) RecommendInput(ctx context.Context) (*recommend.Input, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	books, err := s.store.ListBooks(ctx, store.BookFilter{})
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return nil, err
	}

	input := &recommend.Input{
		UserIDs: make([]int64, 0, len(users)),
		BookIDs: make([]int64, 0, len(books)),
	}
	for _, u := range users {
		input.UserIDs = append(input.UserIDs, u.ID)
	}

	type pair struct{ user, book int64 }
	merged := make(map[pair]*recommend.Interaction)

	for _, b := range books {
		input.BookIDs = append(input.BookIDs, b.ID)
		for _, uid := range b.LikedBy {
			key := pair{uid, b.ID}
			in := merged[key]
			if in == nil {
				in = &recommend.Interaction{UserID: uid, BookID: b.ID}
				merged[key] = in
			}
			in.Liked = true
		}
		for _, uid := range b.SharedBy {
			key := pair{uid, b.ID}
			in := merged[key]
			if in == nil {
				in = &recommend.Interaction{UserID: uid, BookID: b.ID}
				merged[key] = in
			}
			in.Shared = true
		}
	}
	for _, rt := range ratings {
		key := pair{rt.UserID, rt.BookID}
		in := merged[key]
		if in == nil {
			in = &recommend.Interaction{UserID: rt.UserID, BookID: rt.BookID}
			merged[key] = in
		}
		in.Grade = rt.Grade
		in.ReadingTime = rt.ReadingTime
	}

	input.Interactions = make([]recommend.Interaction, 0, len(merged))
	for _, in := range merged {
		input.Interactions = append(input.Interactions, *in)
	}
	return input, nil
}

var _ recommend.Source = (*storeSource)(nil)
