// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *Meta           `json:"meta"`
}

type testServer struct {
	handler http.Handler
	store   *store.Store
	t       *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Security.JWTSecret = "test-secret-test-secret-test-secret!"
	cfg.Security.BcryptCost = 4
	cfg.Security.RateLimitRPM = 10000
	cfg.Security.LoginRateLimitRPM = 10000
	cfg.Store = config.StoreConfig{InMemory: true}

	st, err := store.Open(cfg.Store)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenLifetime)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	return &testServer{
		handler: NewServer(cfg, st, jwtManager).Router(),
		store:   st,
		t:       t,
	}
}

func (ts *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, *envelope) {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	env := &envelope{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), env); err != nil {
			ts.t.Fatalf("decoding envelope from %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

// register creates an account through the API and returns a login token.
func (ts *testServer) register(email, password string) string {
	ts.t.Helper()
	rec, _ := ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("register %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	return ts.login(email, password)
}

func (ts *testServer) login(email, password string) string {
	ts.t.Helper()
	rec, env := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		ts.t.Fatalf("login %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		ts.t.Fatalf("decoding token response: %v", err)
	}
	return resp.Token
}

// superuser seeds an admin account directly and returns a login token.
func (ts *testServer) superuser(email, password string) string {
	ts.t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		ts.t.Fatalf("HashPassword() error = %v", err)
	}
	admin := &models.User{Email: email, Password: hash, Superuser: true}
	if err := ts.store.CreateUser(context.Background(), admin); err != nil {
		ts.t.Fatalf("CreateUser() error = %v", err)
	}
	return ts.login(email, password)
}

func (ts *testServer) createGenre(adminToken, name string) int64 {
	ts.t.Helper()
	rec, env := ts.do(http.MethodPost, "/api/v1/genres", adminToken, map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("create genre: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var g models.Genre
	if err := json.Unmarshal(env.Data, &g); err != nil {
		ts.t.Fatalf("decoding genre: %v", err)
	}
	return g.ID
}

func (ts *testServer) createBook(token, title string, genreID int64) int64 {
	ts.t.Helper()
	rec, env := ts.do(http.MethodPost, "/api/v1/books", token, map[string]any{
		"title":    title,
		"genre_id": genreID,
	})
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("create book: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var b models.Book
	if err := json.Unmarshal(env.Data, &b); err != nil {
		ts.t.Fatalf("decoding book: %v", err)
	}
	return b.ID
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	token := ts.register("alice@example.com", "password123")
	if token == "" {
		t.Fatal("empty token after register + login")
	}

	rec, env := ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusConflict || env.Error == nil || env.Error.Code != ErrCodeConflict {
		t.Errorf("duplicate register: status = %d, error = %+v", rec.Code, env.Error)
	}

	rec, _ = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password login: status = %d, want 401", rec.Code)
	}

	rec, _ = ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "password123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email register: status = %d, want 400", rec.Code)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/recommendations"},
		{http.MethodGet, "/api/v1/books/my"},
		{http.MethodPost, "/api/v1/books"},
		{http.MethodGet, "/api/v1/account"},
		{http.MethodPost, "/api/v1/genres"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec, env := ts.do(p.method, p.path, "", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if env.Error == nil || env.Error.Code != ErrCodeUnauthorized {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeUnauthorized)
			}
		})
	}
}

func TestCatalogReadsArePublic(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")

	genreID := ts.createGenre(admin, "Fiction")
	bookID := ts.createBook(admin, "Dune", genreID)

	paths := []string{
		"/api/v1/genres",
		fmt.Sprintf("/api/v1/genres/%d", genreID),
		"/api/v1/books",
		fmt.Sprintf("/api/v1/books/%d", bookID),
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec, env := ts.do(http.MethodGet, p, "", nil)
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200 without a token", rec.Code)
			}
			if !env.Success {
				t.Errorf("envelope = %+v, want success", env)
			}
		})
	}
}

func TestGenrePermissions(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")
	user := ts.register("bob@example.com", "password123")

	rec, _ := ts.do(http.MethodPost, "/api/v1/genres", user, map[string]string{"name": "Fantasy"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-superuser create genre: status = %d, want 403", rec.Code)
	}

	id := ts.createGenre(admin, "Fantasy")

	rec, env := ts.do(http.MethodGet, fmt.Sprintf("/api/v1/genres/%d", id), user, nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Errorf("read genre as plain user: status = %d", rec.Code)
	}

	rec, _ = ts.do(http.MethodDelete, fmt.Sprintf("/api/v1/genres/%d", id), user, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-superuser delete genre: status = %d, want 403", rec.Code)
	}
}

func TestBookAuthorPermissions(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")
	owner := ts.register("owner@example.com", "password123")
	other := ts.register("other@example.com", "password123")

	genreID := ts.createGenre(admin, "Fiction")
	bookID := ts.createBook(owner, "Dune", genreID)

	update := map[string]any{"title": "Dune (revised)", "genre_id": genreID}
	rec, _ := ts.do(http.MethodPut, fmt.Sprintf("/api/v1/books/%d", bookID), other, update)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-author update: status = %d, want 403", rec.Code)
	}

	rec, env := ts.do(http.MethodPut, fmt.Sprintf("/api/v1/books/%d", bookID), owner, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("author update: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var b models.Book
	if err := json.Unmarshal(env.Data, &b); err != nil {
		t.Fatalf("decoding book: %v", err)
	}
	if b.Title != "Dune (revised)" {
		t.Errorf("title = %q, want updated", b.Title)
	}

	rec, _ = ts.do(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", bookID), other, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-author delete: status = %d, want 403", rec.Code)
	}
	rec, _ = ts.do(http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", bookID), owner, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("author delete: status = %d, want 204", rec.Code)
	}
}

func TestLikeAndShare(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")
	user := ts.register("bob@example.com", "password123")

	genreID := ts.createGenre(admin, "Fiction")
	bookID := ts.createBook(user, "Dune", genreID)

	likePath := fmt.Sprintf("/api/v1/books/%d/like", bookID)
	rec, env := ts.do(http.MethodPost, likePath, user, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("like: status = %d", rec.Code)
	}
	var likeResp map[string]bool
	_ = json.Unmarshal(env.Data, &likeResp)
	if !likeResp["liked"] {
		t.Error("first like: liked = false, want true")
	}

	rec, env = ts.do(http.MethodPost, likePath, user, nil)
	_ = json.Unmarshal(env.Data, &likeResp)
	if rec.Code != http.StatusOK || likeResp["liked"] {
		t.Errorf("second like: status = %d, liked = %v, want toggle off", rec.Code, likeResp["liked"])
	}

	sharePath := fmt.Sprintf("/api/v1/books/%d/share", bookID)
	for i := 0; i < 2; i++ {
		rec, _ = ts.do(http.MethodPost, sharePath, user, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("share #%d: status = %d", i, rec.Code)
		}
	}
	book, err := ts.store.GetBook(context.Background(), bookID)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if len(book.SharedBy) != 1 {
		t.Errorf("SharedBy = %v, want exactly one entry", book.SharedBy)
	}
}

func TestRatingFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")
	user := ts.register("bob@example.com", "password123")
	other := ts.register("eve@example.com", "password123")

	genreID := ts.createGenre(admin, "Fiction")
	bookID := ts.createBook(user, "Dune", genreID)

	ratingsPath := fmt.Sprintf("/api/v1/books/%d/ratings", bookID)
	rec, env := ts.do(http.MethodPost, ratingsPath, user, map[string]any{
		"grade":                4.0,
		"reading_time_seconds": 600,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rating: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rating models.BookRating
	if err := json.Unmarshal(env.Data, &rating); err != nil {
		t.Fatalf("decoding rating: %v", err)
	}

	rec, _ = ts.do(http.MethodPost, ratingsPath, user, map[string]any{"grade": 5.0})
	if rec.Code != http.StatusConflict {
		t.Errorf("second rating same pair: status = %d, want 409", rec.Code)
	}

	rec, _ = ts.do(http.MethodPost, ratingsPath, user, map[string]any{"grade": 6.0})
	if rec.Code == http.StatusCreated {
		t.Error("grade above 5 accepted")
	}

	ratingPath := fmt.Sprintf("/api/v1/ratings/%d", rating.ID)
	rec, _ = ts.do(http.MethodPut, ratingPath, other, map[string]any{"grade": 1.0})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-owner update: status = %d, want 403", rec.Code)
	}

	rec, env = ts.do(http.MethodPut, ratingPath, user, map[string]any{
		"grade":                5.0,
		"reading_time_seconds": 300,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: status = %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &rating); err != nil {
		t.Fatalf("decoding rating: %v", err)
	}
	if rating.Grade == nil || *rating.Grade != 5.0 {
		t.Errorf("grade = %v, want replaced with 5", rating.Grade)
	}
	if rating.ReadingTime.Seconds() != 900 {
		t.Errorf("reading time = %v, want accumulated 900s", rating.ReadingTime)
	}

	// PATCH is an alias for PUT on ratings.
	rec, env = ts.do(http.MethodPatch, ratingPath, user, map[string]any{
		"reading_time_seconds": 100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &rating); err != nil {
		t.Fatalf("decoding rating: %v", err)
	}
	if rating.ReadingTime.Seconds() != 1000 {
		t.Errorf("reading time after patch = %v, want 1000s", rating.ReadingTime)
	}
	if rating.Grade == nil || *rating.Grade != 5.0 {
		t.Errorf("grade after patch without grade = %v, want kept at 5", rating.Grade)
	}
}

func TestRecommendationsEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.superuser("admin@example.com", "password123")
	alice := ts.register("alice@example.com", "password123")
	bob := ts.register("bob@example.com", "password123")

	genreID := ts.createGenre(admin, "Fiction")
	book1 := ts.createBook(admin, "First", genreID)
	book2 := ts.createBook(admin, "Second", genreID)

	// Alice likes book1 and grades book2 five; Bob likes book2.
	rec, _ := ts.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/like", book1), alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice like: status = %d", rec.Code)
	}
	rec, _ = ts.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/ratings", book2), alice, map[string]any{"grade": 5.0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("alice rating: status = %d", rec.Code)
	}
	rec, _ = ts.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/like", book2), bob, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("bob like: status = %d", rec.Code)
	}

	rec, env := ts.do(http.MethodGet, "/api/v1/recommendations", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ranked []struct {
		BookID int64   `json:"book_id"`
		Score  float64 `json:"score"`
	}
	if err := json.Unmarshal(env.Data, &ranked); err != nil {
		t.Fatalf("decoding recommendations: %v", err)
	}
	// Alice already liked book1, so only book2 remains.
	if len(ranked) != 1 || ranked[0].BookID != book2 {
		t.Fatalf("recommendations = %+v, want only book %d", ranked, book2)
	}
	if env.Meta == nil || env.Meta.Count != 1 {
		t.Errorf("meta = %+v, want count 1", env.Meta)
	}
}

func TestRecommendationsEmptyCatalog(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register("solo@example.com", "password123")

	rec, env := ts.do(http.MethodGet, "/api/v1/recommendations", user, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var ranked []any
	if err := json.Unmarshal(env.Data, &ranked); err != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		t.Fatalf("decoding: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("ranked = %v, want empty", ranked)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec, _ := ts.do(http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics: status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("bookhub_http_requests_total")) {
		t.Error("/metrics output missing bookhub_http_requests_total")
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(http.MethodGet, "/health/live", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
