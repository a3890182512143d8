// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/logging"
	"github.com/alezhuq/hub-back/internal/middleware"
	"github.com/alezhuq/hub-back/internal/recommend"
	"github.com/alezhuq/hub-back/internal/store"
)

// maxBodyBytes bounds ordinary JSON request bodies. Book uploads get the
// larger configured limit.
const maxBodyBytes = 1 << 20

// Server wires the store, token manager, and recommendation engine into an
// HTTP handler tree.
type Server struct {
	store  *store.Store
	jwt    *auth.JWTManager
	engine *recommend.Engine
	mw     *Middleware
	cfg    *config.Config
}

// NewServer assembles a server from its dependencies.
func NewServer(cfg *config.Config, st *store.Store, jwt *auth.JWTManager) *Server {
	engine := recommend.NewEngine(&storeSource{store: st}, recommend.Config{
		WeightMode:      cfg.Recommend.WeightMode,
		MinInteractions: cfg.Recommend.MinInteractions,
	})
	return &Server{
		store:  st,
		jwt:    jwt,
		engine: engine,
		mw:     NewMiddleware(cfg.Security, jwt),
		cfg:    cfg,
	}
}

// Router builds the chi handler tree. Public routes carry rate limiting
// only; everything under the authenticated group rejects missing or bad
// tokens before touching the store.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.mw.CORS)
	r.Use(SecurityHeaders)
	r.Use(middleware.Prometheus)

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.mw.RateLimitLogin)
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
		})

		// Catalog reads are public; anything that writes or exposes
		// per-user state requires a token.
		r.Group(func(r chi.Router) {
			r.Use(s.mw.RateLimit)

			r.Get("/genres", s.handleListGenres)
			r.Get("/genres/{id}", s.handleGetGenre)
			r.Get("/books", s.handleListBooks)
			r.Get("/books/{id}", s.handleGetBook)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.mw.RateLimit)
			r.Use(s.mw.Authenticate)

			r.Route("/account", func(r chi.Router) {
				r.Get("/", s.handleGetAccount)
				r.Put("/", s.handleUpdateAccount)
				r.Delete("/", s.handleDeleteAccount)
			})

			r.Post("/genres", s.handleCreateGenre)
			r.Put("/genres/{id}", s.handleUpdateGenre)
			r.Delete("/genres/{id}", s.handleDeleteGenre)

			r.Post("/books", s.handleCreateBook)
			r.Get("/books/my", s.handleMyBooks)
			r.Put("/books/{id}", s.handleUpdateBook)
			r.Delete("/books/{id}", s.handleDeleteBook)
			r.Post("/books/{id}/like", s.handleLikeBook)
			r.Post("/books/{id}/share", s.handleShareBook)
			r.Get("/books/{id}/ratings", s.handleListBookRatings)
			r.Post("/books/{id}/ratings", s.handleCreateRating)

			r.Route("/ratings/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRating)
				r.Put("/", s.handleUpdateRating)
				r.Patch("/", s.handleUpdateRating)
				r.Delete("/", s.handleDeleteRating)
			})

			r.Get("/recommendations", s.handleRecommendations)
		})
	})

	return r
}

// decode reads a JSON body into v with a size cap. Unknown fields are
// rejected so typos fail loudly instead of silently dropping input.
func decode(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// currentUserID pulls the authenticated user's ID from the request. The
// auth middleware guarantees it exists on protected routes.
func currentUserID(r *http.Request) (int64, bool) {
	return auth.UserIDFromContext(r.Context())
}

// isSuperuser reports whether the request carries superuser claims.
func isSuperuser(r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	return ok && claims.Superuser
}

// touchActivity updates the caller's last-active timestamp. Failures are
// logged and ignored; activity tracking never blocks a request.
func (s *Server) touchActivity(r *http.Request, userID int64) {
	if err := s.store.TouchUser(r.Context(), userID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("user_id", userID).Msg("Updating last active failed")
	}
}
