// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Command server runs the BookHub API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alezhuq/hub-back/internal/api"
	"github.com/alezhuq/hub-back/internal/auth"
	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/logging"
	"github.com/alezhuq/hub-back/internal/models"
	"github.com/alezhuq/hub-back/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Loading configuration failed")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	st, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Opening store failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Closing store failed")
		}
	}()

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenLifetime)
	if err != nil {
		logging.Fatal().Err(err).Msg("Creating token manager failed")
	}

	if err := bootstrapSuperuser(st, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Bootstrapping superuser failed")
	}

	server := api.NewServer(cfg, st, jwtManager)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Fatal().Err(err).Msg("Server failed")
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// bootstrapSuperuser creates the initial admin account from
// BOOKHUB_ADMIN_EMAIL and BOOKHUB_ADMIN_PASSWORD when both are set and no
// account with that email exists yet. Genre management needs at least one
// superuser, and registration never grants the flag.
func bootstrapSuperuser(st *store.Store, cfg *config.Config) error {
	email := os.Getenv("BOOKHUB_ADMIN_EMAIL")
	password := os.Getenv("BOOKHUB_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	ctx := context.Background()
	if _, err := st.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	admin := &models.User{Email: email, Password: hash, Superuser: true}
	if err := st.CreateUser(ctx, admin); err != nil {
		return err
	}
	logging.Info().Int64("user_id", admin.ID).Msg("Superuser bootstrapped")
	return nil
}
