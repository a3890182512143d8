// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package api implements the BookHub HTTP API.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/alezhuq/hub-back/internal/logging"
)

// Error codes carried in error responses. Clients branch on these, not on
// the human-readable message.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// APIResponse is the uniform envelope for every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries collection metadata.
type Meta struct {
	Count int `json:"count"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Encoding response failed")
	}
}

// OK writes a 200 with the given payload.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, APIResponse{Success: true, Data: data})
}

// OKList writes a 200 with a collection payload and its count.
func OKList(w http.ResponseWriter, r *http.Request, data any, count int) {
	writeJSON(w, r, http.StatusOK, APIResponse{Success: true, Data: data, Meta: &Meta{Count: count}})
}

// Created writes a 201 with the given payload.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusCreated, APIResponse{Success: true, Data: data})
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error response with the given status and code.
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// ValidationFailed writes a 400 with the validation error code.
func ValidationFailed(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusBadRequest, ErrCodeValidation, message)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, r *http.Request, message string) {
	Fail(w, r, http.StatusConflict, ErrCodeConflict, message)
}

// InternalError writes a 500 with a generic message; the real error goes
// to the log, never to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	Fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
