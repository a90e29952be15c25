// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package domain defines error types that carry their HTTP status so
// handlers can map failures without string matching.
package domain

import (
	"errors"
	"net/http"
)

// HTTPError is implemented by errors that map to an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type (
	// NotFoundError indicates the addressed record does not exist.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates a malformed request. Fields maps an input
	// name to its problem.
	ValidationError struct {
		Message string
		Fields  map[string]string
	}

	// UnauthorizedError indicates a missing or invalid credential.
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates a valid credential without the required permission.
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// StatusOf returns the HTTP status for err, or 500 when err carries none.
func StatusOf(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
