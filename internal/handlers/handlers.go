// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP endpoints of the CMS: the Related
// Links document API, login, file uploads, and the public investor page.
// Handlers depend on small interfaces so they can be exercised without
// Postgres or Valkey.
package handlers

import (
	"context"
	"net/http"
	"time"

	"refexcms/internal/middleware"
	"refexcms/internal/models"
)

// TreeStore loads and replaces the Related Links tree.
type TreeStore interface {
	Load() ([]models.Category, error)
	Save(tree []models.Category, updatedBy string) ([]models.Category, error)
}

// RevisionReader reads saved versions of a document.
type RevisionReader interface {
	ListByKey(key string, limit int) ([]models.DocumentRevision, error)
	FindByID(key string, id int64) (*models.DocumentRevision, error)
}

// DocumentCache caches raw document bodies by generation-scoped key.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Fill(ctx context.Context, key string, body []byte)
}

// PageCache caches rendered public pages by generation-scoped key.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Fill(ctx context.Context, key string, html []byte)
	InvalidateAll(ctx context.Context)
}

// Generations versions the cached copies of the Related Links tree. Cache
// keys embed Current; a save calls Bump once the new tree is committed.
type Generations interface {
	Current(ctx context.Context) (int64, bool)
	Bump(ctx context.Context) (int64, error)
}

// UserAuthenticator looks up users and checks their passwords.
type UserAuthenticator interface {
	FindByEmail(email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *models.User) (string, time.Time, error)
}

// UploadRecorder records stored files.
type UploadRecorder interface {
	Create(u *models.Upload) (*models.Upload, error)
}

// actor returns the email of the authenticated caller, or "" when the
// request carries no claims.
func actor(r *http.Request) string {
	if c := middleware.ClaimsFromCtx(r.Context()); c != nil {
		return c.Email()
	}
	return ""
}
