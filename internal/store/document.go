// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"refexcms/internal/models"
)

// DocumentStore manages whole JSON documents in cms_documents.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore returns a new DocumentStore backed by the given database.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Get returns the document stored under key, or nil if there is none.
func (s *DocumentStore) Get(key string) (*models.Document, error) {
	d := &models.Document{}
	var body []byte
	err := s.db.QueryRow(`
		SELECT key, body, updated_at, updated_by
		FROM cms_documents WHERE key = $1
	`, key).Scan(&d.Key, &body, &d.UpdatedAt, &d.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	d.Body = body
	return d, nil
}

// Put replaces the document under key and records the new body as a
// revision, both in one transaction. The previous body is overwritten
// unconditionally.
func (s *DocumentStore) Put(key string, body []byte, updatedBy string) (*models.Document, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("put document %s: begin: %w", key, err)
	}
	defer tx.Rollback()

	d := &models.Document{}
	var stored []byte
	err = tx.QueryRow(`
		INSERT INTO cms_documents (key, body, updated_at, updated_by)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (key)
		DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
		RETURNING key, body, updated_at, updated_by
	`, key, string(body), updatedBy).Scan(&d.Key, &stored, &d.UpdatedAt, &d.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("put document %s: %w", key, err)
	}
	d.Body = stored

	if _, err := tx.Exec(`
		INSERT INTO cms_document_revisions (key, body, created_by)
		VALUES ($1, $2, $3)
	`, key, string(body), updatedBy); err != nil {
		return nil, fmt.Errorf("put document %s: revision: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("put document %s: commit: %w", key, err)
	}
	return d, nil
}
