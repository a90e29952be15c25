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

// RevisionStore reads the saved versions of CMS documents. Revisions are
// written by DocumentStore.Put.
type RevisionStore struct {
	db *sql.DB
}

// NewRevisionStore creates a new RevisionStore backed by the given database.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// ListByKey returns up to limit revisions of a document, newest first.
// Bodies are omitted to keep the listing small.
func (s *RevisionStore) ListByKey(key string, limit int) ([]models.DocumentRevision, error) {
	rows, err := s.db.Query(`
		SELECT id, key, created_by, created_at
		FROM cms_document_revisions
		WHERE key = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []models.DocumentRevision
	for rows.Next() {
		var r models.DocumentRevision
		if err := rows.Scan(&r.ID, &r.Key, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// FindByID returns a single revision with its body, or nil if not found.
func (s *RevisionStore) FindByID(key string, id int64) (*models.DocumentRevision, error) {
	r := &models.DocumentRevision{}
	var body []byte
	err := s.db.QueryRow(`
		SELECT id, key, body, created_by, created_at
		FROM cms_document_revisions
		WHERE key = $1 AND id = $2
	`, key, id).Scan(&r.ID, &r.Key, &body, &r.CreatedBy, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	r.Body = body
	return r, nil
}

// Count returns the number of revisions stored for a document.
func (s *RevisionStore) Count(key string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM cms_document_revisions WHERE key = $1`, key).Scan(&count)
	return count, err
}
