// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"refexcms/internal/models"
)

// UploadStore records files uploaded for related-links items.
type UploadStore struct {
	db *sql.DB
}

// NewUploadStore creates a new UploadStore with the given database connection.
func NewUploadStore(db *sql.DB) *UploadStore {
	return &UploadStore{db: db}
}

// uploadColumns lists the columns selected in upload queries.
const uploadColumns = `id, kind, original_name, content_type, size_bytes,
	storage_key, url, uploaded_by, created_at`

func scanUpload(scanner interface{ Scan(...any) error }) (*models.Upload, error) {
	var u models.Upload
	err := scanner.Scan(
		&u.ID, &u.Kind, &u.OriginalName, &u.ContentType, &u.SizeBytes,
		&u.StorageKey, &u.URL, &u.UploadedBy, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new upload record and returns it with the generated ID.
func (s *UploadStore) Create(u *models.Upload) (*models.Upload, error) {
	row := s.db.QueryRow(`
		INSERT INTO uploads (kind, original_name, content_type, size_bytes,
			storage_key, url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+uploadColumns,
		u.Kind, u.OriginalName, u.ContentType, u.SizeBytes,
		u.StorageKey, u.URL, u.UploadedBy,
	)
	created, err := scanUpload(row)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single upload record by its UUID.
func (s *UploadStore) FindByID(id uuid.UUID) (*models.Upload, error) {
	u, err := scanUpload(s.db.QueryRow(`SELECT `+uploadColumns+` FROM uploads WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find upload by id: %w", err)
	}
	return u, nil
}

// List returns uploads ordered by creation date, newest first, with pagination.
func (s *UploadStore) List(limit, offset int) ([]models.Upload, error) {
	rows, err := s.db.Query(`
		SELECT `+uploadColumns+`
		FROM uploads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var items []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// Delete removes an upload record and returns it so the caller can remove
// the stored file.
func (s *UploadStore) Delete(id uuid.UUID) (*models.Upload, error) {
	u, err := scanUpload(s.db.QueryRow(`
		DELETE FROM uploads WHERE id = $1
		RETURNING `+uploadColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete upload: %w", err)
	}
	return u, nil
}
