// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadKind distinguishes the two upload endpoints.
type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadPDF   UploadKind = "pdf"
)

// Upload records a file stored for use by related-links items.
// The file itself lives in object storage or on local disk.
type Upload struct {
	ID           uuid.UUID  `json:"id"`
	Kind         UploadKind `json:"kind"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	StorageKey   string     `json:"storage_key"`
	URL          string     `json:"url"`
	UploadedBy   string     `json:"uploaded_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FormField is the multipart field the file is sent in.
func (k UploadKind) FormField() string {
	return string(k)
}

// URLField is the JSON key of the stored file's URL in the upload
// response, matching the item field the URL is meant for.
func (k UploadKind) URLField() string {
	if k == UploadPDF {
		return "pdfUrl"
	}
	return "imageUrl"
}

// HumanSize returns a human-readable file size string.
func (u *Upload) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case u.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(u.SizeBytes)/float64(mb))
	case u.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(u.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", u.SizeBytes)
	}
}
