package models

import (
	"encoding/json"
	"time"
)

// Document is a whole JSON document stored under a well-known key, such
// as the investor Related Links tree. It is always replaced as a unit.
type Document struct {
	Key       string          `json:"key"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by"`
}

// DocumentRevision is one saved version of a Document.
type DocumentRevision struct {
	ID        int64           `json:"id"`
	Key       string          `json:"key"`
	Body      json.RawMessage `json:"body,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}
