package store

import (
	"encoding/json"
	"fmt"

	"refexcms/internal/database"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
)

// RelatedLinksKey is the document key of the investor Related Links tree.
const RelatedLinksKey = database.RelatedLinksKey

// RelatedLinksStore loads and saves the Related Links tree as one document.
type RelatedLinksStore struct {
	docs *DocumentStore
}

// NewRelatedLinksStore wraps a DocumentStore for the Related Links tree.
func NewRelatedLinksStore(docs *DocumentStore) *RelatedLinksStore {
	return &RelatedLinksStore{docs: docs}
}

// Load returns the stored tree, or an empty tree when nothing was saved yet.
func (s *RelatedLinksStore) Load() ([]models.Category, error) {
	d, err := s.docs.Get(RelatedLinksKey)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return []models.Category{}, nil
	}
	return DecodeTree(d.Body)
}

// Save replaces the stored tree and returns it as persisted.
func (s *RelatedLinksStore) Save(tree []models.Category, updatedBy string) ([]models.Category, error) {
	body, err := json.Marshal(linktree.Normalize(linktree.Clone(tree)))
	if err != nil {
		return nil, fmt.Errorf("encode related links: %w", err)
	}
	d, err := s.docs.Put(RelatedLinksKey, body, updatedBy)
	if err != nil {
		return nil, err
	}
	return DecodeTree(d.Body)
}

// DecodeTree parses a stored tree body, normalizing missing child lists.
func DecodeTree(body []byte) ([]models.Category, error) {
	var tree []models.Category
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("decode related links: %w", err)
	}
	return linktree.Normalize(tree), nil
}
