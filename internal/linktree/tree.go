// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package linktree implements the investor Related-Links tree: the pure
// edit operations over Category → Section → Item, a stateful editing
// session built on them, and the read-only projection used by the public
// page.
//
// List position is the authoritative sibling order. The Order fields are
// carried as display metadata and are never renumbered by moves.
package linktree

import (
	"fmt"

	"refexcms/internal/domain"
	"refexcms/internal/models"
)

// Clone returns a deep copy of the tree, so edits never alias the caller's slices.
func Clone(tree []models.Category) []models.Category {
	if tree == nil {
		return nil
	}
	out := make([]models.Category, len(tree))
	for i, c := range tree {
		out[i] = c
		out[i].Sections = cloneSections(c.Sections)
	}
	return out
}

func cloneSections(sections []models.Section) []models.Section {
	if sections == nil {
		return nil
	}
	out := make([]models.Section, len(sections))
	for i, s := range sections {
		out[i] = s
		if s.Items != nil {
			out[i].Items = append([]models.Item(nil), s.Items...)
		}
	}
	return out
}

// nextID returns max(existing ids, 0) + 1 for a sibling list.
func nextID[T any](siblings []T, id func(T) int) int {
	maxID := 0
	for _, s := range siblings {
		if v := id(s); v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

// indexOf returns the list position of the sibling with the given id, or -1.
func indexOf[T any](siblings []T, id func(T) int, want int) int {
	for i, s := range siblings {
		if id(s) == want {
			return i
		}
	}
	return -1
}

// swapUp exchanges the element at i with its predecessor. At the first
// position it does nothing.
func swapUp[T any](siblings []T, i int) {
	if i <= 0 || i >= len(siblings) {
		return
	}
	siblings[i-1], siblings[i] = siblings[i], siblings[i-1]
}

// swapDown exchanges the element at i with its successor. At the last
// position it does nothing.
func swapDown[T any](siblings []T, i int) {
	if i < 0 || i >= len(siblings)-1 {
		return
	}
	siblings[i], siblings[i+1] = siblings[i+1], siblings[i]
}

// removeAt drops the element at i, returning a fresh slice.
func removeAt[T any](siblings []T, i int) []T {
	out := make([]T, 0, len(siblings)-1)
	out = append(out, siblings[:i]...)
	return append(out, siblings[i+1:]...)
}

func categoryID(c models.Category) int { return c.ID }
func sectionID(s models.Section) int   { return s.ID }
func itemID(it models.Item) int        { return it.ID }

func categoryNotFound(id int) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("category %d not found", id)}
}

func sectionNotFound(categoryID, id int) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("section %d not found in category %d", id, categoryID)}
}

func itemNotFound(sectionID, id int) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("item %d not found in section %d", id, sectionID)}
}

// FindCategory returns the category with the given id, or nil.
func FindCategory(tree []models.Category, id int) *models.Category {
	if i := indexOf(tree, categoryID, id); i >= 0 {
		return &tree[i]
	}
	return nil
}

// locateSection resolves a (category, section) address in tree.
func locateSection(tree []models.Category, catID, secID int) (ci, si int, err error) {
	ci = indexOf(tree, categoryID, catID)
	if ci < 0 {
		return -1, -1, categoryNotFound(catID)
	}
	si = indexOf(tree[ci].Sections, sectionID, secID)
	if si < 0 {
		return -1, -1, sectionNotFound(catID, secID)
	}
	return ci, si, nil
}

// locateItem resolves a (category, section, item) address in tree.
func locateItem(tree []models.Category, catID, secID, id int) (ci, si, ii int, err error) {
	ci, si, err = locateSection(tree, catID, secID)
	if err != nil {
		return -1, -1, -1, err
	}
	ii = indexOf(tree[ci].Sections[si].Items, itemID, id)
	if ii < 0 {
		return -1, -1, -1, itemNotFound(secID, id)
	}
	return ci, si, ii, nil
}

// Normalize replaces nil child lists with empty ones so the tree always
// serializes with [] rather than null. It modifies tree in place.
func Normalize(tree []models.Category) []models.Category {
	if tree == nil {
		return []models.Category{}
	}
	for ci := range tree {
		if tree[ci].Sections == nil {
			tree[ci].Sections = []models.Section{}
		}
		for si := range tree[ci].Sections {
			if tree[ci].Sections[si].Items == nil {
				tree[ci].Sections[si].Items = []models.Item{}
			}
		}
	}
	return tree
}
