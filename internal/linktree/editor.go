// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package linktree

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"refexcms/internal/models"
)

// ErrNotConfirmed is returned when a destructive operation is declined.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Confirmer approves destructive operations before they are applied.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// sectionKey addresses a section across categories, since section ids are
// only unique within their category.
type sectionKey struct {
	category int
	section  int
}

// Editor is one editing session over an in-memory copy of the tree.
// Mutations only touch the session; persisting is a separate explicit step
// performed by the caller with Tree().
type Editor struct {
	tree     []models.Category
	selected int // 0 when nothing is selected
	expanded map[sectionKey]bool
	dirty    bool
	confirm  Confirmer
	now      func() time.Time
}

// NewEditor starts a session on a copy of tree. The first category is
// selected. A nil confirmer declines every destructive operation.
func NewEditor(tree []models.Category, confirm Confirmer) *Editor {
	e := &Editor{
		tree:     Normalize(Clone(tree)),
		expanded: make(map[sectionKey]bool),
		confirm:  confirm,
		now:      time.Now,
	}
	if len(e.tree) > 0 {
		e.selected = e.tree[0].ID
	}
	return e
}

// SetClock overrides the time source used for default financial years.
func (e *Editor) SetClock(now func() time.Time) {
	e.now = now
}

// Tree returns a copy of the session's current tree.
func (e *Editor) Tree() []models.Category {
	return Clone(e.tree)
}

// Dirty reports whether the tree changed since the session started or
// since the last MarkSaved.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// MarkSaved clears the dirty flag after a successful save.
func (e *Editor) MarkSaved() {
	e.dirty = false
}

// Selected returns the selected category id, if any.
func (e *Editor) Selected() (int, bool) {
	return e.selected, e.selected != 0
}

// Select makes the given category the selected one.
func (e *Editor) Select(id int) error {
	if FindCategory(e.tree, id) == nil {
		return categoryNotFound(id)
	}
	e.selected = id
	return nil
}

// apply replaces the session tree with the result of an operation.
func (e *Editor) apply(next []models.Category, err error) error {
	if err != nil {
		return err
	}
	// Boundary moves and same-value updates hand back an equal tree.
	if reflect.DeepEqual(e.tree, next) {
		return nil
	}
	e.tree = next
	e.dirty = true
	return nil
}

func (e *Editor) confirmed(prompt string) bool {
	return e.confirm != nil && e.confirm.Confirm(prompt)
}

// AddCategory appends a new category and selects it.
func (e *Editor) AddCategory() int {
	next, id := AddCategory(e.tree)
	e.tree = next
	e.dirty = true
	e.selected = id
	return id
}

// UpdateCategoryName renames a category.
func (e *Editor) UpdateCategoryName(id int, name string) error {
	return e.apply(UpdateCategoryName(e.tree, id, name))
}

// UpdateCategoryCollapsible toggles accordion rendering for a category.
func (e *Editor) UpdateCategoryCollapsible(id int, collapsible bool) error {
	return e.apply(UpdateCategoryCollapsible(e.tree, id, collapsible))
}

// DeleteCategory removes a category and everything under it once the
// confirmer approves. Deleting the selected category clears the selection.
func (e *Editor) DeleteCategory(id int) error {
	c := FindCategory(e.tree, id)
	if c == nil {
		return categoryNotFound(id)
	}
	if !e.confirmed(fmt.Sprintf("Delete category %q and all of its sections?", c.Name)) {
		return ErrNotConfirmed
	}
	if err := e.apply(DeleteCategory(e.tree, id)); err != nil {
		return err
	}
	for k := range e.expanded {
		if k.category == id {
			delete(e.expanded, k)
		}
	}
	if e.selected == id {
		e.selected = 0
	}
	return nil
}

// MoveCategoryUp moves a category one position earlier.
func (e *Editor) MoveCategoryUp(id int) error {
	return e.apply(MoveCategoryUp(e.tree, id))
}

// MoveCategoryDown moves a category one position later.
func (e *Editor) MoveCategoryDown(id int) error {
	return e.apply(MoveCategoryDown(e.tree, id))
}

// AddSection appends a section to a category and returns its id.
func (e *Editor) AddSection(catID int) (int, error) {
	next, id, err := AddSection(e.tree, catID)
	if err := e.apply(next, err); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateSectionName renames a section.
func (e *Editor) UpdateSectionName(catID, secID int, name string) error {
	return e.apply(UpdateSectionName(e.tree, catID, secID, name))
}

// UpdateSection applies a field patch to a section.
func (e *Editor) UpdateSection(catID, secID int, patch SectionPatch) error {
	return e.apply(UpdateSection(e.tree, catID, secID, patch, e.now()))
}

// DeleteSection removes a section and its items once confirmed.
func (e *Editor) DeleteSection(catID, secID int) error {
	ci, si, err := locateSection(e.tree, catID, secID)
	if err != nil {
		return err
	}
	title := e.tree[ci].Sections[si].Title()
	if !e.confirmed(fmt.Sprintf("Delete section %q and all of its items?", title)) {
		return ErrNotConfirmed
	}
	if err := e.apply(DeleteSection(e.tree, catID, secID)); err != nil {
		return err
	}
	delete(e.expanded, sectionKey{catID, secID})
	return nil
}

// MoveSectionUp moves a section one position earlier.
func (e *Editor) MoveSectionUp(catID, secID int) error {
	return e.apply(MoveSectionUp(e.tree, catID, secID))
}

// MoveSectionDown moves a section one position later.
func (e *Editor) MoveSectionDown(catID, secID int) error {
	return e.apply(MoveSectionDown(e.tree, catID, secID))
}

// AddItem appends a document item to a section and returns its id.
func (e *Editor) AddItem(catID, secID int) (int, error) {
	next, id, err := AddItem(e.tree, catID, secID)
	if err := e.apply(next, err); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateItem applies a field patch to an item.
func (e *Editor) UpdateItem(catID, secID, id int, patch ItemPatch) error {
	return e.apply(UpdateItem(e.tree, catID, secID, id, patch))
}

// DeleteItem removes an item once confirmed.
func (e *Editor) DeleteItem(catID, secID, id int) error {
	ci, si, ii, err := locateItem(e.tree, catID, secID, id)
	if err != nil {
		return err
	}
	name := e.tree[ci].Sections[si].Items[ii].Name
	if !e.confirmed(fmt.Sprintf("Delete %q?", name)) {
		return ErrNotConfirmed
	}
	return e.apply(DeleteItem(e.tree, catID, secID, id))
}

// MoveItemUp moves an item one position earlier.
func (e *Editor) MoveItemUp(catID, secID, id int) error {
	return e.apply(MoveItemUp(e.tree, catID, secID, id))
}

// MoveItemDown moves an item one position later.
func (e *Editor) MoveItemDown(catID, secID, id int) error {
	return e.apply(MoveItemDown(e.tree, catID, secID, id))
}

// ToggleSectionExpanded opens or closes a section of the selected category
// in the editor. This state is never persisted and is independent of the
// public page.
func (e *Editor) ToggleSectionExpanded(secID int) {
	k := sectionKey{e.selected, secID}
	if e.expanded[k] {
		delete(e.expanded, k)
		return
	}
	e.expanded[k] = true
}

// IsSectionExpanded reports whether a section of the selected category is open.
func (e *Editor) IsSectionExpanded(secID int) bool {
	return e.expanded[sectionKey{e.selected, secID}]
}
