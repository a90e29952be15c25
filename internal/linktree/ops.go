// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package linktree

import (
	"time"

	"refexcms/internal/models"
)

// Defaults for newly created nodes.
const (
	NewCategoryName = "New Category"
	NewSectionName  = "New Section"
	NewItemName     = "New Document"
)

// Every operation below takes the current tree and returns a new one. The
// input is never modified. When an address does not resolve, the input is
// returned together with a *domain.NotFoundError.

// AddCategory appends an empty category and returns the tree and its id.
func AddCategory(tree []models.Category) ([]models.Category, int) {
	out := Clone(tree)
	id := nextID(out, categoryID)
	out = append(out, models.Category{
		ID:       id,
		Name:     NewCategoryName,
		Order:    len(out) + 1,
		Sections: []models.Section{},
	})
	return out, id
}

// UpdateCategoryName renames a category in place.
func UpdateCategoryName(tree []models.Category, id int, name string) ([]models.Category, error) {
	out := Clone(tree)
	c := FindCategory(out, id)
	if c == nil {
		return tree, categoryNotFound(id)
	}
	c.Name = name
	return out, nil
}

// UpdateCategoryCollapsible switches a category between accordion and
// stacked rendering.
func UpdateCategoryCollapsible(tree []models.Category, id int, collapsible bool) ([]models.Category, error) {
	out := Clone(tree)
	c := FindCategory(out, id)
	if c == nil {
		return tree, categoryNotFound(id)
	}
	c.Collapsible = collapsible
	return out, nil
}

// DeleteCategory removes a category together with all its sections and items.
func DeleteCategory(tree []models.Category, id int) ([]models.Category, error) {
	i := indexOf(tree, categoryID, id)
	if i < 0 {
		return tree, categoryNotFound(id)
	}
	return removeAt(Clone(tree), i), nil
}

// MoveCategoryUp swaps a category with its predecessor.
func MoveCategoryUp(tree []models.Category, id int) ([]models.Category, error) {
	out := Clone(tree)
	i := indexOf(out, categoryID, id)
	if i < 0 {
		return tree, categoryNotFound(id)
	}
	swapUp(out, i)
	return out, nil
}

// MoveCategoryDown swaps a category with its successor.
func MoveCategoryDown(tree []models.Category, id int) ([]models.Category, error) {
	out := Clone(tree)
	i := indexOf(out, categoryID, id)
	if i < 0 {
		return tree, categoryNotFound(id)
	}
	swapDown(out, i)
	return out, nil
}

// AddSection appends a name-labeled section to a category and returns its id.
func AddSection(tree []models.Category, catID int) ([]models.Category, int, error) {
	out := Clone(tree)
	c := FindCategory(out, catID)
	if c == nil {
		return tree, 0, categoryNotFound(catID)
	}
	id := nextID(c.Sections, sectionID)
	c.Sections = append(c.Sections, models.Section{
		ID:        id,
		Name:      NewSectionName,
		LabelType: models.LabelName,
		Order:     len(c.Sections) + 1,
		Items:     []models.Item{},
	})
	return out, id, nil
}

// SectionPatch lists the section fields to overwrite. Nil fields are kept.
type SectionPatch struct {
	Name          *string
	LabelType     *models.LabelType
	FinancialYear *string
	Order         *int
}

// UpdateSectionName renames a section.
func UpdateSectionName(tree []models.Category, catID, secID int, name string) ([]models.Category, error) {
	return UpdateSection(tree, catID, secID, SectionPatch{Name: &name}, time.Time{})
}

// UpdateSection applies a field patch to a section. A section switched to
// financial-year labeling without a year gets DefaultFinancialYear(now).
func UpdateSection(tree []models.Category, catID, secID int, patch SectionPatch, now time.Time) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, err := locateSection(out, catID, secID)
	if err != nil {
		return tree, err
	}
	s := &out[ci].Sections[si]
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.FinancialYear != nil {
		s.FinancialYear = *patch.FinancialYear
	}
	if patch.Order != nil {
		s.Order = *patch.Order
	}
	if patch.LabelType != nil {
		s.LabelType = *patch.LabelType
		if s.LabelType == models.LabelFinancialYear && s.FinancialYear == "" {
			if now.IsZero() {
				now = time.Now()
			}
			s.FinancialYear = models.DefaultFinancialYear(now)
		}
	}
	return out, nil
}

// DeleteSection removes a section together with its items.
func DeleteSection(tree []models.Category, catID, secID int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, err := locateSection(out, catID, secID)
	if err != nil {
		return tree, err
	}
	out[ci].Sections = removeAt(out[ci].Sections, si)
	return out, nil
}

// MoveSectionUp swaps a section with its predecessor within the category.
func MoveSectionUp(tree []models.Category, catID, secID int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, err := locateSection(out, catID, secID)
	if err != nil {
		return tree, err
	}
	swapUp(out[ci].Sections, si)
	return out, nil
}

// MoveSectionDown swaps a section with its successor within the category.
func MoveSectionDown(tree []models.Category, catID, secID int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, err := locateSection(out, catID, secID)
	if err != nil {
		return tree, err
	}
	swapDown(out[ci].Sections, si)
	return out, nil
}

// AddItem appends an empty document item and returns its id.
func AddItem(tree []models.Category, catID, secID int) ([]models.Category, int, error) {
	out := Clone(tree)
	ci, si, err := locateSection(out, catID, secID)
	if err != nil {
		return tree, 0, err
	}
	s := &out[ci].Sections[si]
	id := nextID(s.Items, itemID)
	s.Items = append(s.Items, models.Item{
		ID:    id,
		Name:  NewItemName,
		Order: len(s.Items) + 1,
	})
	return out, id, nil
}

// ItemPatch lists the item fields to overwrite. Nil fields are kept.
type ItemPatch struct {
	Name          *string
	PublishDate   *string
	Order         *int
	IsStatic      *bool
	PDFURL        *string
	ImageURL      *string
	StaticContent *string
}

// UpdateItem applies a field patch to an item. No cross-field checks are
// made; a document item without a PDF is allowed.
func UpdateItem(tree []models.Category, catID, secID, id int, patch ItemPatch) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, ii, err := locateItem(out, catID, secID, id)
	if err != nil {
		return tree, err
	}
	it := &out[ci].Sections[si].Items[ii]
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.PublishDate != nil {
		it.PublishDate = *patch.PublishDate
	}
	if patch.Order != nil {
		it.Order = *patch.Order
	}
	if patch.IsStatic != nil {
		it.IsStatic = *patch.IsStatic
	}
	if patch.PDFURL != nil {
		it.PDFURL = *patch.PDFURL
	}
	if patch.ImageURL != nil {
		it.ImageURL = *patch.ImageURL
	}
	if patch.StaticContent != nil {
		it.StaticContent = *patch.StaticContent
	}
	return out, nil
}

// DeleteItem removes an item from its section.
func DeleteItem(tree []models.Category, catID, secID, id int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, ii, err := locateItem(out, catID, secID, id)
	if err != nil {
		return tree, err
	}
	s := &out[ci].Sections[si]
	s.Items = removeAt(s.Items, ii)
	return out, nil
}

// MoveItemUp swaps an item with its predecessor within the section.
func MoveItemUp(tree []models.Category, catID, secID, id int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, ii, err := locateItem(out, catID, secID, id)
	if err != nil {
		return tree, err
	}
	swapUp(out[ci].Sections[si].Items, ii)
	return out, nil
}

// MoveItemDown swaps an item with its successor within the section.
func MoveItemDown(tree []models.Category, catID, secID, id int) ([]models.Category, error) {
	out := Clone(tree)
	ci, si, ii, err := locateItem(out, catID, secID, id)
	if err != nil {
		return tree, err
	}
	swapDown(out[ci].Sections[si].Items, ii)
	return out, nil
}
