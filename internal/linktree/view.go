// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package linktree

import (
	"slices"
	"strings"

	"refexcms/internal/models"
)

// FilterAll is the filter value that shows every section of a category.
const FilterAll = "all"

// State describes what the public page should show overall.
type State int

const (
	StateReady        State = iota
	StateNoCategories       // nothing configured
	StateNoSections         // selected category has no sections
	StateNoMatch            // the year filter matches no section
)

// Empty-state messages shown to visitors.
const (
	MessageNoCategories = "No related links are available yet."
	MessageNoSections   = "No documents have been published in this category yet."
	MessageNoMatch      = "No sections match the selected filter"
)

// ViewState is the visitor's position on the page: which category is
// selected, which year filter is active, and which accordion sections are
// open. The projection is a pure function of the tree and this value.
type ViewState struct {
	CategoryID int // 0 selects the first category
	Filter     string
	Expanded   map[int]bool
}

// NewViewState selects the first category with the "all" filter and the
// default accordion state.
func NewViewState(tree []models.Category) ViewState {
	s := ViewState{Filter: FilterAll}
	if len(tree) > 0 {
		// Array position, not Order, decides the default.
		s.CategoryID = tree[0].ID
	}
	s.resetExpanded(tree)
	return s
}

// SelectCategory switches category. The filter returns to "all" and the
// accordion state is reset.
func (s *ViewState) SelectCategory(tree []models.Category, id int) {
	s.CategoryID = id
	s.Filter = FilterAll
	s.resetExpanded(tree)
}

// SetFilter switches the year filter and resets the accordion state.
func (s *ViewState) SetFilter(tree []models.Category, filter string) {
	if filter == "" {
		filter = FilterAll
	}
	s.Filter = filter
	s.resetExpanded(tree)
}

// ToggleSection opens or closes one accordion section.
func (s *ViewState) ToggleSection(id int) {
	if s.Expanded == nil {
		s.Expanded = make(map[int]bool)
	}
	if s.Expanded[id] {
		delete(s.Expanded, id)
		return
	}
	s.Expanded[id] = true
}

// resetExpanded opens only the first filtered section of a collapsible
// category. Stacked categories ignore the set.
func (s *ViewState) resetExpanded(tree []models.Category) {
	s.Expanded = make(map[int]bool)
	c := selectedCategory(tree, s.CategoryID)
	if c == nil || !c.Collapsible {
		return
	}
	if filtered := FilterSections(c, s.Filter); len(filtered) > 0 {
		s.Expanded[filtered[0].ID] = true
	}
}

// selectedCategory resolves the category id, falling back to the first
// category when id is zero or unknown.
func selectedCategory(tree []models.Category, id int) *models.Category {
	if c := FindCategory(tree, id); c != nil {
		return c
	}
	if len(tree) > 0 {
		return &tree[0]
	}
	return nil
}

// FilterOptions returns "all" followed by the distinct financial years of
// the category's year-labeled sections, most recent first.
func FilterOptions(c *models.Category) []string {
	var years []string
	for _, s := range c.Sections {
		if s.IsFinancialYear() && s.FinancialYear != "" && !slices.Contains(years, s.FinancialYear) {
			years = append(years, s.FinancialYear)
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return append([]string{FilterAll}, years...)
}

// FilterSections returns the sections visible under filter. A specific year
// keeps only year-labeled sections with exactly that year.
func FilterSections(c *models.Category, filter string) []models.Section {
	if filter == "" || filter == FilterAll {
		return c.Sections
	}
	var out []models.Section
	for _, s := range c.Sections {
		if s.IsFinancialYear() && s.FinancialYear == filter {
			out = append(out, s)
		}
	}
	return out
}

// allFinancialYear reports whether every section is year-labeled.
func allFinancialYear(sections []models.Section) bool {
	if len(sections) == 0 {
		return false
	}
	for _, s := range sections {
		if !s.IsFinancialYear() {
			return false
		}
	}
	return true
}

// CategoryTab is one entry of the category selector.
type CategoryTab struct {
	ID     int
	Name   string
	Active bool
}

// ItemView is an item ready for display. Exactly one of HTML or the
// document fields is populated, depending on the item variant.
type ItemView struct {
	ID          int
	Name        string
	PublishDate string
	Static      bool
	HTML        string // static items only, emitted verbatim
	PreviewURL  string // document items only; empty for data: URIs
	ViewURL     string // empty when the item has no PDF
	DownloadURL string
}

// SectionView is a filtered section ready for display.
type SectionView struct {
	ID          int
	Title       string
	ShowHeading bool
	Expanded    bool
	Items       []ItemView
}

// Page is the projected public view of the tree.
type Page struct {
	State               State
	Message             string
	Categories          []CategoryTab
	CategoryID          int
	CategoryName        string
	Collapsible         bool
	FilterOptions       []string
	Filter              string
	ShowCategoryHeading bool
	Sections            []SectionView
}

// Project computes what a visitor sees for the given state. baseURL is the
// deployment origin used to resolve relative file URLs.
func Project(tree []models.Category, state ViewState, baseURL string) Page {
	if len(tree) == 0 {
		return Page{State: StateNoCategories, Message: MessageNoCategories}
	}

	c := selectedCategory(tree, state.CategoryID)
	filter := state.Filter
	if filter == "" {
		filter = FilterAll
	}

	p := Page{
		CategoryID:    c.ID,
		CategoryName:  c.Name,
		Collapsible:   c.Collapsible,
		FilterOptions: FilterOptions(c),
		Filter:        filter,
	}
	for _, tc := range tree {
		p.Categories = append(p.Categories, CategoryTab{ID: tc.ID, Name: tc.Name, Active: tc.ID == c.ID})
	}

	if len(c.Sections) == 0 {
		p.State = StateNoSections
		p.Message = MessageNoSections
		return p
	}

	filtered := FilterSections(c, filter)
	if len(filtered) == 0 {
		p.State = StateNoMatch
		p.Message = MessageNoMatch
		return p
	}

	p.ShowCategoryHeading = allFinancialYear(filtered)
	for _, s := range filtered {
		sv := SectionView{
			ID:    s.ID,
			Title: s.Title(),
			// Accordion headers double as toggles, so they stay visible.
			ShowHeading: c.Collapsible || !p.ShowCategoryHeading,
			Expanded:    !c.Collapsible || state.Expanded[s.ID],
		}
		for _, it := range s.Items {
			sv.Items = append(sv.Items, projectItem(it, baseURL))
		}
		p.Sections = append(p.Sections, sv)
	}
	return p
}

func projectItem(it models.Item, baseURL string) ItemView {
	v := ItemView{ID: it.ID, Name: it.Name, PublishDate: it.PublishDate}
	if it.IsStatic {
		v.Static = true
		v.HTML = it.StaticContent
		return v
	}
	if it.ImageURL != "" && !strings.HasPrefix(it.ImageURL, "data:") {
		v.PreviewURL = ResolveURL(baseURL, it.ImageURL)
	}
	if it.PDFURL != "" {
		v.ViewURL = ResolveURL(baseURL, it.PDFURL)
		v.DownloadURL = v.ViewURL
	}
	return v
}

// ResolveURL turns a stored file reference into an absolute URL. Absolute
// http(s) URLs and data: URIs are returned unchanged; root-relative paths
// are joined to baseURL; bare names are placed under the uploads mount.
func ResolveURL(baseURL, raw string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "http"), strings.HasPrefix(raw, "data:"):
		return raw
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(raw, "/") {
		return base + raw
	}
	return base + "/uploads/" + raw
}
