// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared by the stores, the
// related-links tree operations, and the HTTP handlers.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LabelType selects how a section header is computed.
type LabelType string

const (
	LabelName          LabelType = "name"
	LabelFinancialYear LabelType = "financialYear"
)

// Financial year bounds accepted by the editor.
const (
	MinFinancialYear = 2010
	MaxFinancialYear = 2030
)

// Category is a top-level grouping on the investor Related Links page.
// Sections are owned exclusively by the category.
type Category struct {
	ID          int       `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Order       int       `json:"order" yaml:"order"`
	Collapsible bool      `json:"collapsible" yaml:"collapsible"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Section groups items inside a category. Its ID is unique only within
// the owning category.
type Section struct {
	ID            int       `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	LabelType     LabelType `json:"labelType" yaml:"labelType"`
	FinancialYear string    `json:"financialYear" yaml:"financialYear"`
	Order         int       `json:"order" yaml:"order"`
	Items         []Item    `json:"items" yaml:"items"`
}

// Item is a leaf entry: either a document reference or a block of static
// HTML authored in the CMS. Its ID is unique only within the owning section.
type Item struct {
	ID            int    `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	PublishDate   string `json:"publishDate" yaml:"publishDate"`
	Order         int    `json:"order" yaml:"order"`
	IsStatic      bool   `json:"isStatic" yaml:"isStatic"`
	PDFURL        string `json:"pdfUrl" yaml:"pdfUrl"`
	ImageURL      string `json:"imageUrl" yaml:"imageUrl"`
	StaticContent string `json:"staticContent" yaml:"staticContent"`
}

// IsFinancialYear reports whether the section is labeled by financial year.
func (s *Section) IsFinancialYear() bool {
	return s.LabelType == LabelFinancialYear
}

// Title returns the display heading for the section.
func (s *Section) Title() string {
	if s.IsFinancialYear() && s.FinancialYear != "" {
		return "FY " + s.FinancialYear
	}
	if s.Name != "" {
		return s.Name
	}
	return "Section"
}

// IsStaticContent returns true if the item renders its HTML payload.
func (i *Item) IsStaticContent() bool {
	return i.IsStatic && i.StaticContent != ""
}

// HasDocument returns true if the item should offer view/download links.
func (i *Item) HasDocument() bool {
	return !i.IsStatic && i.PDFURL != ""
}

// DefaultFinancialYear returns the "{year}-{year+1}" label for the given time.
func DefaultFinancialYear(now time.Time) string {
	y := now.Year()
	return fmt.Sprintf("%d-%d", y, y+1)
}

// ParseFinancialYear splits a "<start>-<end>" label into its years. Both
// years must fall in [MinFinancialYear, MaxFinancialYear]. The end year is
// not required to follow the start year.
func ParseFinancialYear(s string) (start, end int, err error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("financial year %q: expected <start>-<end>", s)
	}
	if start, err = parseYear(left); err != nil {
		return 0, 0, fmt.Errorf("financial year %q: %w", s, err)
	}
	if end, err = parseYear(right); err != nil {
		return 0, 0, fmt.Errorf("financial year %q: %w", s, err)
	}
	return start, end, nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if y < MinFinancialYear || y > MaxFinancialYear {
		return 0, fmt.Errorf("year %d out of range %d-%d", y, MinFinancialYear, MaxFinancialYear)
	}
	return y, nil
}
