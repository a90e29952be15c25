// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		want    string
	}{
		{name: "name label", section: Section{Name: "Misc", LabelType: LabelName}, want: "Misc"},
		{name: "financial year label", section: Section{Name: "ignored", LabelType: LabelFinancialYear, FinancialYear: "2025-2026"}, want: "FY 2025-2026"},
		{name: "financial year label without year falls back to name", section: Section{Name: "Archive", LabelType: LabelFinancialYear}, want: "Archive"},
		{name: "empty name", section: Section{LabelType: LabelName}, want: "Section"},
		{name: "empty everything", section: Section{}, want: "Section"},
		{name: "year set but name label", section: Section{Name: "Notices", LabelType: LabelName, FinancialYear: "2024-2025"}, want: "Notices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.section.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItemVariants(t *testing.T) {
	tests := []struct {
		name       string
		item       Item
		wantStatic bool
		wantDoc    bool
	}{
		{name: "document with pdf", item: Item{PDFURL: "/uploads/a.pdf"}, wantDoc: true},
		{name: "document without pdf", item: Item{}, wantDoc: false},
		{name: "static with content", item: Item{IsStatic: true, StaticContent: "<p>hi</p>"}, wantStatic: true},
		{name: "static ignores pdf", item: Item{IsStatic: true, StaticContent: "<p>hi</p>", PDFURL: "/x.pdf"}, wantStatic: true},
		{name: "static without content", item: Item{IsStatic: true}, wantStatic: false},
		{name: "document ignores static content", item: Item{StaticContent: "<b>x</b>", PDFURL: "/x.pdf"}, wantDoc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsStaticContent(); got != tt.wantStatic {
				t.Errorf("IsStaticContent() = %v, want %v", got, tt.wantStatic)
			}
			if got := tt.item.HasDocument(); got != tt.wantDoc {
				t.Errorf("HasDocument() = %v, want %v", got, tt.wantDoc)
			}
		})
	}
}

func TestDefaultFinancialYear(t *testing.T) {
	got := DefaultFinancialYear(time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC))
	if got != "2026-2027" {
		t.Errorf("DefaultFinancialYear = %q, want %q", got, "2026-2027")
	}
}

func TestParseFinancialYear(t *testing.T) {
	tests := []struct {
		input     string
		wantStart int
		wantEnd   int
		wantErr   string
	}{
		{input: "2025-2026", wantStart: 2025, wantEnd: 2026},
		{input: "2010-2030", wantStart: 2010, wantEnd: 2030},
		{input: "2020-2018", wantStart: 2020, wantEnd: 2018},
		{input: " 2024-2025 ", wantStart: 2024, wantEnd: 2025},
		{input: "2025", wantErr: "expected"},
		{input: "2025-26", wantErr: "out of range"},
		{input: "2009-2010", wantErr: "out of range"},
		{input: "2030-2031", wantErr: "out of range"},
		{input: "abcd-2025", wantErr: "invalid year"},
		{input: "", wantErr: "expected"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			start, end, err := ParseFinancialYear(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("got %d-%d, want %d-%d", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

// TestCategoryJSONFieldNames pins the wire names the frontend relies on.
func TestCategoryJSONFieldNames(t *testing.T) {
	c := Category{
		ID: 1, Name: "Shareholding Pattern", Order: 1,
		Sections: []Section{{
			ID: 1, Name: "2025-2026", LabelType: LabelFinancialYear, FinancialYear: "2025-26",
			Items: []Item{{ID: 1, Name: "June - 2025", PDFURL: "/reports/x.pdf"}},
		}},
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	for _, key := range []string{
		`"id":1`, `"collapsible":false`, `"labelType":"financialYear"`, `"financialYear":"2025-26"`,
		`"pdfUrl":"/reports/x.pdf"`, `"imageUrl":""`, `"isStatic":false`, `"staticContent":""`, `"publishDate":""`,
	} {
		if !strings.Contains(got, key) {
			t.Errorf("expected %s in %s", key, got)
		}
	}
}
