package database

import (
	"testing"

	"refexcms/internal/models"
)

func TestSampleTree(t *testing.T) {
	tree, err := SampleTree()
	if err != nil {
		t.Fatalf("SampleTree: %v", err)
	}
	if len(tree) < 2 {
		t.Fatalf("expected at least 2 categories, got %d", len(tree))
	}

	first := tree[0]
	if first.Name != "Shareholding Pattern" || first.Collapsible {
		t.Errorf("first category: %+v", first)
	}
	s := first.Sections[0]
	if s.LabelType != models.LabelFinancialYear || s.FinancialYear != "2025-2026" {
		t.Errorf("first section: %+v", s)
	}
	if s.Items[0].PDFURL == "" {
		t.Error("first item should reference a pdf")
	}

	var static int
	for _, c := range tree {
		for _, s := range c.Sections {
			for _, it := range s.Items {
				if it.IsStatic {
					static++
					if !it.IsStaticContent() {
						t.Errorf("static item %d has no content", it.ID)
					}
				}
			}
		}
	}
	if static == 0 {
		t.Error("sample tree should include a static content item")
	}
}

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only inserts when the tables are empty, so calling it twice
	// must succeed without touching existing data.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var userCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount < 1 {
		t.Errorf("expected at least 1 user, got %d", userCount)
	}

	var docCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM cms_documents WHERE key = $1", RelatedLinksKey).Scan(&docCount); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if docCount != 1 {
		t.Errorf("expected 1 related links document, got %d", docCount)
	}
}
