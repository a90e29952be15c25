package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"refexcms/internal/cache"
	"refexcms/internal/httputil"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
	"refexcms/internal/store"
)

const editorEmail = "ir@refex.co.in"

func sampleTree() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Annual Reports", Order: 1, Sections: []models.Section{
			{ID: 1, LabelType: models.LabelFinancialYear, FinancialYear: "2024-2025", Order: 1, Items: []models.Item{
				{ID: 1, Name: "Annual Report 2024-25", PublishDate: "2025-08-01", Order: 1, PDFURL: "reports/ar-2025.pdf"},
			}},
		}},
		{ID: 2, Name: "Policies", Order: 2, Collapsible: true, Sections: []models.Section{
			{ID: 1, Name: "Governance", LabelType: models.LabelName, Order: 1, Items: []models.Item{}},
		}},
	}
}

func newRelatedLinks(tree *fakeTree, revs *fakeRevisions) (*RelatedLinks, *memCache, *memCache) {
	docs, pages := newMemCache(), newMemCache()
	if revs == nil {
		revs = &fakeRevisions{}
	}
	return NewRelatedLinks(tree, revs, docs, pages, &fakeGen{}), docs, pages
}

// genOf returns the generation counter behind h.
func genOf(h *RelatedLinks) *fakeGen {
	return h.gen.(*fakeGen)
}

// docKey is the document cache key for generation gen.
func docKey(gen int64) string {
	return cache.VersionedKey(store.RelatedLinksKey, gen)
}

func decodeTree(t *testing.T, rr *httptest.ResponseRecorder) []models.Category {
	t.Helper()
	var tree []models.Category
	if err := json.NewDecoder(rr.Body).Decode(&tree); err != nil {
		t.Fatalf("decode tree: %v (body %q)", err, rr.Body.String())
	}
	return tree
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestRelatedLinksGetEmpty(t *testing.T) {
	h, docs, _ := newRelatedLinks(&fakeTree{}, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/cms/investors/related-links", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body: got %q, want []", got)
	}
	if _, ok := docs.Get(t.Context(), docKey(0)); !ok {
		t.Error("document cache should be warmed after a miss")
	}
}

func TestRelatedLinksGetUsesCache(t *testing.T) {
	tree := &fakeTree{tree: sampleTree()}
	h, _, _ := newRelatedLinks(tree, nil)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/cms/investors/related-links", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rr.Code)
		}
		if got := decodeTree(t, rr); !reflect.DeepEqual(got, sampleTree()) {
			t.Fatalf("request %d: tree mismatch: %+v", i, got)
		}
	}
	if tree.loads != 1 {
		t.Errorf("store loads: got %d, want 1", tree.loads)
	}
}

func TestRelatedLinksGetStoreFailure(t *testing.T) {
	h, _, _ := newRelatedLinks(&fakeTree{loadErr: errStoreDown}, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/cms/investors/related-links", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if body := decodeError(t, rr); strings.Contains(body.Error, "refused") {
		t.Errorf("internal error leaked: %q", body.Error)
	}
}

func TestRelatedLinksSaveRejectsNonArray(t *testing.T) {
	bodies := map[string]string{
		"object":           `{"id":1}`,
		"string":           `"categories"`,
		"null":             `null`,
		"number array":     `[1,2,3]`,
		"malformed":        `[{"id":`,
		"empty":            ``,
		"trailing garbage": `[] []`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			tree := &fakeTree{tree: sampleTree()}
			h, _, _ := newRelatedLinks(tree, nil)

			req := withClaims(httptest.NewRequest(http.MethodPut, "/api/cms/investors/related-links", strings.NewReader(body)), editorEmail)
			rr := httptest.NewRecorder()
			h.Save(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			if got := decodeError(t, rr).Fields["body"]; got != msgNotArray {
				t.Errorf("fields.body: got %q, want %q", got, msgNotArray)
			}
			if len(tree.savedBy) != 0 {
				t.Error("store must not be written on a rejected body")
			}
		})
	}
}

func TestRelatedLinksSave(t *testing.T) {
	tree := &fakeTree{}
	h, docs, pages := newRelatedLinks(tree, nil)
	docs.Fill(t.Context(), docKey(0), []byte(`[]`))
	pages.Fill(t.Context(), cache.RelatedLinksKey("", 0), []byte("<html>"))

	payload, _ := json.Marshal(sampleTree())
	req := withClaims(httptest.NewRequest(http.MethodPut, "/api/cms/investors/related-links", strings.NewReader(string(payload))), editorEmail)
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if got := decodeTree(t, rr); !reflect.DeepEqual(got, sampleTree()) {
		t.Errorf("echoed tree mismatch: %+v", got)
	}
	if len(tree.savedBy) != 1 || tree.savedBy[0] != editorEmail {
		t.Errorf("savedBy: got %v", tree.savedBy)
	}
	if gen := genOf(h).current(); gen != 1 {
		t.Errorf("generation: got %d, want 1", gen)
	}
	if _, ok := docs.Get(t.Context(), docKey(1)); ok {
		t.Error("new generation should start empty")
	}
	if pages.len() != 0 {
		t.Error("page cache should be invalidated")
	}
}

func TestRelatedLinksSaveNormalizesMissingLists(t *testing.T) {
	tree := &fakeTree{}
	h, _, _ := newRelatedLinks(tree, nil)

	body := `[{"id":1,"name":"Disclosures","order":1,"collapsible":false}]`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/cms/investors/related-links", strings.NewReader(body)), editorEmail)
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"sections":[]`) {
		t.Errorf("sections should be an empty list: %s", rr.Body.String())
	}
}

func TestRelatedLinksSaveThenGet(t *testing.T) {
	h, _, _ := newRelatedLinks(&fakeTree{}, nil)

	edited, _ := linktree.AddCategory(sampleTree())
	payload, _ := json.Marshal(edited)
	save := httptest.NewRecorder()
	h.Save(save, withClaims(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(string(payload))), editorEmail))
	if save.Code != http.StatusOK {
		t.Fatalf("save status: %d", save.Code)
	}

	get := httptest.NewRecorder()
	h.Get(get, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := decodeTree(t, get); !reflect.DeepEqual(got, linktree.Normalize(edited)) {
		t.Errorf("reloaded tree differs from saved tree:\n got %+v\nwant %+v", got, edited)
	}
}

func TestRelatedLinksSaveStoreFailure(t *testing.T) {
	h, docs, _ := newRelatedLinks(&fakeTree{saveErr: errStoreDown}, nil)
	docs.Fill(t.Context(), docKey(0), []byte(`[]`))

	req := withClaims(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`[]`)), editorEmail)
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if docs.len() != 1 || genOf(h).current() != 0 {
		t.Error("failed save must not invalidate the cache")
	}
}

func TestRelatedLinksGetRacingSave(t *testing.T) {
	old := []models.Category{{ID: 1, Name: "OLD", Sections: []models.Section{}}}
	tree := &fakeTree{tree: old}
	h, _, _ := newRelatedLinks(tree, nil)

	// A read loads the old tree and stalls before filling the cache.
	started, release := tree.gateNextLoad()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-started

	save := httptest.NewRecorder()
	h.Save(save, withClaims(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`[{"id":9,"name":"NEW"}]`)), editorEmail))
	if save.Code != http.StatusOK {
		t.Fatalf("save status: %d", save.Code)
	}

	release()
	<-done

	get := httptest.NewRecorder()
	h.Get(get, httptest.NewRequest(http.MethodGet, "/", nil))
	got := decodeTree(t, get)
	if len(got) != 1 || got[0].ID != 9 || got[0].Name != "NEW" {
		t.Errorf("read after save served %+v, want the saved tree", got)
	}
}

func TestRelatedLinksGetWithoutGeneration(t *testing.T) {
	tree := &fakeTree{tree: sampleTree()}
	docs, pages := newMemCache(), newMemCache()
	h := NewRelatedLinks(tree, &fakeRevisions{}, docs, pages, &fakeGen{down: true})

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.Get(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rr.Code)
		}
	}
	if tree.loads != 2 || docs.fills != 0 {
		t.Errorf("cache should be bypassed: loads=%d fills=%d", tree.loads, docs.fills)
	}
}

func TestRelatedLinksSaveBumpFailure(t *testing.T) {
	tree := &fakeTree{}
	docs, pages := newMemCache(), newMemCache()
	h := NewRelatedLinks(tree, &fakeRevisions{}, docs, pages, &fakeGen{bumpErr: errStoreDown})

	rr := httptest.NewRecorder()
	h.Save(rr, withClaims(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`[]`)), editorEmail))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if len(tree.savedBy) != 1 {
		t.Error("the tree should still be saved")
	}
}

func revisionFixture() *fakeRevisions {
	older, _ := json.Marshal(sampleTree()[:1])
	newer, _ := json.Marshal(sampleTree())
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &fakeRevisions{revs: []models.DocumentRevision{
		{ID: 2, Key: store.RelatedLinksKey, Body: newer, CreatedBy: editorEmail, CreatedAt: now},
		{ID: 1, Key: store.RelatedLinksKey, Body: older, CreatedBy: editorEmail, CreatedAt: now.Add(-time.Hour)},
		{ID: 9, Key: "other", Body: []byte(`[]`), CreatedAt: now},
	}}
}

func TestRelatedLinksRevisions(t *testing.T) {
	h, _, _ := newRelatedLinks(&fakeTree{}, revisionFixture())

	tests := []struct {
		query   string
		want    int
		wantLen int
	}{
		{"", http.StatusOK, 2},
		{"?limit=1", http.StatusOK, 1},
		{"?limit=zero", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Revisions(rr, httptest.NewRequest(http.MethodGet, "/revisions"+tt.query, nil))
			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			var revs []models.DocumentRevision
			if err := json.NewDecoder(rr.Body).Decode(&revs); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(revs) != tt.wantLen {
				t.Errorf("revisions: got %d, want %d", len(revs), tt.wantLen)
			}
			for _, r := range revs {
				if len(r.Body) != 0 {
					t.Error("listing should omit bodies")
				}
			}
		})
	}
}

func TestRelatedLinksRevisionsEmpty(t *testing.T) {
	h, _, _ := newRelatedLinks(&fakeTree{}, &fakeRevisions{})

	rr := httptest.NewRecorder()
	h.Revisions(rr, httptest.NewRequest(http.MethodGet, "/revisions", nil))
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body: got %q, want []", got)
	}
}

func TestRelatedLinksRevision(t *testing.T) {
	h, _, _ := newRelatedLinks(&fakeTree{}, revisionFixture())

	tests := []struct {
		id   string
		want int
	}{
		{"1", http.StatusOK},
		{"9", http.StatusNotFound}, // belongs to another document
		{"404", http.StatusNotFound},
		{"abc", http.StatusBadRequest},
		{"0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/revisions/"+tt.id, nil), "id", tt.id)
			rr := httptest.NewRecorder()
			h.Revision(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRelatedLinksRestore(t *testing.T) {
	tree := &fakeTree{tree: sampleTree()}
	h, _, pages := newRelatedLinks(tree, revisionFixture())
	pages.Fill(t.Context(), cache.RelatedLinksKey("", 0), []byte("<html>"))

	req := withURLParam(withClaims(httptest.NewRequest(http.MethodPost, "/revisions/1/restore", nil), editorEmail), "id", "1")
	rr := httptest.NewRecorder()
	h.Restore(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	got := decodeTree(t, rr)
	if len(got) != 1 || got[0].Name != "Annual Reports" {
		t.Errorf("restored tree: got %+v", got)
	}
	if len(tree.tree) != 1 {
		t.Errorf("store holds %d categories, want 1", len(tree.tree))
	}
	if pages.len() != 0 || genOf(h).current() != 1 {
		t.Error("restore should invalidate rendered pages")
	}
}

func TestRelatedLinksFindings(t *testing.T) {
	broken := sampleTree()
	broken[0].Sections[0].FinancialYear = "2024"
	h, _, _ := newRelatedLinks(&fakeTree{tree: broken}, nil)

	rr := httptest.NewRecorder()
	h.Findings(rr, httptest.NewRequest(http.MethodGet, "/findings", nil))

	var findings []linktree.Finding
	if err := json.NewDecoder(rr.Body).Decode(&findings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(findings) != 1 || findings[0].Path != "category 1/section 1/financialYear" {
		t.Errorf("findings: got %+v", findings)
	}
}
