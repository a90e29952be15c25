package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"refexcms/internal/cache"
	"refexcms/internal/httputil"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
	"refexcms/internal/store"
)

// msgNotArray is the field message for a save body that is not a JSON array.
const msgNotArray = "must be an array of categories"

// RelatedLinks serves the Related Links document API.
type RelatedLinks struct {
	tree      TreeStore
	revisions RevisionReader
	docs      DocumentCache
	pages     PageCache
	gen       Generations
}

// NewRelatedLinks creates the Related Links API handler group.
func NewRelatedLinks(tree TreeStore, revisions RevisionReader, docs DocumentCache, pages PageCache, gen Generations) *RelatedLinks {
	return &RelatedLinks{tree: tree, revisions: revisions, docs: docs, pages: pages, gen: gen}
}

// Get returns the stored tree, or [] when nothing was saved yet. Reads go
// through the document cache under the current generation; the cache is
// bypassed when the generation cannot be read.
func (h *RelatedLinks) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gen, cached := h.gen.Current(ctx)
	key := cache.VersionedKey(store.RelatedLinksKey, gen)
	if cached {
		if body, ok := h.docs.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	tree, err := h.tree.Load()
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	body, err := json.Marshal(tree)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	// A save committed after gen was read bumps past it, so a stale body
	// filled here is never served.
	if cached {
		h.docs.Fill(ctx, key, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Save replaces the whole tree with the request body and echoes what was
// stored. The last writer wins.
func (h *RelatedLinks) Save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTreeBodySize)

	var raw json.RawMessage
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httputil.RespondValidation(w, "invalid JSON body", map[string]string{"body": msgNotArray})
		return
	}

	tree, ok := decodeTreeBody(raw)
	if !ok {
		httputil.RespondValidation(w, "invalid related links tree", map[string]string{"body": msgNotArray})
		return
	}

	h.save(w, r, tree)
}

// Revisions lists saved versions of the tree, newest first.
func (h *RelatedLinks) Revisions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.RespondValidation(w, "invalid query", map[string]string{"limit": err.Error()})
		return
	}

	revs, err := h.revisions.ListByKey(store.RelatedLinksKey, limit)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	if revs == nil {
		revs = []models.DocumentRevision{}
	}
	httputil.RespondJSON(w, http.StatusOK, revs)
}

// Revision returns one saved version including its tree.
func (h *RelatedLinks) Revision(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.findRevision(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, rev)
}

// Restore saves a previous version as the current tree. The restore is
// itself recorded as a new revision.
func (h *RelatedLinks) Restore(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.findRevision(w, r)
	if !ok {
		return
	}
	tree, ok := decodeTreeBody(rev.Body)
	if !ok {
		slog.Error("stored revision is not a tree", "revision_id", rev.ID)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.save(w, r, tree)
}

// Findings returns advisory problems in the stored tree. They never block
// a save.
func (h *RelatedLinks) Findings(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree.Load()
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	findings := linktree.Advise(tree)
	if findings == nil {
		findings = []linktree.Finding{}
	}
	httputil.RespondJSON(w, http.StatusOK, findings)
}

func (h *RelatedLinks) save(w http.ResponseWriter, r *http.Request, tree []models.Category) {
	saved, err := h.tree.Save(tree, actor(r))
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	// The tree is committed; a client hanging up must not skip the bump.
	ctx := context.WithoutCancel(r.Context())
	if _, err := h.gen.Bump(ctx); err != nil {
		slog.Error("bump related links cache generation failed", "error", err)
	}
	h.pages.InvalidateAll(ctx)

	slog.Info("related links saved",
		"by", actor(r),
		"categories", len(saved),
	)
	httputil.RespondJSON(w, http.StatusOK, saved)
}

func (h *RelatedLinks) findRevision(w http.ResponseWriter, r *http.Request) (*models.DocumentRevision, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httputil.RespondValidation(w, "invalid revision id", map[string]string{"id": "must be a positive integer"})
		return nil, false
	}

	rev, err := h.revisions.FindByID(store.RelatedLinksKey, id)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return nil, false
	}
	if rev == nil {
		httputil.RespondError(w, http.StatusNotFound, "revision not found")
		return nil, false
	}
	return rev, true
}

// decodeTreeBody accepts only a JSON array of categories.
func decodeTreeBody(raw []byte) ([]models.Category, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	tree, err := store.DecodeTree(raw)
	if err != nil {
		return nil, false
	}
	return tree, true
}
