// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"refexcms/internal/cache"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
	"refexcms/internal/render"
)

// msgBackendUnavailable is shown when the tree cannot be loaded and no
// earlier copy is held in memory.
const msgBackendUnavailable = "Backend not available"

// TreeLoader loads the Related Links tree.
type TreeLoader interface {
	Load() ([]models.Category, error)
}

// Public serves the server-rendered investor Related Links page. It checks
// the Valkey page cache before rendering and stores rendered results on miss.
// When loading fails it renders the last tree it loaded successfully.
type Public struct {
	tree     TreeLoader
	renderer *render.Renderer
	pages    PageCache
	gen      Generations
	baseURL  string

	mu       sync.RWMutex
	lastGood []models.Category
}

// NewPublic creates the public page handler. baseURL is the deployment
// origin used to resolve relative file URLs.
func NewPublic(tree TreeLoader, renderer *render.Renderer, pages PageCache, gen Generations, baseURL string) *Public {
	return &Public{tree: tree, renderer: renderer, pages: pages, gen: gen, baseURL: baseURL}
}

// RelatedLinks renders the page for the view state encoded in the query.
func (p *Public) RelatedLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	gen, cacheable := p.gen.Current(ctx)
	key := cache.RelatedLinksKey(query.Encode(), gen)

	if cacheable {
		if cached, ok := p.pages.Get(ctx, key); ok {
			writeHTML(w, http.StatusOK, cached)
			return
		}
	}

	tree, fresh := p.load()
	state := render.ViewStateFromQuery(tree, query)
	page := linktree.Project(tree, state, p.baseURL)
	status := http.StatusOK
	if !fresh && tree == nil {
		page.Message = msgBackendUnavailable
		status = http.StatusServiceUnavailable
	}

	html, err := p.renderer.RelatedLinks(page, state)
	if err != nil {
		slog.Error("render related links failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Only cache what came from the store.
	if fresh && cacheable {
		p.pages.Fill(ctx, key, html)
	}
	writeHTML(w, status, html)
}

// load returns the stored tree and true, or the last good tree and false
// when the store fails. The fallback is nil if nothing was ever loaded.
func (p *Public) load() ([]models.Category, bool) {
	tree, err := p.tree.Load()
	if err != nil {
		slog.Warn("load related links failed, serving last good copy", "error", err)
		p.mu.RLock()
		defer p.mu.RUnlock()
		return linktree.Clone(p.lastGood), false
	}

	p.mu.Lock()
	p.lastGood = linktree.Clone(tree)
	p.mu.Unlock()
	return tree, true
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
