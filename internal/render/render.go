// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public
// Related Links page. Templates are embedded and each page is paired with
// the base layout at startup.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"refexcms/internal/linktree"
)

//go:embed templates/public/*.html
var publicFS embed.FS

// PageTitle is the <title> of the Related Links page.
const PageTitle = "Related Links | Investors"

// Options configures a Renderer.
type Options struct {
	// SanitizeStatic passes static item HTML through a bluemonday UGC
	// policy. When false the HTML is emitted exactly as authored.
	SanitizeStatic bool
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
	policy    *bluemonday.Policy // nil when static HTML is trusted
}

// New parses all public templates from the embedded filesystem.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}
	if opts.SanitizeStatic {
		r.policy = bluemonday.UGCPolicy()
	}

	entries, err := publicFS.ReadDir("templates/public")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").ParseFS(publicFS,
			"templates/public/base.html", "templates/public/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return r, nil
}

type link struct {
	Label  string
	URL    string
	Active bool
}

type filterOption struct {
	Value  string
	Label  string
	Active bool
}

type itemView struct {
	Static      bool
	HTML        template.HTML
	Name        string
	PublishDate string
	PreviewURL  string
	ViewURL     string
	DownloadURL string
}

type sectionView struct {
	Title       string
	ShowHeading bool
	Expanded    bool
	ToggleURL   string
	Items       []itemView
}

type relatedLinksView struct {
	Title               string
	Message             string
	Categories          []link
	ShowFilter          bool
	Filters             []filterOption
	CategoryID          int
	CategoryName        string
	ShowCategoryHeading bool
	Collapsible         bool
	Sections            []sectionView
}

// RelatedLinks renders the projected page. state is the view state the
// page was projected from; it is used to build the accordion toggle links.
func (rn *Renderer) RelatedLinks(page linktree.Page, state linktree.ViewState) ([]byte, error) {
	v := relatedLinksView{
		Title:               PageTitle,
		Message:             page.Message,
		CategoryID:          page.CategoryID,
		CategoryName:        page.CategoryName,
		ShowCategoryHeading: page.ShowCategoryHeading,
		Collapsible:         page.Collapsible,
	}
	for _, c := range page.Categories {
		v.Categories = append(v.Categories, link{Label: c.Name, URL: CategoryURL(c.ID), Active: c.Active})
	}
	if page.State == linktree.StateReady || page.State == linktree.StateNoMatch {
		v.ShowFilter = len(page.FilterOptions) > 1
	}
	for _, f := range page.FilterOptions {
		v.Filters = append(v.Filters, filterOption{Value: f, Label: filterLabel(f), Active: f == page.Filter})
	}

	// Toggle links carry the resolved category so they stay valid when the
	// request fell back to the first category.
	state.CategoryID = page.CategoryID
	state.Filter = page.Filter
	for _, s := range page.Sections {
		sv := sectionView{
			Title:       s.Title,
			ShowHeading: s.ShowHeading,
			Expanded:    s.Expanded,
			ToggleURL:   ToggleURL(state, s.ID),
		}
		for _, it := range s.Items {
			sv.Items = append(sv.Items, rn.item(it))
		}
		v.Sections = append(v.Sections, sv)
	}

	return rn.execute("related_links", v)
}

func (rn *Renderer) item(it linktree.ItemView) itemView {
	v := itemView{
		Static:      it.Static,
		Name:        it.Name,
		PublishDate: it.PublishDate,
		PreviewURL:  it.PreviewURL,
		ViewURL:     it.ViewURL,
		DownloadURL: it.DownloadURL,
	}
	if it.Static {
		html := it.HTML
		if rn.policy != nil {
			html = rn.policy.Sanitize(html)
		}
		// Static content is authored by trusted CMS editors.
		v.HTML = template.HTML(html)
	}
	return v
}

func filterLabel(f string) string {
	if f == linktree.FilterAll {
		return "All Years"
	}
	return "FY " + f
}

// execute renders into a buffer so a template error never leaves a
// half-written response behind.
func (rn *Renderer) execute(name string, data any) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
