package render

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"refexcms/internal/linktree"
	"refexcms/internal/models"
)

// Query parameters of the public page.
const (
	QueryCategory = "category"
	QueryFilter   = "fy"
	QueryOpen     = "open" // comma-separated open section ids
)

// ViewStateFromQuery rebuilds the visitor's view state from the page URL.
// A missing category selects the first one; a missing "open" parameter
// gives the default accordion state for the category and filter.
func ViewStateFromQuery(tree []models.Category, q url.Values) linktree.ViewState {
	s := linktree.NewViewState(tree)
	if id, err := strconv.Atoi(q.Get(QueryCategory)); err == nil && id != s.CategoryID {
		s.SelectCategory(tree, id)
	}
	if fy := q.Get(QueryFilter); fy != "" && fy != linktree.FilterAll {
		s.SetFilter(tree, fy)
	}
	if open, ok := q[QueryOpen]; ok {
		s.Expanded = make(map[int]bool)
		for _, v := range open {
			for _, part := range strings.Split(v, ",") {
				if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
					s.Expanded[id] = true
				}
			}
		}
	}
	return s
}

// EncodeViewState returns the query that reproduces s. The open set is
// always written, so an empty set stays distinguishable from the default.
func EncodeViewState(s linktree.ViewState) url.Values {
	q := url.Values{}
	if s.CategoryID != 0 {
		q.Set(QueryCategory, strconv.Itoa(s.CategoryID))
	}
	if s.Filter != "" && s.Filter != linktree.FilterAll {
		q.Set(QueryFilter, s.Filter)
	}
	ids := make([]int, 0, len(s.Expanded))
	for id, open := range s.Expanded {
		if open {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	q.Set(QueryOpen, strings.Join(parts, ","))
	return q
}

// CategoryURL links to a category with the default filter and accordion state.
func CategoryURL(id int) string {
	return "?" + QueryCategory + "=" + strconv.Itoa(id)
}

// ToggleURL links to the same view with one section opened or closed.
func ToggleURL(s linktree.ViewState, sectionID int) string {
	next := linktree.ViewState{CategoryID: s.CategoryID, Filter: s.Filter, Expanded: make(map[int]bool, len(s.Expanded))}
	for id, open := range s.Expanded {
		if open {
			next.Expanded[id] = true
		}
	}
	next.ToggleSection(sectionID)
	return "?" + EncodeViewState(next).Encode()
}
