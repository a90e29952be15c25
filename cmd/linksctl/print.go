package main

import (
	"fmt"
	"io"
	"strings"

	"refexcms/internal/linktree"
)

// printPage writes a plain-text rendition of the public page.
func printPage(w io.Writer, p linktree.Page) {
	if len(p.Categories) == 0 {
		fmt.Fprintln(w, p.Message)
		return
	}

	tabs := make([]string, len(p.Categories))
	for i, t := range p.Categories {
		tabs[i] = fmt.Sprintf("%d:%s", t.ID, t.Name)
		if t.Active {
			tabs[i] = "[" + tabs[i] + "]"
		}
	}
	fmt.Fprintln(w, strings.Join(tabs, "  "))
	if len(p.FilterOptions) > 1 {
		fmt.Fprintf(w, "filter: %s (%s)\n", p.Filter, strings.Join(p.FilterOptions, ", "))
	}
	fmt.Fprintln(w)

	if p.State != linktree.StateReady {
		fmt.Fprintln(w, p.Message)
		return
	}
	if p.ShowCategoryHeading {
		fmt.Fprintf(w, "# %s\n", p.CategoryName)
	}
	for _, s := range p.Sections {
		if s.ShowHeading {
			marker := ""
			if p.Collapsible {
				marker = "+ "
				if s.Expanded {
					marker = "- "
				}
			}
			fmt.Fprintf(w, "%s%s (section %d)\n", marker, s.Title, s.ID)
		}
		if !s.Expanded {
			continue
		}
		for _, it := range s.Items {
			printItem(w, it)
		}
	}
}

func printItem(w io.Writer, it linktree.ItemView) {
	if it.Static {
		fmt.Fprintf(w, "    [html] %s\n", oneLine(it.HTML, 60))
		return
	}
	line := "    " + it.Name
	if it.PublishDate != "" {
		line += " (" + it.PublishDate + ")"
	}
	if it.ViewURL != "" {
		line += "  " + it.ViewURL
	} else {
		line += "  (no file)"
	}
	fmt.Fprintln(w, line)
}

// oneLine collapses whitespace and truncates s to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
