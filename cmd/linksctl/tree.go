package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"refexcms/internal/linktree"
	"refexcms/internal/models"
	"refexcms/internal/render"
)

func (a *app) show(ctx context.Context, fs *flag.FlagSet, args []string) error {
	asJSON := fs.Bool("json", false, "print JSON instead of YAML")
	if err := parse(fs, args); err != nil {
		return err
	}
	tree, err := a.client.Load(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	return enc.Close()
}

func (a *app) view(ctx context.Context, fs *flag.FlagSet, args []string) error {
	category := fs.String("category", "", "category id (default the first category)")
	fy := fs.String("fy", "", `financial year filter, or "all"`)
	open := fs.String("open", "", "comma-separated open section ids (default the first section)")
	if err := parse(fs, args); err != nil {
		return err
	}
	tree, err := a.client.Load(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	set := explicit(fs)
	if set["category"] {
		q.Set(render.QueryCategory, *category)
	}
	if set["fy"] {
		q.Set(render.QueryFilter, *fy)
	}
	if set["open"] {
		q.Set(render.QueryOpen, *open)
	}
	state := render.ViewStateFromQuery(tree, q)
	printPage(a.out, linktree.Project(tree, state, a.baseURL))
	return nil
}

func (a *app) lint(ctx context.Context, fs *flag.FlagSet, args []string) error {
	local := fs.Bool("local", false, "check the tree locally instead of asking the server")
	if err := parse(fs, args); err != nil {
		return err
	}
	var findings []linktree.Finding
	if *local {
		tree, err := a.client.Load(ctx)
		if err != nil {
			return err
		}
		findings = linktree.Advise(tree)
	} else {
		var err error
		if findings, err = a.client.Findings(ctx); err != nil {
			return err
		}
	}
	if len(findings) == 0 {
		fmt.Fprintln(a.out, "no findings")
		return nil
	}
	for _, f := range findings {
		fmt.Fprintln(a.out, f)
	}
	return nil
}

func (a *app) addCategory(ctx context.Context, fs *flag.FlagSet, args []string) error {
	name := fs.String("name", "", "category name")
	collapsible := fs.Bool("collapsible", false, "render sections as an accordion")
	if err := parse(fs, args); err != nil {
		return err
	}
	set := explicit(fs)
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		id := e.AddCategory()
		if set["name"] {
			if err := e.UpdateCategoryName(id, *name); err != nil {
				return "", err
			}
		}
		if *collapsible {
			if err := e.UpdateCategoryCollapsible(id, true); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("added category %d", id), nil
	})
}

func (a *app) renameCategory(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.Int("id", 0, "category id")
	name := fs.String("name", "", "new name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "id", "name"); err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("renamed category %d", *id), e.UpdateCategoryName(*id, *name)
	})
}

func (a *app) setCollapsible(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.Int("id", 0, "category id")
	value := fs.Bool("value", true, "true for accordion, false for stacked")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "id"); err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("category %d collapsible=%t", *id, *value), e.UpdateCategoryCollapsible(*id, *value)
	})
}

func (a *app) deleteCategory(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.Int("id", 0, "category id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "id"); err != nil {
		return err
	}
	return a.edit(ctx, a.confirmer(*yes), func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("deleted category %d", *id), e.DeleteCategory(*id)
	})
}

func (a *app) moveCategory(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.Int("id", 0, "category id")
	dir := fs.String("dir", "", "up or down")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "id", "dir"); err != nil {
		return err
	}
	up, err := direction(*dir)
	if err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		if up {
			return fmt.Sprintf("moved category %d up", *id), e.MoveCategoryUp(*id)
		}
		return fmt.Sprintf("moved category %d down", *id), e.MoveCategoryDown(*id)
	})
}

// sectionFlags registers the editable section fields.
type sectionFlags struct {
	name  *string
	label *string
	fy    *string
	order *int
}

func newSectionFlags(fs *flag.FlagSet) sectionFlags {
	return sectionFlags{
		name:  fs.String("name", "", "section name"),
		label: fs.String("label", "", "label type: name or financialYear"),
		fy:    fs.String("fy", "", "financial year, e.g. 2025-2026"),
		order: fs.Int("order", 0, "display order"),
	}
}

// patch builds a patch from the flags that were given.
func (f sectionFlags) patch(set map[string]bool) (linktree.SectionPatch, error) {
	var p linktree.SectionPatch
	if set["name"] {
		p.Name = f.name
	}
	if set["label"] {
		lt := models.LabelType(*f.label)
		if lt != models.LabelName && lt != models.LabelFinancialYear {
			return p, fmt.Errorf("label must be %q or %q", models.LabelName, models.LabelFinancialYear)
		}
		p.LabelType = &lt
	}
	if set["fy"] {
		p.FinancialYear = f.fy
	}
	if set["order"] {
		p.Order = f.order
	}
	return p, nil
}

func (a *app) addSection(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	fields := newSectionFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category"); err != nil {
		return err
	}
	patch, err := fields.patch(explicit(fs))
	if err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		id, err := e.AddSection(*catID)
		if err != nil {
			return "", err
		}
		if err := e.UpdateSection(*catID, id, patch); err != nil {
			return "", err
		}
		return fmt.Sprintf("added section %d to category %d", id, *catID), nil
	})
}

func (a *app) updateSection(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	id := fs.Int("id", 0, "section id")
	fields := newSectionFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "id"); err != nil {
		return err
	}
	patch, err := fields.patch(explicit(fs))
	if err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("updated section %d", *id), e.UpdateSection(*catID, *id, patch)
	})
}

func (a *app) deleteSection(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	id := fs.Int("id", 0, "section id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "id"); err != nil {
		return err
	}
	return a.edit(ctx, a.confirmer(*yes), func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("deleted section %d", *id), e.DeleteSection(*catID, *id)
	})
}

func (a *app) moveSection(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	id := fs.Int("id", 0, "section id")
	dir := fs.String("dir", "", "up or down")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "id", "dir"); err != nil {
		return err
	}
	up, err := direction(*dir)
	if err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		if up {
			return fmt.Sprintf("moved section %d up", *id), e.MoveSectionUp(*catID, *id)
		}
		return fmt.Sprintf("moved section %d down", *id), e.MoveSectionDown(*catID, *id)
	})
}

// itemFlags registers the editable item fields.
type itemFlags struct {
	name   *string
	date   *string
	order  *int
	static *bool
	pdf    *string
	image  *string
	html   *string
}

func newItemFlags(fs *flag.FlagSet) itemFlags {
	return itemFlags{
		name:   fs.String("name", "", "item name"),
		date:   fs.String("date", "", "publish date, YYYY-MM-DD"),
		order:  fs.Int("order", 0, "display order"),
		static: fs.Bool("static", false, "render static HTML instead of a document"),
		pdf:    fs.String("pdf", "", "PDF URL"),
		image:  fs.String("image", "", "preview image URL"),
		html:   fs.String("html", "", "static HTML content"),
	}
}

func (f itemFlags) patch(set map[string]bool) linktree.ItemPatch {
	var p linktree.ItemPatch
	if set["name"] {
		p.Name = f.name
	}
	if set["date"] {
		p.PublishDate = f.date
	}
	if set["order"] {
		p.Order = f.order
	}
	if set["static"] {
		p.IsStatic = f.static
	}
	if set["pdf"] {
		p.PDFURL = f.pdf
	}
	if set["image"] {
		p.ImageURL = f.image
	}
	if set["html"] {
		p.StaticContent = f.html
	}
	return p
}

func (a *app) addItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	secID := fs.Int("section", 0, "section id")
	fields := newItemFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "section"); err != nil {
		return err
	}
	patch := fields.patch(explicit(fs))
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		id, err := e.AddItem(*catID, *secID)
		if err != nil {
			return "", err
		}
		if err := e.UpdateItem(*catID, *secID, id, patch); err != nil {
			return "", err
		}
		return fmt.Sprintf("added item %d to section %d", id, *secID), nil
	})
}

func (a *app) updateItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	secID := fs.Int("section", 0, "section id")
	id := fs.Int("id", 0, "item id")
	fields := newItemFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "section", "id"); err != nil {
		return err
	}
	patch := fields.patch(explicit(fs))
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("updated item %d", *id), e.UpdateItem(*catID, *secID, *id, patch)
	})
}

func (a *app) deleteItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	secID := fs.Int("section", 0, "section id")
	id := fs.Int("id", 0, "item id")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "section", "id"); err != nil {
		return err
	}
	return a.edit(ctx, a.confirmer(*yes), func(e *linktree.Editor) (string, error) {
		return fmt.Sprintf("deleted item %d", *id), e.DeleteItem(*catID, *secID, *id)
	})
}

func (a *app) moveItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	catID := fs.Int("category", 0, "category id")
	secID := fs.Int("section", 0, "section id")
	id := fs.Int("id", 0, "item id")
	dir := fs.String("dir", "", "up or down")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "category", "section", "id", "dir"); err != nil {
		return err
	}
	up, err := direction(*dir)
	if err != nil {
		return err
	}
	return a.edit(ctx, nil, func(e *linktree.Editor) (string, error) {
		if up {
			return fmt.Sprintf("moved item %d up", *id), e.MoveItemUp(*catID, *secID, *id)
		}
		return fmt.Sprintf("moved item %d down", *id), e.MoveItemDown(*catID, *secID, *id)
	})
}

func direction(dir string) (up bool, err error) {
	switch strings.ToLower(dir) {
	case "up":
		return true, nil
	case "down":
		return false, nil
	}
	return false, fmt.Errorf("direction must be up or down, got %q", dir)
}
