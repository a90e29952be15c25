// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package linktree

import (
	"errors"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"refexcms/internal/models"
)

// Finding is an advisory problem in the tree. Findings never block a save.
type Finding struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return f.Path + ": " + f.Message
}

// financialYearRule checks the "<start>-<end>" shape and year bounds.
var financialYearRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, _, err := models.ParseFinancialYear(s); err != nil {
		return errors.New("must look like 2025-2026 with years between 2010 and 2030")
	}
	return nil
})

// publishDateRule accepts empty values or YYYY-MM-DD dates.
var publishDateRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return errors.New("must be a YYYY-MM-DD date")
	}
	return nil
})

// Advise reports advisory findings for the tree, in tree order.
func Advise(tree []models.Category) []Finding {
	var out []Finding
	for _, c := range tree {
		cpath := fmt.Sprintf("category %d", c.ID)
		out = appendFindings(out, cpath, validation.ValidateStruct(&c,
			validation.Field(&c.Name, validation.Required),
		))
		for _, s := range c.Sections {
			spath := fmt.Sprintf("%s/section %d", cpath, s.ID)
			out = appendFindings(out, spath, validation.ValidateStruct(&s,
				validation.Field(&s.LabelType, validation.In(models.LabelName, models.LabelFinancialYear)),
				validation.Field(&s.FinancialYear,
					validation.When(s.IsFinancialYear(), validation.Required, financialYearRule)),
			))
			for _, it := range s.Items {
				ipath := fmt.Sprintf("%s/item %d", spath, it.ID)
				out = appendFindings(out, ipath, validation.ValidateStruct(&it,
					validation.Field(&it.Name, validation.When(!it.IsStatic, validation.Required)),
					validation.Field(&it.PDFURL, validation.When(!it.IsStatic, validation.Required)),
					validation.Field(&it.StaticContent, validation.When(it.IsStatic, validation.Required)),
					validation.Field(&it.PublishDate, publishDateRule),
				))
			}
		}
	}
	return out
}

// appendFindings flattens an ozzo validation result into findings sorted
// by field name.
func appendFindings(out []Finding, path string, err error) []Finding {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return out
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		out = append(out, Finding{Path: path + "/" + f, Message: errs[f].Error()})
	}
	return out
}
