// Package view derives what the board shows from snapshots of the task and
// status collections. Everything here is a pure function of its inputs.
package view

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskboard/internal/models"
)

// Engine filters and sorts tasks. The zero value collates in English.
type Engine struct {
	locale language.Tag
}

// NewEngine returns an Engine whose alphabetical sort follows locale (a BCP 47 tag).
func NewEngine(locale string) (*Engine, error) {
	if locale == "" {
		return &Engine{locale: language.English}, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, models.Configurationf("invalid collation locale %q: %v", locale, err)
	}
	return &Engine{locale: tag}, nil
}

// Locale returns the collation locale.
func (e *Engine) Locale() language.Tag {
	if e == nil || e.locale == (language.Tag{}) {
		return language.English
	}
	return e.locale
}

// DeriveView is Engine.Derive with the default English collation.
func DeriveView(tasks []models.Task, filters models.Filters, sortBy models.SortOption) []models.Task {
	var e Engine
	return e.Derive(tasks, filters, sortBy)
}

// Derive narrows tasks by filters and then sorts the result by sortBy.
// The input slice is never modified.
func (e *Engine) Derive(tasks []models.Task, filters models.Filters, sortBy models.SortOption) []models.Task {
	result := Filter(tasks, filters)
	e.sort(result, sortBy)
	return result
}

// Filter applies the status, category, priority and text passes in that
// order. Each pass is skipped when its criterion is empty.
func Filter(tasks []models.Task, filters models.Filters) []models.Task {
	result := slices.Clone(tasks)
	if result == nil {
		result = []models.Task{}
	}

	if len(filters.Statuses) > 0 {
		result = keep(result, func(t models.Task) bool { return slices.Contains(filters.Statuses, t.Status) })
	}
	if len(filters.Categories) > 0 {
		result = keep(result, func(t models.Task) bool { return slices.Contains(filters.Categories, t.Category) })
	}
	if len(filters.Priorities) > 0 {
		result = keep(result, func(t models.Task) bool { return slices.Contains(filters.Priorities, t.Priority) })
	}
	if search := strings.ToLower(strings.TrimSpace(filters.SearchText)); search != "" {
		result = keep(result, func(t models.Task) bool {
			return strings.Contains(strings.ToLower(t.Description), search) ||
				strings.Contains(strings.ToLower(t.Category), search)
		})
	}
	return result
}

func keep(tasks []models.Task, pred func(models.Task) bool) []models.Task {
	return slices.DeleteFunc(tasks, func(t models.Task) bool { return !pred(t) })
}

// sort orders tasks in place. Ties keep their relative order.
func (e *Engine) sort(tasks []models.Task, sortBy models.SortOption) {
	switch sortBy {
	case models.SortDateAdded:
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return compareTime(a.CreatedAt, b.CreatedAt) })
	case models.SortDateAddedDesc:
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return compareTime(b.CreatedAt, a.CreatedAt) })
	case models.SortDueDate:
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return compareDue(a, b, false) })
	case models.SortDueDateDesc:
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return compareDue(a, b, true) })
	case models.SortPriority:
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return b.Priority.Rank() - a.Priority.Rank() })
	case models.SortAlphabetical:
		col := collate.New(e.Locale())
		slices.SortStableFunc(tasks, func(a, b models.Task) int { return col.CompareString(a.Description, b.Description) })
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// compareDue puts tasks without a due date last in both directions.
func compareDue(a, b models.Task, desc bool) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	x, y := *a.DueDate, *b.DueDate
	if desc {
		x, y = y, x
	}
	switch {
	case x.Before(y):
		return -1
	case x.After(y):
		return 1
	}
	return 0
}
