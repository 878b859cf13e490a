package view

import (
	"slices"
	"strings"

	"taskboard/internal/models"
)

// Stats counts tasks by completion.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// ComputeStats counts total, active and completed tasks.
func ComputeStats(tasks []models.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}

// Categories returns the distinct non-empty categories in sorted order.
func Categories(tasks []models.Task) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range tasks {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	slices.Sort(out)
	return out
}

// FilterChip is one removable entry of the active filter summary.
type FilterChip struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

// FilterSummary describes which filters are in effect.
type FilterSummary struct {
	Active bool         `json:"active"`
	Chips  []FilterChip `json:"chips"`
}

// SummarizeFilters builds the chip list shown above the task list. Status
// ids are shown by label; ids no longer in statuses are shown raw.
func SummarizeFilters(filters models.Filters, statuses []models.Status) FilterSummary {
	summary := FilterSummary{Chips: []FilterChip{}}

	if len(filters.Statuses) > 0 {
		labels := make(map[string]string, len(statuses))
		for _, s := range statuses {
			labels[s.ID] = s.Label
		}
		values := make([]string, 0, len(filters.Statuses))
		for _, id := range filters.Statuses {
			if label, ok := labels[id]; ok {
				values = append(values, label)
			} else {
				values = append(values, id)
			}
		}
		summary.Chips = append(summary.Chips, FilterChip{Kind: "status", Values: values})
	}
	if len(filters.Categories) > 0 {
		summary.Chips = append(summary.Chips, FilterChip{Kind: "category", Values: slices.Clone(filters.Categories)})
	}
	if len(filters.Priorities) > 0 {
		values := make([]string, 0, len(filters.Priorities))
		for _, p := range filters.Priorities {
			values = append(values, priorityLabel(p))
		}
		summary.Chips = append(summary.Chips, FilterChip{Kind: "priority", Values: values})
	}
	if search := strings.TrimSpace(filters.SearchText); search != "" {
		summary.Chips = append(summary.Chips, FilterChip{Kind: "search", Values: []string{search}})
	}

	summary.Active = len(summary.Chips) > 0
	return summary
}

func priorityLabel(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "High"
	case models.PriorityMedium:
		return "Medium"
	case models.PriorityLow:
		return "Low"
	}
	return string(p)
}
