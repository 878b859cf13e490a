package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Limits enforced by the status registry.
const (
	MaxStatuses             = 7
	MinStatuses             = 1
	MinStatusLabelLength    = 3
	MaxStatusLabelLength    = 30
	MaxStatusDescriptionLen = 100
)

// Status describes one workflow stage, rendered as a board column and offered as a filter.
type Status struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Value       string    `json:"value"`
	Color       string    `json:"color"`
	ColorName   string    `json:"colorName"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StatusInput carries the caller supplied fields of a new status.
// A zero Position appends the status at the end of the board.
type StatusInput struct {
	Label       string `json:"label" validate:"required,min=3,max=30,printascii"`
	Value       string `json:"value"`
	Color       string `json:"color" validate:"omitempty,palette"`
	Description string `json:"description" validate:"max=100"`
	Position    int    `json:"position" validate:"gte=0"`
}

// StatusPatch is a partial update; nil fields are left untouched.
type StatusPatch struct {
	Label       *string `json:"label,omitempty" validate:"omitempty,min=3,max=30,printascii"`
	Value       *string `json:"value,omitempty"`
	Color       *string `json:"color,omitempty" validate:"omitempty,palette"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=100"`
	Position    *int    `json:"position,omitempty" validate:"omitempty,gte=1"`
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities so that high sorts first in a descending sort.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a single unit of work.
type Task struct {
	ID          string      `json:"id"`
	Description string      `json:"text"`
	Completed   bool        `json:"completed"`
	Status      string      `json:"status"`
	Priority    Priority    `json:"priority"`
	Category    string      `json:"category"`
	DueDate     *civil.Date `json:"dueDate"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TaskInput carries the fields of a new task. An empty Status selects the default status.
type TaskInput struct {
	Description string      `json:"text"`
	Status      string      `json:"status"`
	Priority    Priority    `json:"priority"`
	Category    string      `json:"category"`
	DueDate     *civil.Date `json:"dueDate"`
}

// TaskPatch is a partial update. ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Description  *string     `json:"text,omitempty"`
	Completed    *bool       `json:"completed,omitempty"`
	Status       *string     `json:"status,omitempty"`
	Priority     *Priority   `json:"priority,omitempty"`
	Category     *string     `json:"category,omitempty"`
	DueDate      *civil.Date `json:"dueDate,omitempty"`
	ClearDueDate bool        `json:"clearDueDate,omitempty"`
}

// SortOption selects the ordering applied after filtering.
type SortOption string

const (
	SortDateAdded     SortOption = "dateAdded"
	SortDateAddedDesc SortOption = "dateAddedDesc"
	SortDueDate       SortOption = "dueDate"
	SortDueDateDesc   SortOption = "dueDateDesc"
	SortPriority      SortOption = "priority"
	SortAlphabetical  SortOption = "alphabetical"
)

// ParseSortOption accepts the wire names above. An empty string selects SortDateAdded.
func ParseSortOption(raw string) (SortOption, error) {
	if raw == "" {
		return SortDateAdded, nil
	}
	switch opt := SortOption(raw); opt {
	case SortDateAdded, SortDateAddedDesc, SortDueDate, SortDueDateDesc, SortPriority, SortAlphabetical:
		return opt, nil
	}
	return "", Validationf("unknown sort option %q", raw)
}

// Filters narrows a task list. Empty selections mean no restriction.
type Filters struct {
	Statuses   []string   `json:"statuses"`
	Categories []string   `json:"categories"`
	Priorities []Priority `json:"priorities"`
	SearchText string     `json:"searchText"`
}
