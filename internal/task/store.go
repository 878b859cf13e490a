// Package task owns the task collection and its write-through persistence.
package task

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// StatusLookup is the slice of the status registry the store depends on.
type StatusLookup interface {
	Exists(id string) bool
	First() (models.Status, bool)
}

// Store is the single owner of the task collection.
//
// Unknown ids on Update, Delete and ToggleCompleted are silent no-ops: the
// board is a single-user local editor and a stale id only means the task is
// already gone.
type Store struct {
	mu       sync.RWMutex
	kv       storage.KV
	statuses StatusLookup
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	tasks    []models.Task
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore loads the tasks stored in kv. Status references are validated
// through statuses on every write; a nil lookup accepts any non-empty id.
func NewStore(ctx context.Context, kv storage.KV, statuses StatusLookup, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:       kv,
		statuses: statuses,
		logger:   logger.With(slog.String("component", "task_store")),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	var stored []models.Task
	if _, err := storage.ReadJSON(ctx, s.kv, storage.TasksKey, &stored); err != nil {
		s.logger.Warn("persistence warning: failed to load tasks, starting empty", slog.String("error", err.Error()))
		stored = nil
	}
	s.tasks = stored
}

// List returns every task, unfiltered and in insertion order.
func (s *Store) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// Add creates a task. The description must not be blank. An invalid or
// missing status falls back to the first registry status.
func (s *Store) Add(ctx context.Context, input models.TaskInput) (models.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return models.Task{}, models.Validationf("task description must not be empty")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.Task{}, models.Validationf("unknown priority %q", input.Priority)
	}

	status, err := s.resolveStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return models.Task{}, err
	}

	now := s.now()
	created := models.Task{
		ID:          s.newID(),
		Description: description,
		Completed:   false,
		Status:      status,
		Priority:    priority,
		Category:    strings.TrimSpace(input.Category),
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, created)
	s.persist(ctx)
	return created, nil
}

func (s *Store) resolveStatus(requested string) (string, error) {
	if requested != "" && s.validStatus(requested) {
		return requested, nil
	}
	if requested != "" {
		s.logger.Warn("invalid status on new task, using default", slog.String("status", requested))
	}
	if s.statuses == nil {
		return "", models.Configurationf("cannot add task: no valid status available")
	}
	first, ok := s.statuses.First()
	if !ok || first.ID == "" {
		return "", models.Configurationf("cannot add task: no valid status available")
	}
	return first.ID, nil
}

func (s *Store) validStatus(id string) bool {
	if s.statuses == nil {
		return id != ""
	}
	return s.statuses.Exists(id)
}

// Update applies patch to the task with the given id. It returns false when
// the id is unknown. Fields that fail validation keep their current value.
// UpdatedAt is refreshed, and the list persisted, only when something changed.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Task{}, false
	}

	current := s.tasks[idx]
	next := current
	if patch.Description != nil {
		if d := strings.TrimSpace(*patch.Description); d != "" {
			next.Description = d
		} else {
			s.logger.Warn("ignoring empty description update", slog.String("task", id))
		}
	}
	if patch.Completed != nil {
		next.Completed = *patch.Completed
	}
	if patch.Status != nil && *patch.Status != current.Status {
		if s.validStatus(*patch.Status) {
			next.Status = *patch.Status
		} else {
			s.logger.Warn("invalid status on update, keeping current", slog.String("task", id), slog.String("status", *patch.Status))
		}
	}
	if patch.Priority != nil {
		if patch.Priority.Valid() {
			next.Priority = *patch.Priority
		} else {
			s.logger.Warn("invalid priority on update, keeping current", slog.String("task", id), slog.String("priority", string(*patch.Priority)))
		}
	}
	if patch.Category != nil {
		next.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ClearDueDate {
		next.DueDate = nil
	} else if patch.DueDate != nil {
		d := *patch.DueDate
		next.DueDate = &d
	}

	if sameTask(current, next) {
		return current, true
	}

	next.UpdatedAt = s.later(current.CreatedAt)
	s.tasks[idx] = next
	s.persist(ctx)
	return next, true
}

// Delete removes the task with the given id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.tasks = slices.Delete(slices.Clone(s.tasks), idx, idx+1)
	s.persist(ctx)
	return true
}

// ToggleCompleted flips the completion flag. The workflow status is left as is.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Task{}, false
	}
	t := s.tasks[idx]
	t.Completed = !t.Completed
	t.UpdatedAt = s.later(t.CreatedAt)
	s.tasks[idx] = t
	s.persist(ctx)
	return t, true
}

// ReassignStatus moves every task on fromStatusID to toStatusID and returns
// how many tasks moved. Callers invoke it around a status deletion; it is
// never triggered automatically.
func (s *Store) ReassignStatus(ctx context.Context, fromStatusID, toStatusID string) (int, error) {
	if toStatusID == "" || !s.validStatus(toStatusID) {
		return 0, models.Validationf("cannot reassign: invalid target status %q", toStatusID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fromStatusID == toStatusID {
		return 0, nil
	}

	next := slices.Clone(s.tasks)
	moved := 0
	for i := range next {
		if next[i].Status != fromStatusID {
			continue
		}
		next[i].Status = toStatusID
		next[i].UpdatedAt = s.later(next[i].CreatedAt)
		moved++
	}
	if moved == 0 {
		return 0, nil
	}

	s.tasks = next
	s.persist(ctx)
	s.logger.Info("tasks reassigned", slog.String("from", fromStatusID), slog.String("to", toStatusID), slog.Int("count", moved))
	return moved, nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

// later returns now, clamped so that UpdatedAt never precedes CreatedAt.
func (s *Store) later(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

// persist writes the full list. Callers hold the write lock. The write
// outlives a cancelled request because the in-memory change already happened.
func (s *Store) persist(ctx context.Context) {
	if err := storage.WriteJSON(context.WithoutCancel(ctx), s.kv, storage.TasksKey, s.tasks); err != nil {
		s.logger.Warn("persistence warning: failed to save tasks", slog.String("error", err.Error()))
	}
}

func sameTask(a, b models.Task) bool {
	if a.Description != b.Description || a.Completed != b.Completed || a.Status != b.Status ||
		a.Priority != b.Priority || a.Category != b.Category {
		return false
	}
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return true
	case a.DueDate == nil || b.DueDate == nil:
		return false
	}
	return *a.DueDate == *b.DueDate
}
