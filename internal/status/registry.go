// Package status owns the user-customizable set of workflow statuses.
//
// The registry keeps between 1 and 7 statuses with case-insensitively unique
// labels and dense positions 1..N. Every mutation is validated in full before
// anything changes and is written through to the key-value store before the
// call returns. A failed write is logged and does not undo the change.
package status

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

// Registry is the single owner of the status collection.
type Registry struct {
	mu       sync.RWMutex
	kv       storage.KV
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	statuses []models.Status
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator replaces the uuid based identifier generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

// NewRegistry loads the statuses stored in kv, materializing the default set
// when nothing usable is stored.
func NewRegistry(ctx context.Context, kv storage.KV, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		kv:     kv,
		logger: logger.With(slog.String("component", "status_registry")),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return "status-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.load(ctx)
	return r
}

func (r *Registry) load(ctx context.Context) {
	var stored []models.Status
	found, err := storage.ReadJSON(ctx, r.kv, storage.StatusesKey, &stored)
	switch {
	case err != nil:
		r.logger.Warn("persistence warning: failed to load statuses, regenerating defaults", slog.String("error", err.Error()))
	case !found:
		r.logger.Info("no statuses stored, creating defaults")
	case len(stored) == 0:
		r.logger.Warn("stored status list is empty, creating defaults")
	default:
		list, dropped := sanitize(stored)
		if len(list) > 0 {
			r.statuses = list
			if dropped > 0 {
				r.logger.Warn("dropped invalid stored statuses",
					slog.Int("dropped", dropped), slog.Int("kept", len(list)), slog.Int("max", models.MaxStatuses))
				r.persist(ctx)
			}
			return
		}
		r.logger.Warn("no usable stored statuses, creating defaults")
	}

	r.statuses = DefaultStatuses(r.now())
	r.persist(ctx)
}

// sanitize orders stored statuses by position and drops entries without an
// id, repeated ids, repeated labels (case-insensitive) and anything past
// MaxStatuses. It returns the kept list with dense positions and the number
// of dropped entries.
func sanitize(stored []models.Status) ([]models.Status, int) {
	slices.SortStableFunc(stored, func(a, b models.Status) int { return a.Position - b.Position })

	ids := make(map[string]struct{}, len(stored))
	labels := make(map[string]struct{}, len(stored))
	kept := make([]models.Status, 0, min(len(stored), models.MaxStatuses))
	for _, st := range stored {
		label := strings.ToLower(strings.TrimSpace(st.Label))
		if st.ID == "" || label == "" || len(kept) == models.MaxStatuses {
			continue
		}
		if _, dup := ids[st.ID]; dup {
			continue
		}
		if _, dup := labels[label]; dup {
			continue
		}
		ids[st.ID] = struct{}{}
		labels[label] = struct{}{}

		st.Position = len(kept) + 1
		if c, ok := models.ColorByID(st.Color); ok {
			st.ColorName = c.Name
		}
		kept = append(kept, st)
	}
	return kept, len(stored) - len(kept)
}

// DefaultStatuses returns the To Do / In Progress / Done set created on first run.
func DefaultStatuses(now time.Time) []models.Status {
	return []models.Status{
		{
			ID:          "status-todo",
			Label:       "To Do",
			Value:       "todo",
			Color:       "color-7",
			ColorName:   "Warm Amber",
			Description: "Tasks that need to be started",
			Position:    1,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "status-inprogress",
			Label:       "In Progress",
			Value:       "inProgress",
			Color:       "color-1",
			ColorName:   "Terracotta",
			Description: "Tasks currently being worked on",
			Position:    2,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "status-done",
			Label:       "Done",
			Value:       "done",
			Color:       "color-2",
			ColorName:   "Sage",
			Description: "Completed tasks",
			Position:    3,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// List returns a snapshot of all statuses ordered by position.
func (r *Registry) List() []models.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.statuses)
}

// Count returns the number of statuses.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.statuses)
}

// GetByID returns the status with the given id.
func (r *Registry) GetByID(id string) (models.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.statuses[i], true
	}
	return models.Status{}, false
}

// Exists reports whether id names a known status.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(id) >= 0
}

// First returns the status at position 1, used as the default for new tasks.
func (r *Registry) First() (models.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.statuses) == 0 {
		return models.Status{}, false
	}
	return r.statuses[0], true
}

// Create validates and appends a new status. A positive input.Position
// inserts the status at that place and shifts the following ones.
func (r *Registry) Create(ctx context.Context, input models.StatusInput) (models.Status, error) {
	input.Label = strings.TrimSpace(input.Label)
	input.Value = strings.TrimSpace(input.Value)
	input.Color = strings.TrimSpace(input.Color)
	input.Description = strings.TrimSpace(input.Description)

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.statuses) >= models.MaxStatuses {
		return models.Status{}, models.Invariantf("cannot add status: maximum of %d statuses allowed", models.MaxStatuses)
	}
	if err := models.ValidateStruct(input); err != nil {
		return models.Status{}, err
	}
	if r.labelTaken(input.Label, "") {
		return models.Status{}, models.Validationf("status with label %q already exists", input.Label)
	}

	colorID := input.Color
	if colorID == "" {
		colorID = models.DefaultColorID
	}
	color, _ := models.ColorByID(colorID)

	value := Slugify(input.Value)
	if value == "" {
		value = Slugify(input.Label)
	}

	now := r.now()
	created := models.Status{
		ID:          r.newID(),
		Label:       input.Label,
		Value:       value,
		Color:       color.ID,
		ColorName:   color.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := slices.Clone(r.statuses)
	at := len(next)
	if input.Position > 0 && input.Position <= len(next) {
		at = input.Position - 1
	}
	next = slices.Insert(next, at, created)
	renumber(next, now)

	r.statuses = next
	r.persist(ctx)

	r.logger.Debug("status created", slog.String("id", created.ID), slog.String("label", created.Label))
	return next[at], nil
}

// Update merges patch into the status with the given id.
func (r *Registry) Update(ctx context.Context, id string, patch models.StatusPatch) (models.Status, error) {
	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if label == "" {
			return models.Status{}, models.Validationf("label is required")
		}
		patch.Label = &label
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
	}
	if patch.Color != nil {
		c := strings.TrimSpace(*patch.Color)
		patch.Color = &c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Status{}, models.NotFoundf("status with id %q not found", id)
	}
	if err := models.ValidateStruct(patch); err != nil {
		return models.Status{}, err
	}
	if patch.Label != nil && r.labelTaken(*patch.Label, id) {
		return models.Status{}, models.Validationf("status with label %q already exists", *patch.Label)
	}

	now := r.now()
	updated := r.statuses[idx]
	if patch.Label != nil {
		updated.Label = *patch.Label
	}
	if patch.Value != nil {
		if v := Slugify(*patch.Value); v != "" {
			updated.Value = v
		}
	}
	if patch.Color != nil && *patch.Color != "" {
		color, _ := models.ColorByID(*patch.Color)
		updated.Color = color.ID
		updated.ColorName = color.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	updated.UpdatedAt = now

	next := slices.Clone(r.statuses)
	next[idx] = updated
	if patch.Position != nil && *patch.Position != idx+1 {
		to := min(*patch.Position, len(next)) - 1
		next = slices.Delete(next, idx, idx+1)
		next = slices.Insert(next, to, updated)
		idx = to
	}
	renumber(next, now)

	r.statuses = next
	r.persist(ctx)
	return next[idx], nil
}

// Delete removes a status. Tasks referring to it are left untouched; callers
// that want to keep them on the board reassign them through the task store.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.NotFoundf("status with id %q not found", id)
	}
	if len(r.statuses) <= models.MinStatuses {
		return models.Invariantf("cannot delete the last remaining status")
	}

	next := slices.Delete(slices.Clone(r.statuses), idx, idx+1)
	renumber(next, r.now())

	r.statuses = next
	r.persist(ctx)

	r.logger.Debug("status deleted", slog.String("id", id))
	return nil
}

// Reorder assigns positions 1..N following orderedIDs, which must list every
// current status exactly once.
func (r *Registry) Reorder(ctx context.Context, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(orderedIDs) != len(r.statuses) {
		return models.NotFoundf("reorder must list all %d statuses exactly once, got %d ids", len(r.statuses), len(orderedIDs))
	}

	now := r.now()
	seen := make(map[string]struct{}, len(orderedIDs))
	next := make([]models.Status, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return models.NotFoundf("status with id %q listed more than once", id)
		}
		seen[id] = struct{}{}

		idx := r.indexOf(id)
		if idx < 0 {
			return models.NotFoundf("status with id %q not found", id)
		}
		s := r.statuses[idx]
		s.Position = i + 1
		s.UpdatedAt = now
		next = append(next, s)
	}

	r.statuses = next
	r.persist(ctx)
	return nil
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.statuses, func(s models.Status) bool { return s.ID == id })
}

func (r *Registry) labelTaken(label, excludeID string) bool {
	for _, s := range r.statuses {
		if s.ID != excludeID && strings.EqualFold(strings.TrimSpace(s.Label), label) {
			return true
		}
	}
	return false
}

// persist writes the full list. Callers hold the write lock. The write
// outlives a cancelled request because the in-memory change already happened.
func (r *Registry) persist(ctx context.Context) {
	if err := storage.WriteJSON(context.WithoutCancel(ctx), r.kv, storage.StatusesKey, r.statuses); err != nil {
		r.logger.Warn("persistence warning: failed to save statuses", slog.String("error", err.Error()))
	}
}

// renumber makes positions dense, stamping statuses whose position moved.
func renumber(list []models.Status, now time.Time) {
	for i := range list {
		if list[i].Position != i+1 {
			list[i].Position = i + 1
			list[i].UpdatedAt = now
		}
	}
}
