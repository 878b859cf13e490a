package status

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/storage"
	"taskboard/internal/storage/memory"
	"taskboard/internal/storage/sqlite"
)

// flakyKV fails every Set once failSets is true.
type flakyKV struct {
	*memory.Store
	failSets bool
	sets     int
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.sets++
	if f.failSets {
		return errors.New("quota exceeded")
	}
	return f.Store.Set(ctx, key, value)
}

func TestNewRegistryCreatesDefaults(t *testing.T) {
	kv := memory.New()
	reg := newTestRegistry(t, kv)

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"To Do", "In Progress", "Done"}, labels(list))
	assert.Equal(t, []string{"status-todo", "status-inprogress", "status-done"}, ids(list))
	assertDensePositions(t, list)

	raw, ok, err := kv.Get(context.Background(), storage.StatusesKey)
	require.NoError(t, err)
	require.True(t, ok, "defaults must be persisted")
	assert.Contains(t, raw, "status-inprogress")
}

func TestNewRegistryLoadsStoredStatuses(t *testing.T) {
	kv := memory.New()
	first := newTestRegistry(t, kv)
	_, err := first.Create(context.Background(), models.StatusInput{Label: "Blocked", Color: "color-5"})
	require.NoError(t, err)

	second := newTestRegistry(t, kv)
	list := second.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Blocked", list[3].Label)
	assert.Equal(t, "Rust", list[3].ColorName)
}

func TestNewRegistryMalformedJSONRegeneratesDefaults(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), storage.StatusesKey, "{not json"))

	reg := newTestRegistry(t, kv)
	assert.Equal(t, 3, reg.Count())

	raw, _, _ := kv.Get(context.Background(), storage.StatusesKey)
	assert.True(t, strings.HasPrefix(raw, "["), "defaults replace the malformed value")
}

func TestNewRegistryEmptyListRegeneratesDefaults(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), storage.StatusesKey, "[]"))

	reg := newTestRegistry(t, kv)
	assert.Equal(t, 3, reg.Count())
}

func TestCreateAppendsAndStamps(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	created, err := reg.Create(context.Background(), models.StatusInput{Label: "  Code Review  ", Description: " waiting on peers "})
	require.NoError(t, err)

	assert.Equal(t, "Code Review", created.Label)
	assert.Equal(t, "code-review", created.Value)
	assert.Equal(t, models.DefaultColorID, created.Color)
	assert.Equal(t, "Terracotta", created.ColorName)
	assert.Equal(t, "waiting on peers", created.Description)
	assert.Equal(t, 4, created.Position)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.True(t, reg.Exists(created.ID))
}

func TestCreateAtPositionShiftsOthers(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	created, err := reg.Create(context.Background(), models.StatusInput{Label: "Backlog", Position: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Position)

	list := reg.List()
	assert.Equal(t, []string{"Backlog", "To Do", "In Progress", "Done"}, labels(list))
	assertDensePositions(t, list)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   models.StatusInput
		message string
	}{
		{name: "too short", input: models.StatusInput{Label: "ab"}, message: "label must be at least 3 characters"},
		{name: "short after trim", input: models.StatusInput{Label: "  ab   "}, message: "label must be at least 3 characters"},
		{name: "too long", input: models.StatusInput{Label: strings.Repeat("x", 31)}, message: "label must be at most 30 characters"},
		{name: "empty", input: models.StatusInput{Label: "   "}, message: "label is required"},
		{name: "non ascii", input: models.StatusInput{Label: "Fertig ✓"}, message: "label must contain only printable ASCII characters"},
		{name: "duplicate", input: models.StatusInput{Label: "to do"}, message: `status with label "to do" already exists`},
		{name: "unknown color", input: models.StatusInput{Label: "Blocked", Color: "color-99"}, message: `color "color-99" is not in the color palette`},
		{name: "long description", input: models.StatusInput{Label: "Blocked", Description: strings.Repeat("d", 101)}, message: "description must be at most 100 characters"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := &flakyKV{Store: memory.New()}
			reg := newTestRegistry(t, kv)
			setsBefore := kv.sets

			_, err := reg.Create(context.Background(), tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, 3, reg.Count())
			assert.Equal(t, setsBefore, kv.sets, "failed create must not persist")
		})
	}
}

func TestCreateRespectsMaximum(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := reg.Create(ctx, models.StatusInput{Label: fmt.Sprintf("Blocked %d", i)})
		require.NoError(t, err)
	}
	require.Equal(t, models.MaxStatuses, reg.Count())

	_, err := reg.Create(ctx, models.StatusInput{Label: "Blocked"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvariant)
	assert.Equal(t, models.MaxStatuses, reg.Count())
}

func TestCardinalityHoldsOverRandomSequence(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if i%3 == 2 {
			list := reg.List()
			_ = reg.Delete(ctx, list[i%len(list)].ID)
		} else {
			_, _ = reg.Create(ctx, models.StatusInput{Label: fmt.Sprintf("Stage %02d", i)})
		}
		count := reg.Count()
		assert.GreaterOrEqual(t, count, models.MinStatuses)
		assert.LessOrEqual(t, count, models.MaxStatuses)
		assertDensePositions(t, reg.List())
	}
}

func TestUpdateMergesFields(t *testing.T) {
	clock := newFakeClock()
	reg := newTestRegistry(t, memory.New(), WithClock(clock.Now))
	before, _ := reg.GetByID("status-todo")

	clock.Advance(time.Minute)
	label := "Backlog"
	color := "color-3"
	updated, err := reg.Update(context.Background(), "status-todo", models.StatusPatch{Label: &label, Color: &color})
	require.NoError(t, err)

	assert.Equal(t, "Backlog", updated.Label)
	assert.Equal(t, "Golden Sand", updated.ColorName)
	assert.Equal(t, before.Description, updated.Description)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateKeepsOwnLabelWithDifferentCase(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	label := "TO DO"
	updated, err := reg.Update(context.Background(), "status-todo", models.StatusPatch{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "TO DO", updated.Label)
}

func TestUpdateRejectsDuplicateLabel(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	label := " done "
	_, err := reg.Update(context.Background(), "status-todo", models.StatusPatch{Label: &label})
	assert.ErrorIs(t, err, models.ErrValidation)

	s, _ := reg.GetByID("status-todo")
	assert.Equal(t, "To Do", s.Label)
}

func TestUpdateUnknownID(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	_, err := reg.Update(context.Background(), "nope", models.StatusPatch{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePositionMovesStatus(t *testing.T) {
	reg := newTestRegistry(t, memory.New())

	pos := 1
	_, err := reg.Update(context.Background(), "status-done", models.StatusPatch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, []string{"Done", "To Do", "In Progress"}, labels(reg.List()))
	assertDensePositions(t, reg.List())
}

func TestDelete(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	ctx := context.Background()

	require.NoError(t, reg.Delete(ctx, "status-inprogress"))
	assert.False(t, reg.Exists("status-inprogress"))
	assertDensePositions(t, reg.List())

	assert.ErrorIs(t, reg.Delete(ctx, "status-inprogress"), models.ErrNotFound)
}

func TestDeleteLastStatusIsRejected(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	ctx := context.Background()

	require.NoError(t, reg.Delete(ctx, "status-todo"))
	require.NoError(t, reg.Delete(ctx, "status-inprogress"))

	err := reg.Delete(ctx, "status-done")
	assert.ErrorIs(t, err, models.ErrInvariant)
	assert.Equal(t, 1, reg.Count())
}

func TestReorderIsPermutation(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	order := []string{"status-done", "status-todo", "status-inprogress"}

	require.NoError(t, reg.Reorder(context.Background(), order))

	list := reg.List()
	assert.Equal(t, order, ids(list))
	assertDensePositions(t, list)

	reloaded := newTestRegistry(t, reg.kv)
	assert.Equal(t, order, ids(reloaded.List()))
}

func TestReorderRejectsBadInput(t *testing.T) {
	tests := map[string][]string{
		"unknown id": {"status-done", "status-todo", "status-ghost"},
		"omitted":    {"status-done", "status-todo"},
		"duplicated": {"status-done", "status-done", "status-todo"},
		"extra":      {"status-done", "status-todo", "status-inprogress", "status-todo"},
	}
	for name, order := range tests {
		t.Run(name, func(t *testing.T) {
			reg := newTestRegistry(t, memory.New())
			before := reg.List()

			err := reg.Reorder(context.Background(), order)
			assert.ErrorIs(t, err, models.ErrNotFound)
			assert.Equal(t, before, reg.List())
		})
	}
}

func TestPersistFailureKeepsInMemoryChange(t *testing.T) {
	kv := &flakyKV{Store: memory.New()}
	reg := newTestRegistry(t, kv)
	kv.failSets = true

	created, err := reg.Create(context.Background(), models.StatusInput{Label: "Blocked"})
	require.NoError(t, err)
	assert.True(t, reg.Exists(created.ID))
	assert.Equal(t, 4, reg.Count())
}

func TestFirstFollowsPosition(t *testing.T) {
	reg := newTestRegistry(t, memory.New())
	require.NoError(t, reg.Reorder(context.Background(), []string{"status-inprogress", "status-todo", "status-done"}))

	first, ok := reg.First()
	require.True(t, ok)
	assert.Equal(t, "status-inprogress", first.ID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "inProgress", Slugify("inProgress"))
	assert.Equal(t, "code-review", Slugify("Code Review!"))
	assert.Equal(t, "qa-uat", Slugify("  QA / UAT "))
	assert.Equal(t, "", Slugify("!!!"))
}

func newTestRegistry(t *testing.T, kv storage.KV, opts ...Option) *Registry {
	t.Helper()
	return NewRegistry(context.Background(), kv, nil, opts...)
}

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func labels(list []models.Status) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Label)
	}
	return out
}

func ids(list []models.Status) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func assertDensePositions(t *testing.T, list []models.Status) {
	t.Helper()
	for i, s := range list {
		assert.Equal(t, i+1, s.Position, "position of %s", s.ID)
	}
}

func TestMutationWithCancelledContextIsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.db")
	kv, err := sqlite.Open(path, nil)
	require.NoError(t, err)

	reg := newTestRegistry(t, kv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = reg.Create(ctx, models.StatusInput{Label: "Review"})
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	reopened, err := sqlite.Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	reloaded := newTestRegistry(t, reopened)
	assert.Equal(t, []string{"To Do", "In Progress", "Done", "Review"}, labels(reloaded.List()))
}

func TestNewRegistryNormalizesCorruptStoredList(t *testing.T) {
	kv := memory.New()
	stored := []models.Status{
		{ID: "s-1", Label: "Backlog", Position: 1},
		{ID: "s-1", Label: "Copy of backlog", Position: 2},
		{ID: "s-2", Label: "BACKLOG", Position: 3},
		{ID: "", Label: "No id", Position: 4},
	}
	for i := 3; i <= 10; i++ {
		stored = append(stored, models.Status{ID: fmt.Sprintf("s-%d", i), Label: fmt.Sprintf("Stage %d", i), Position: i + 2})
	}
	require.NoError(t, storage.WriteJSON(context.Background(), kv, storage.StatusesKey, stored))

	reg := newTestRegistry(t, kv)
	list := reg.List()
	require.Len(t, list, models.MaxStatuses)
	assert.Equal(t, []string{"Backlog", "Stage 3", "Stage 4", "Stage 5", "Stage 6", "Stage 7", "Stage 8"}, labels(list))
	for i, s := range list {
		assert.Equal(t, i+1, s.Position)
	}

	var persisted []models.Status
	found, err := storage.ReadJSON(context.Background(), kv, storage.StatusesKey, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, persisted, models.MaxStatuses)
}

func TestNewRegistryWithNoUsableStoredStatusesCreatesDefaults(t *testing.T) {
	kv := memory.New()
	stored := []models.Status{{ID: "", Label: "Nameless", Position: 1}}
	require.NoError(t, storage.WriteJSON(context.Background(), kv, storage.StatusesKey, stored))

	reg := newTestRegistry(t, kv)
	assert.Equal(t, []string{"To Do", "In Progress", "Done"}, labels(reg.List()))
}
