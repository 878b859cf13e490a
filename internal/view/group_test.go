package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

var boardStatuses = []models.Status{
	{ID: "status-todo", Label: "To Do", Position: 1},
	{ID: "status-inprogress", Label: "In Progress", Position: 2},
	{ID: "status-done", Label: "Done", Position: 3},
}

func TestGroupByStatusHasBucketPerStatus(t *testing.T) {
	tasks := []models.Task{mk("a", 1, nil), mk("b", 2, nil)}
	tasks[1].Status = "status-done"

	buckets := GroupByStatus(tasks, boardStatuses)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"a"}, taskIDs(buckets["status-todo"]))
	assert.NotNil(t, buckets["status-inprogress"])
	assert.Empty(t, buckets["status-inprogress"])
	assert.Equal(t, []string{"b"}, taskIDs(buckets["status-done"]))
}

func TestGroupByStatusKeepsInputOrder(t *testing.T) {
	tasks := []models.Task{mk("z", 3, nil), mk("y", 1, nil), mk("x", 2, nil)}

	buckets := GroupByStatus(tasks, boardStatuses)
	assert.Equal(t, []string{"z", "y", "x"}, taskIDs(buckets["status-todo"]))
}

func TestOrphanedTasksAreOmittedFromBoard(t *testing.T) {
	tasks := []models.Task{mk("kept", 1, nil), mk("orphan1", 2, nil), mk("orphan2", 3, nil)}
	tasks[1].Status = "status-blocked"
	tasks[2].Status = "status-blocked"

	buckets := GroupByStatus(tasks, boardStatuses)
	total := 0
	for _, bucket := range buckets {
		total += len(bucket)
		for _, task := range bucket {
			assert.NotEqual(t, "status-blocked", task.Status)
		}
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"orphan1", "orphan2"}, taskIDs(Orphans(tasks, boardStatuses)))

	// A plain list view still shows them.
	assert.Len(t, DeriveView(tasks, models.Filters{}, models.SortDateAdded), 3)
}

func TestGroupingCompleteness(t *testing.T) {
	var tasks []models.Task
	for i, s := range []string{"status-todo", "status-done", "status-gone", "status-inprogress", "status-done"} {
		task := mk(string(rune('a'+i)), i, nil)
		task.Status = s
		tasks = append(tasks, task)
	}

	buckets := GroupByStatus(tasks, boardStatuses)
	assert.Len(t, buckets, len(boardStatuses))

	seen := map[string]int{}
	for _, bucket := range buckets {
		for _, task := range bucket {
			seen[task.ID]++
		}
	}
	for _, task := range tasks {
		if task.Status == "status-gone" {
			assert.Zero(t, seen[task.ID])
			continue
		}
		assert.Equal(t, 1, seen[task.ID], "task %s", task.ID)
	}
}

func TestColumnsFollowRegistryOrder(t *testing.T) {
	tasks := []models.Task{mk("a", 1, nil)}
	tasks[0].Status = "status-inprogress"

	columns := Columns(tasks, boardStatuses)
	require.Len(t, columns, 3)
	assert.Equal(t, "To Do", columns[0].Status.Label)
	assert.True(t, columns[0].IsEmpty)
	assert.Equal(t, 1, columns[1].Count)
	assert.False(t, columns[1].IsEmpty)
	assert.Equal(t, "Done", columns[2].Status.Label)
}

func TestComputeStats(t *testing.T) {
	tasks := []models.Task{mk("a", 1, nil), mk("b", 2, nil), mk("c", 3, nil)}
	tasks[1].Completed = true

	assert.Equal(t, Stats{Total: 3, Active: 2, Completed: 1}, ComputeStats(tasks))
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestCategories(t *testing.T) {
	tasks := []models.Task{mk("a", 1, nil), mk("b", 2, nil), mk("c", 3, nil), mk("d", 4, nil)}
	tasks[0].Category = "Work"
	tasks[1].Category = "Home"
	tasks[2].Category = "Work"

	assert.Equal(t, []string{"Home", "Work"}, Categories(tasks))
}

func TestSummarizeFilters(t *testing.T) {
	assert.False(t, SummarizeFilters(models.Filters{}, boardStatuses).Active)

	summary := SummarizeFilters(models.Filters{
		Statuses:   []string{"status-done", "status-removed"},
		Priorities: []models.Priority{models.PriorityHigh},
		SearchText: "milk",
	}, boardStatuses)

	require.True(t, summary.Active)
	assert.Equal(t, []FilterChip{
		{Kind: "status", Values: []string{"Done", "status-removed"}},
		{Kind: "priority", Values: []string{"High"}},
		{Kind: "search", Values: []string{"milk"}},
	}, summary.Chips)
}

func TestSummarizeFiltersIgnoresBlankSearch(t *testing.T) {
	filters := models.Filters{SearchText: "   \t"}

	summary := SummarizeFilters(filters, boardStatuses)
	assert.False(t, summary.Active)
	assert.Empty(t, summary.Chips)

	tasks := []models.Task{{ID: "a", Description: "Buy milk"}}
	assert.Len(t, Filter(tasks, filters), 1)

	summary = SummarizeFilters(models.Filters{SearchText: "  milk "}, boardStatuses)
	assert.Equal(t, []FilterChip{{Kind: "search", Values: []string{"milk"}}}, summary.Chips)
}
