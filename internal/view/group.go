package view

import "taskboard/internal/models"

// GroupByStatus partitions tasks into one bucket per status. Every status
// gets a bucket, empty or not. Tasks whose status is unknown are dropped
// from all buckets. Bucket order follows the order of tasks.
func GroupByStatus(tasks []models.Task, statuses []models.Status) map[string][]models.Task {
	buckets := make(map[string][]models.Task, len(statuses))
	for _, s := range statuses {
		buckets[s.ID] = []models.Task{}
	}
	for _, t := range tasks {
		if bucket, ok := buckets[t.Status]; ok {
			buckets[t.Status] = append(bucket, t)
		}
	}
	return buckets
}

// Column is one board column in status order.
type Column struct {
	Status  models.Status `json:"status"`
	Tasks   []models.Task `json:"tasks"`
	Count   int           `json:"count"`
	IsEmpty bool          `json:"isEmpty"`
}

// Columns lays the buckets of GroupByStatus out in registry order.
func Columns(tasks []models.Task, statuses []models.Status) []Column {
	buckets := GroupByStatus(tasks, statuses)
	columns := make([]Column, 0, len(statuses))
	for _, s := range statuses {
		bucket := buckets[s.ID]
		columns = append(columns, Column{
			Status:  s,
			Tasks:   bucket,
			Count:   len(bucket),
			IsEmpty: len(bucket) == 0,
		})
	}
	return columns
}

// Orphans returns the tasks whose status matches none of statuses.
func Orphans(tasks []models.Task, statuses []models.Status) []models.Task {
	known := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		known[s.ID] = struct{}{}
	}
	var orphans []models.Task
	for _, t := range tasks {
		if _, ok := known[t.Status]; !ok {
			orphans = append(orphans, t)
		}
	}
	return orphans
}
