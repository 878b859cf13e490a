// Package drag turns a board drag-and-drop gesture into at most one task
// status change.
//
// A gesture is modelled as a two state machine:
//
//	Idle --start--> Dragging --drop on status--> Idle  (one status update)
//	                Dragging --drop elsewhere--> Idle  (no update)
//	                Dragging --cancel-------->   Idle  (no update)
//
// Transition is pure; Controller wraps it with the task store side effect.
package drag

import (
	"context"
	"log/slog"
	"sync"

	"taskboard/internal/models"
)

// State of a gesture.
type State int

const (
	Idle State = iota
	Dragging
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventKind enumerates gesture events.
type EventKind int

const (
	Start EventKind = iota
	Over
	Drop
	Cancel
)

// Event is a single gesture input. TaskID is set on Start, OverID on Over and
// Drop. An empty OverID on Drop means the pointer was released over nothing.
type Event struct {
	Kind   EventKind
	TaskID string
	OverID string
}

// Snapshot is the full machine state.
type Snapshot struct {
	State  State  `json:"state"`
	TaskID string `json:"taskId,omitempty"`
	OverID string `json:"overId,omitempty"`
}

// Move is the status change a completed gesture asks for.
type Move struct {
	TaskID   string `json:"taskId"`
	StatusID string `json:"statusId"`
}

// Transition computes the next state. isStatus tells whether a drop target
// id names a known status. A non-nil Move is returned only by a drop on a
// status while dragging.
func Transition(s Snapshot, e Event, isStatus func(id string) bool) (Snapshot, *Move) {
	idle := Snapshot{State: Idle}

	switch e.Kind {
	case Start:
		if e.TaskID == "" {
			return s, nil
		}
		return Snapshot{State: Dragging, TaskID: e.TaskID}, nil
	case Over:
		if s.State != Dragging {
			return s, nil
		}
		s.OverID = e.OverID
		return s, nil
	case Drop:
		if s.State != Dragging {
			return idle, nil
		}
		if e.OverID == "" || isStatus == nil || !isStatus(e.OverID) {
			return idle, nil
		}
		return idle, &Move{TaskID: s.TaskID, StatusID: e.OverID}
	case Cancel:
		return idle, nil
	}
	return s, nil
}

// Outcome labels how a gesture ended.
type Outcome string

const (
	OutcomeMoved         Outcome = "moved"
	OutcomeNoTarget      Outcome = "no_target"
	OutcomeInvalidTarget Outcome = "invalid_target"
	OutcomeCancelled     Outcome = "cancelled"
	OutcomeNotDragging   Outcome = "not_dragging"
	OutcomeTaskNotFound  Outcome = "task_not_found"
)

// Result reports what a Drop or Cancel did.
type Result struct {
	Outcome Outcome      `json:"outcome"`
	Move    *Move        `json:"move,omitempty"`
	Task    *models.Task `json:"task,omitempty"`
}

// TaskUpdater is the task store operation a drop performs.
type TaskUpdater interface {
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool)
}

// StatusChecker validates drop targets.
type StatusChecker interface {
	Exists(id string) bool
}

// Controller holds one gesture at a time.
type Controller struct {
	mu       sync.Mutex
	state    Snapshot
	tasks    TaskUpdater
	statuses StatusChecker
	logger   *slog.Logger
	observe  func(outcome string)
}

// NewController builds a controller in the Idle state. observe, when not
// nil, is told the outcome of every finished gesture.
func NewController(tasks TaskUpdater, statuses StatusChecker, logger *slog.Logger, observe func(outcome string)) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		state:    Snapshot{State: Idle},
		tasks:    tasks,
		statuses: statuses,
		logger:   logger.With(slog.String("component", "drag")),
		observe:  observe,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins dragging taskID. An empty id is ignored.
func (c *Controller) Start(taskID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, _ = Transition(c.state, Event{Kind: Start, TaskID: taskID}, c.statuses.Exists)
	return c.state
}

// Over records the target currently under the pointer.
func (c *Controller) Over(overID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, _ = Transition(c.state, Event{Kind: Over, OverID: overID}, c.statuses.Exists)
	return c.state
}

// Drop ends the gesture over overID and performs at most one status update.
func (c *Controller) Drop(ctx context.Context, overID string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state
	next, move := Transition(before, Event{Kind: Drop, OverID: overID}, c.statuses.Exists)
	c.state = next

	var res Result
	switch {
	case before.State != Dragging:
		res = Result{Outcome: OutcomeNotDragging}
	case move != nil:
		status := move.StatusID
		task, ok := c.tasks.Update(ctx, move.TaskID, models.TaskPatch{Status: &status})
		if !ok {
			res = Result{Outcome: OutcomeTaskNotFound}
			break
		}
		res = Result{Outcome: OutcomeMoved, Move: move, Task: &task}
	case overID == "":
		res = Result{Outcome: OutcomeNoTarget}
	default:
		res = Result{Outcome: OutcomeInvalidTarget}
	}

	c.finish(before, res.Outcome)
	return res
}

// Cancel abandons the gesture without any update.
func (c *Controller) Cancel() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state
	c.state, _ = Transition(before, Event{Kind: Cancel}, c.statuses.Exists)

	outcome := OutcomeCancelled
	if before.State != Dragging {
		outcome = OutcomeNotDragging
	}
	c.finish(before, outcome)
	return Result{Outcome: outcome}
}

func (c *Controller) finish(before Snapshot, outcome Outcome) {
	c.logger.Debug("drag finished", slog.String("task", before.TaskID), slog.String("outcome", string(outcome)))
	if c.observe != nil && outcome != OutcomeNotDragging {
		c.observe(string(outcome))
	}
}
