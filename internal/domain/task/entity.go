// Package task defines the Task aggregate and its repository contract.
// A task is a unit of site work scoped to a project, optionally assigned and
// optionally deadlined; its due-date behavior is delegated entirely to the
// schedule package.
package task

import (
	"strings"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// workflowOrder fixes the presentation sequence of task statuses.
var workflowOrder = map[Status]int{
	StatusTodo:       0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusCancelled:  3,
}

// terminalStatuses is the subset after which a task can never become overdue
// or warning.
var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusCancelled: true,
}

// ParseStatus maps a raw string to a Status, reporting whether it is known.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := workflowOrder[st]
	return st, ok
}

// IsTerminal reports whether s is a terminal status.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// Task is a unit of work within a project.
type Task struct {
	ID          common.ID         `json:"id"`
	ProjectID   common.ID         `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Status      Status            `json:"status"`
	Priority    schedule.Priority `json:"priority"`
	AssigneeID  *common.UserID    `json:"assignee_id,omitempty"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Progress    int               `json:"progress"`
	CreatedBy   common.UserID     `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// New creates a Task with validation.
//
// Business rules:
//   - Title must not be blank.
//   - ProjectID and CreatedBy are required.
//   - Priority defaults to medium, status to todo.
func New(projectID common.ID, title string, createdBy common.UserID) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidParam("task title must not be empty")
	}
	if projectID == "" {
		return nil, errors.InvalidParam("project id is required")
	}
	if createdBy == "" {
		return nil, errors.InvalidParam("creator id is required")
	}

	now := time.Now().UTC()
	return &Task{
		ID:        common.NewID(),
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
		Status:    StatusTodo,
		Priority:  schedule.PriorityMedium,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// schedule.Trackable implementation
// ─────────────────────────────────────────────────────────────────────────────

func (t *Task) TrackingID() common.ID { return t.ID }

func (t *Task) TrackingTitle() string { return t.Title }

func (t *Task) TrackingProject() common.ID { return t.ProjectID }

func (t *Task) DueAt() *time.Time { return t.DueDate }

func (t *Task) TrackingPriority() schedule.Priority { return t.Priority }

func (t *Task) WorkflowRank() int {
	if rank, ok := workflowOrder[t.Status]; ok {
		return rank
	}
	return schedule.WorkflowRankUnknown
}

func (t *Task) IsTerminal() bool { return t.Status.IsTerminal() }

// ─────────────────────────────────────────────────────────────────────────────
// Command methods
// ─────────────────────────────────────────────────────────────────────────────

// Complete marks the task completed. Completing an already-terminal task is
// rejected so the caller can surface the conflict.
func (t *Task) Complete(now time.Time) error {
	if t.Status.IsTerminal() {
		return errors.New(errors.CodeTaskAlreadyClosed, "task is already closed").
			WithDetail("status=" + string(t.Status))
	}
	t.Status = StatusCompleted
	t.Progress = 100
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// Cancel closes the task without completion.
func (t *Task) Cancel(now time.Time) error {
	if t.Status.IsTerminal() {
		return errors.New(errors.CodeTaskAlreadyClosed, "task is already closed").
			WithDetail("status=" + string(t.Status))
	}
	t.Status = StatusCancelled
	t.UpdatedAt = now
	return nil
}

// Reassign moves the task to a new assignee; a nil assignee unassigns it.
func (t *Task) Reassign(assignee *common.UserID, now time.Time) {
	t.AssigneeID = assignee
	t.UpdatedAt = now
}

// UpdateProgress sets the completion percentage.
func (t *Task) UpdateProgress(progress int, now time.Time) error {
	if progress < 0 || progress > 100 {
		return errors.InvalidParam("progress must be between 0 and 100")
	}
	if t.Status.IsTerminal() {
		return errors.New(errors.CodeTaskAlreadyClosed, "cannot update progress of a closed task")
	}
	t.Progress = progress
	if progress > 0 && t.Status == StatusTodo {
		t.Status = StatusInProgress
	}
	t.UpdatedAt = now
	return nil
}
