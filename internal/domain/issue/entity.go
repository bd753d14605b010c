// Package issue defines the Issue aggregate and its repository contract.
// Issues track defects and blockers found on site; unlike tasks they carry a
// human-readable code (ISS-0042) and a three-level priority scale.
package issue

import (
	"fmt"
	"strings"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Status is the workflow state of an issue.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

var workflowOrder = map[Status]int{
	StatusNew:        0,
	StatusInProgress: 1,
	StatusResolved:   2,
	StatusClosed:     3,
}

var terminalStatuses = map[Status]bool{
	StatusResolved: true,
	StatusClosed:   true,
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

// Issue is a tracked defect or blocker within a project.
type Issue struct {
	ID          common.ID         `json:"id"`
	ProjectID   common.ID         `json:"project_id"`
	Code        string            `json:"code"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      Status            `json:"status"`
	Priority    schedule.Priority `json:"priority"`
	AssigneeID  *common.UserID    `json:"assignee_id,omitempty"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Resolution  string            `json:"resolution,omitempty"`
	ReportedBy  common.UserID     `json:"reported_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
}

// FormatCode renders the sequential issue code for display (ISS-0042).
func FormatCode(seq int64) string {
	return fmt.Sprintf("ISS-%04d", seq)
}

// New creates an Issue with validation.
//
// Business rules:
//   - Title must not be blank.
//   - ProjectID and ReportedBy are required.
//   - Issues never carry the urgent priority; it degrades to high.
func New(projectID common.ID, title string, reportedBy common.UserID) (*Issue, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidParam("issue title must not be empty")
	}
	if projectID == "" {
		return nil, errors.InvalidParam("project id is required")
	}
	if reportedBy == "" {
		return nil, errors.InvalidParam("reporter id is required")
	}

	now := time.Now().UTC()
	return &Issue{
		ID:         common.NewID(),
		ProjectID:  projectID,
		Title:      strings.TrimSpace(title),
		Status:     StatusNew,
		Priority:   schedule.PriorityMedium,
		ReportedBy: reportedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetPriority applies a priority, clamping urgent down to high since issues
// use the three-level scale.
func (i *Issue) SetPriority(p schedule.Priority) {
	if p == schedule.PriorityUrgent {
		p = schedule.PriorityHigh
	}
	i.Priority = p
}

// ─────────────────────────────────────────────────────────────────────────────
// schedule.Trackable implementation
// ─────────────────────────────────────────────────────────────────────────────

func (i *Issue) TrackingID() common.ID { return i.ID }

func (i *Issue) TrackingTitle() string { return i.Title }

func (i *Issue) TrackingProject() common.ID { return i.ProjectID }

func (i *Issue) DueAt() *time.Time { return i.DueDate }

func (i *Issue) TrackingPriority() schedule.Priority { return i.Priority }

func (i *Issue) WorkflowRank() int {
	if rank, ok := workflowOrder[i.Status]; ok {
		return rank
	}
	return schedule.WorkflowRankUnknown
}

func (i *Issue) IsTerminal() bool { return i.Status.IsTerminal() }

// ─────────────────────────────────────────────────────────────────────────────
// Command methods
// ─────────────────────────────────────────────────────────────────────────────

// Start moves a new issue into in_progress.
func (i *Issue) Start(now time.Time) error {
	if i.Status.IsTerminal() {
		return errors.New(errors.CodeIssueAlreadyClosed, "issue is already closed")
	}
	i.Status = StatusInProgress
	i.UpdatedAt = now
	return nil
}

// Resolve closes the issue with a resolution note.
func (i *Issue) Resolve(resolution string, now time.Time) error {
	if i.Status.IsTerminal() {
		return errors.New(errors.CodeIssueAlreadyClosed, "issue is already closed")
	}
	if strings.TrimSpace(resolution) == "" {
		return errors.InvalidParam("resolution must not be empty")
	}
	i.Status = StatusResolved
	i.Resolution = strings.TrimSpace(resolution)
	i.ResolvedAt = &now
	i.UpdatedAt = now
	return nil
}

// Close finalizes a resolved issue; closing an unresolved issue is allowed
// and records no resolution.
func (i *Issue) Close(now time.Time) error {
	if i.Status == StatusClosed {
		return errors.New(errors.CodeIssueAlreadyClosed, "issue is already closed")
	}
	i.Status = StatusClosed
	i.UpdatedAt = now
	return nil
}

// Reopen returns a terminal issue to in_progress, clearing its resolution.
func (i *Issue) Reopen(now time.Time) error {
	if !i.Status.IsTerminal() {
		return errors.InvalidState("only resolved or closed issues can be reopened")
	}
	i.Status = StatusInProgress
	i.Resolution = ""
	i.ResolvedAt = nil
	i.UpdatedAt = now
	return nil
}
