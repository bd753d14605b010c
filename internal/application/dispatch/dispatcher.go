// Package dispatch runs the periodic sweeps that turn deadline
// classifications into notifications: overdue alerts, upcoming-deadline
// warnings, and calendar reminders.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/buildmind/sitetrack/internal/domain/calendar"
	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Metrics is the dispatcher's view of the metrics registry. The nop variant
// backs tests.
type Metrics interface {
	ObserveSweep(sweep string, err error, elapsed time.Duration)
	CountClassified(kind, urgency string)
	CountSent(typ, channel string)
	CountDeliveryFailure(typ, channel string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveSweep(string, error, time.Duration) {}
func (NopMetrics) CountClassified(string, string)            {}
func (NopMetrics) CountSent(string, string)                  {}
func (NopMetrics) CountDeliveryFailure(string, string)       {}

// Options tunes the dispatcher's windows and de-duplication behavior.
type Options struct {
	// TaskUpcomingWindow bounds the upcoming sweep for tasks.
	TaskUpcomingWindow time.Duration

	// IssueWarningWindowDays bounds the upcoming sweep for issues.
	IssueWarningWindowDays int

	// StrictTransitions suppresses repeat notifications for an item whose
	// urgency has not escalated since the last delivery. When false every
	// sweep tick re-notifies.
	StrictTransitions bool
}

// Dispatcher owns the sweep logic. One instance runs per deployment,
// scheduled by the cron runner.
type Dispatcher struct {
	tasks      task.Repository
	issues     issue.Repository
	events     calendar.Repository
	ledger     notification.Ledger
	channels   []notification.Channel
	classifier schedule.Classifier
	opts       Options
	metrics    Metrics
	logger     logging.Logger
	now        func() time.Time
}

// New wires a dispatcher. A nil metrics falls back to NopMetrics.
func New(
	tasks task.Repository,
	issues issue.Repository,
	events calendar.Repository,
	ledger notification.Ledger,
	channels []notification.Channel,
	classifier schedule.Classifier,
	opts Options,
	metrics Metrics,
	logger logging.Logger,
) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Dispatcher{
		tasks:      tasks,
		issues:     issues,
		events:     events,
		ledger:     ledger,
		channels:   channels,
		classifier: classifier,
		opts:       opts,
		metrics:    metrics,
		logger:     logger.Named("dispatcher"),
		now:        time.Now,
	}
}

// OverdueSweep notifies owners of every non-terminal item whose due date has
// passed. Item failures are isolated; the sweep finishes the batch and
// reports the failure count.
func (d *Dispatcher) OverdueSweep(ctx context.Context) error {
	started := d.now()
	err := d.overdueSweep(ctx, started.UTC())
	d.metrics.ObserveSweep("overdue", err, time.Since(started))
	return err
}

func (d *Dispatcher) overdueSweep(ctx context.Context, now time.Time) error {
	var failures int

	tasks, err := d.tasks.FindOverdue(ctx, now)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := d.notifyItem(ctx, t, notification.TypeTaskOverdue, notification.RelatedTask, "task", taskRecipient(t), now); err != nil {
			failures++
			d.logger.Error("overdue task notification failed",
				logging.String("task_id", string(t.ID)), logging.Err(err))
		}
	}

	issues, err := d.issues.FindOverdue(ctx, now)
	if err != nil {
		return err
	}
	for _, is := range issues {
		if err := d.notifyItem(ctx, is, notification.TypeIssueOverdue, notification.RelatedIssue, "issue", issueRecipient(is), now); err != nil {
			failures++
			d.logger.Error("overdue issue notification failed",
				logging.String("issue_id", string(is.ID)), logging.Err(err))
		}
	}

	if failures > 0 {
		return fmt.Errorf("overdue sweep: %d item(s) failed", failures)
	}
	return nil
}

// UpcomingSweep warns about deadlines closing in: tasks inside the task
// window, issues inside the issue warning window.
func (d *Dispatcher) UpcomingSweep(ctx context.Context) error {
	started := d.now()
	err := d.upcomingSweep(ctx, started.UTC())
	d.metrics.ObserveSweep("upcoming", err, time.Since(started))
	return err
}

func (d *Dispatcher) upcomingSweep(ctx context.Context, now time.Time) error {
	var failures int

	tasks, err := d.tasks.FindDueBetween(ctx, now, now.Add(d.opts.TaskUpcomingWindow))
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := d.notifyItem(ctx, t, notification.TypeTaskUpcoming, notification.RelatedTask, "task", taskRecipient(t), now); err != nil {
			failures++
			d.logger.Error("upcoming task notification failed",
				logging.String("task_id", string(t.ID)), logging.Err(err))
		}
	}

	issueWindow := time.Duration(d.opts.IssueWarningWindowDays) * 24 * time.Hour
	issues, err := d.issues.FindDueBetween(ctx, now, now.Add(issueWindow))
	if err != nil {
		return err
	}
	for _, is := range issues {
		if err := d.notifyItem(ctx, is, notification.TypeIssueWarning, notification.RelatedIssue, "issue", issueRecipient(is), now); err != nil {
			failures++
			d.logger.Error("issue warning notification failed",
				logging.String("issue_id", string(is.ID)), logging.Err(err))
		}
	}

	if failures > 0 {
		return fmt.Errorf("upcoming sweep: %d item(s) failed", failures)
	}
	return nil
}

// taskHighRemaining is the hours-remaining cutoff that escalates an
// upcoming-task warning from medium to high.
const taskHighRemaining = 6 * time.Hour

// notifyItem classifies one item, consults the ledger gate, and fans the
// notification out to every channel.
func (d *Dispatcher) notifyItem(ctx context.Context, item schedule.Trackable, typ notification.Type, kind notification.RelatedKind, kindLabel string, recipient common.UserID, now time.Time) error {
	c := d.classifier.Classify(item, now)
	urgency := c.Urgency
	if typ == notification.TypeTaskUpcoming {
		urgency = upcomingTaskUrgency(item, now)
	}
	d.metrics.CountClassified(kindLabel, string(urgency))

	if d.opts.StrictTransitions {
		entry, err := d.ledger.Get(ctx, item.TrackingID(), typ, recipient)
		if err != nil {
			return err
		}
		if entry != nil && !entry.IsEscalation(urgency) {
			return nil
		}
	}

	n, err := notification.New(typ, recipient, subjectFor(typ, item), bodyFor(item, c, now))
	if err != nil {
		return err
	}
	n.Priority = urgency
	n.RelatedID = item.TrackingID()
	n.RelatedKind = kind
	n.Data = common.Metadata{
		"project_id": string(item.TrackingProject()),
		"priority":   string(item.TrackingPriority()),
	}
	if due := item.DueAt(); due != nil {
		n.Data["due_date"] = due.UTC().Format(time.RFC3339)
	}

	if err := d.deliver(ctx, n); err != nil {
		return err
	}

	return d.ledger.Put(ctx, &notification.LedgerEntry{
		RelatedID:   item.TrackingID(),
		Type:        typ,
		RecipientID: recipient,
		Urgency:     urgency,
		NotifiedAt:  now,
	})
}

// upcomingTaskUrgency grades an upcoming-task warning by the hours left:
// taskHighRemaining or less is high, anything further out in the window is
// medium. Day-granularity classification is too coarse here because every
// task inside the 24h window rounds up to one day.
func upcomingTaskUrgency(item schedule.Trackable, now time.Time) schedule.Urgency {
	if due := item.DueAt(); due != nil && due.Sub(now) <= taskHighRemaining {
		return schedule.UrgencyHigh
	}
	return schedule.UrgencyMedium
}

// deliver fans out to all channels. A single channel failure fails the item
// so it retries next tick; successful channels have already recorded their
// metric.
func (d *Dispatcher) deliver(ctx context.Context, n *notification.Notification) error {
	var firstErr error
	for _, ch := range d.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			d.metrics.CountDeliveryFailure(string(n.Type), ch.Name())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.metrics.CountSent(string(n.Type), ch.Name())
	}
	return firstErr
}

// ReminderSweep delivers calendar reminders whose window opened, stamping
// each event so it fires once.
func (d *Dispatcher) ReminderSweep(ctx context.Context) error {
	started := d.now()
	err := d.reminderSweep(ctx, started.UTC())
	d.metrics.ObserveSweep("reminder", err, time.Since(started))
	return err
}

func (d *Dispatcher) reminderSweep(ctx context.Context, now time.Time) error {
	events, err := d.events.FindPendingReminders(ctx, now)
	if err != nil {
		return err
	}

	var failures int
	for _, ev := range events {
		if err := d.remind(ctx, ev, now); err != nil {
			failures++
			d.logger.Error("calendar reminder failed",
				logging.String("event_id", string(ev.ID)), logging.Err(err))
		}
	}
	if failures > 0 {
		return fmt.Errorf("reminder sweep: %d event(s) failed", failures)
	}
	return nil
}

func (d *Dispatcher) remind(ctx context.Context, ev *calendar.Event, now time.Time) error {
	recipients := ev.Attendees
	if len(recipients) == 0 {
		recipients = []common.UserID{ev.CreatedBy}
	}

	title := "Upcoming: " + ev.Title
	body := fmt.Sprintf("%s starts at %s.", ev.Title, ev.StartsAt.Format(time.RFC1123))
	if ev.Location != "" {
		body = fmt.Sprintf("%s starts at %s (%s).", ev.Title, ev.StartsAt.Format(time.RFC1123), ev.Location)
	}

	var firstErr error
	for _, recipient := range recipients {
		n, err := notification.New(notification.TypeCalendarReminder, recipient, title, body)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n.RelatedID = ev.ID
		n.RelatedKind = notification.RelatedEvent
		if err := d.deliver(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}

	return d.events.MarkReminded(ctx, ev.ID, now)
}

// taskRecipient picks who hears about a task deadline: the assignee when
// set, otherwise the creator.
func taskRecipient(t *task.Task) common.UserID {
	if t.AssigneeID != nil {
		return *t.AssigneeID
	}
	return t.CreatedBy
}

// issueRecipient mirrors taskRecipient for issues, falling back to the
// reporter.
func issueRecipient(is *issue.Issue) common.UserID {
	if is.AssigneeID != nil {
		return *is.AssigneeID
	}
	return is.ReportedBy
}

func subjectFor(typ notification.Type, item schedule.Trackable) string {
	switch typ {
	case notification.TypeTaskOverdue:
		return "Task overdue: " + item.TrackingTitle()
	case notification.TypeTaskUpcoming:
		return "Task due soon: " + item.TrackingTitle()
	case notification.TypeIssueOverdue:
		return "Issue overdue: " + item.TrackingTitle()
	case notification.TypeIssueWarning:
		return "Issue due soon: " + item.TrackingTitle()
	}
	return item.TrackingTitle()
}

// bodyFor renders the message: title, project, priority, due date, and the
// overdue or remaining span. Remaining time is given in hours once the
// deadline is under a day away.
func bodyFor(item schedule.Trackable, c schedule.Classification, now time.Time) string {
	due := item.DueAt()
	if due == nil {
		return fmt.Sprintf("%q needs attention.", item.TrackingTitle())
	}
	label := fmt.Sprintf("%q (project %s, %s priority, due %s)",
		item.TrackingTitle(), item.TrackingProject(), item.TrackingPriority(), due.Format("Jan 2, 2006"))
	switch {
	case c.IsOverdue:
		return fmt.Sprintf("%s is %d day(s) overdue.", label, c.DaysOverdue)
	case due.Sub(now) < 24*time.Hour:
		return fmt.Sprintf("%s is due in %d hour(s).", label, ceilHours(due.Sub(now)))
	case c.DaysUntilDue != nil:
		return fmt.Sprintf("%s is due in %d day(s).", label, *c.DaysUntilDue)
	}
	return fmt.Sprintf("%s needs attention.", label)
}

// ceilHours rounds a positive duration up to whole hours.
func ceilHours(d time.Duration) int {
	return int((d + time.Hour - 1) / time.Hour)
}
