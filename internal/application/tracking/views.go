package tracking

import (
	"time"

	"github.com/buildmind/sitetrack/internal/domain/issue"
	"github.com/buildmind/sitetrack/internal/domain/schedule"
	"github.com/buildmind/sitetrack/internal/domain/task"
)

// AnnotatedTask is a task together with its deadline classification as of
// the moment the list was served.
type AnnotatedTask struct {
	*task.Task
	Deadline schedule.Classification `json:"deadline"`
}

// AnnotatedIssue is an issue together with its deadline classification.
type AnnotatedIssue struct {
	*issue.Issue
	Deadline schedule.Classification `json:"deadline"`
}

func annotateTasks(items []*task.Task, c schedule.Classifier, now time.Time) []AnnotatedTask {
	out := make([]AnnotatedTask, len(items))
	for i, t := range items {
		out[i] = AnnotatedTask{Task: t, Deadline: c.Classify(t, now)}
	}
	return out
}

func annotateIssues(items []*issue.Issue, c schedule.Classifier, now time.Time) []AnnotatedIssue {
	out := make([]AnnotatedIssue, len(items))
	for i, is := range items {
		out[i] = AnnotatedIssue{Issue: is, Deadline: c.Classify(is, now)}
	}
	return out
}
