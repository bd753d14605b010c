package kafka

import (
	"context"
	"time"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// Topic names, namespaced by the producer's prefix.
const (
	TopicTaskEvents  = "tasks"
	TopicIssueEvents = "issues"
)

// Event actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCompleted = "completed"
	ActionResolved  = "resolved"
	ActionDeleted   = "deleted"
)

// ChangeEvent is the wire payload for an item mutation.
type ChangeEvent struct {
	Kind      string        `json:"kind"`
	Action    string        `json:"action"`
	ID        common.ID     `json:"id"`
	ProjectID common.ID     `json:"project_id"`
	ActorID   common.UserID `json:"actor_id"`
	At        time.Time     `json:"at"`
}

// EventPublisher is what the application layer sees. The no-op variant backs
// deployments that run without a broker.
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, ev ChangeEvent)
	PublishIssueEvent(ctx context.Context, ev ChangeEvent)
}

// AsyncPublisher delivers events through the Kafka producer. Publishing is
// best effort: a broker outage is logged and never fails the mutation that
// produced the event.
type AsyncPublisher struct {
	producer *Producer
	logger   logging.Logger
}

// NewAsyncPublisher wires a publisher onto the producer.
func NewAsyncPublisher(producer *Producer, logger logging.Logger) *AsyncPublisher {
	return &AsyncPublisher{producer: producer, logger: logger.Named("event_publisher")}
}

func (p *AsyncPublisher) PublishTaskEvent(ctx context.Context, ev ChangeEvent) {
	p.publish(ctx, TopicTaskEvents, ev)
}

func (p *AsyncPublisher) PublishIssueEvent(ctx context.Context, ev ChangeEvent) {
	p.publish(ctx, TopicIssueEvents, ev)
}

func (p *AsyncPublisher) publish(ctx context.Context, topic string, ev ChangeEvent) {
	if err := p.producer.Publish(ctx, topic, string(ev.ID), ev); err != nil {
		p.logger.Warn("event publish failed",
			logging.String("topic", topic),
			logging.String("action", ev.Action),
			logging.String("id", string(ev.ID)),
			logging.Err(err),
		)
	}
}

// NopPublisher drops events; used when kafka.enabled is false.
type NopPublisher struct{}

func (NopPublisher) PublishTaskEvent(context.Context, ChangeEvent)  {}
func (NopPublisher) PublishIssueEvent(context.Context, ChangeEvent) {}
