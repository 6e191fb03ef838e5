package messaging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	RoutingCallCompleted     = "call.completed"
	RoutingAnalysisRequested = "analysis.requested"
)

// Event is the envelope every published message uses.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct {
	log *logrus.Logger
}

// NewNoopPublisher drops events. It backs deployments without a broker.
func NewNoopPublisher(log *logrus.Logger) Publisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) Publish(_ context.Context, event Event) error {
	p.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Debug("No broker configured, event dropped")
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
