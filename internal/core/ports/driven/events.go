package driven

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// EventPublisher delivers "content updated" notifications to collaborators.
type EventPublisher interface {
	// Publish notifies subscribers. It must not block on slow subscribers.
	Publish(ctx context.Context, event domain.ContentUpdated)
}
