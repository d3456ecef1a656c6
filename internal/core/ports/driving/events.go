package driving

import "github.com/custodia-labs/rulebook/internal/core/domain"

// EventSubscriber lets presentation surfaces follow content updates.
type EventSubscriber interface {
	// Subscribe returns a channel of updates and a function that ends the
	// subscription and closes the channel.
	Subscribe() (<-chan domain.ContentUpdated, func())
}
