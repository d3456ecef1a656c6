package driving

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// VersionService exposes the content version record to display surfaces.
type VersionService interface {
	// GetInfo returns the current version, timestamps and history.
	GetInfo(ctx context.Context) (domain.VersionInfo, error)

	// Acknowledge marks the current version as seen, resetting UnseenChanges.
	Acknowledge(ctx context.Context) error
}
