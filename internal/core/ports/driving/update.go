package driving

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// UpdateService synchronises the local dataset with the remote release.
type UpdateService interface {
	// CheckForUpdates fetches, compares and persists every resource for locale,
	// rebuilding the index when anything changed. Per-resource failures are
	// reported in SyncResult.Warning. Only storage failures return an error.
	CheckForUpdates(ctx context.Context, locale string) (domain.SyncResult, error)

	// ForceUpdateAndReindex runs the same pipeline treating every resource as
	// changed. The first failure aborts the pass and is reported in the result.
	ForceUpdateAndReindex(ctx context.Context, locale string) domain.ForceResult
}
