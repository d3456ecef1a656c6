package driven

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// ContentSource retrieves raw content payloads.
// Implementations return errors satisfying domain.IsNotFound for absent
// resources and domain.IsRateLimited when throttled.
type ContentSource interface {
	// Get fetches the payload at path, relative to the source root.
	// An absolute URL is fetched as-is.
	Get(ctx context.Context, path string) ([]byte, error)
}

// DirectoryLister lists the items of a content group directory.
type DirectoryLister interface {
	// List returns the entries under path, relative to the content root.
	List(ctx context.Context, path string) ([]domain.ListingEntry, error)
}
