package driven

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// MetadataStore persists arbitrary JSON-serialisable values by key.
// All errors are domain.StorageError.
type MetadataStore interface {
	// GetMeta decodes the value stored under key into dst.
	// Returns false and no error if the key does not exist.
	GetMeta(ctx context.Context, key string, dst any) (bool, error)

	// PutMeta stores value under key, replacing any previous value.
	PutMeta(ctx context.Context, key string, value any) error

	// PutMetaBatch stores every value in one transaction.
	PutMetaBatch(ctx context.Context, values map[string]any) error

	// DeleteMeta removes key. Deleting a missing key is not an error.
	DeleteMeta(ctx context.Context, key string) error
}

// EntityStore persists domain entities in one table per kind.
// Each Replace call clears the table and writes the full contents in a
// single transaction, so readers never see a partially written table.
type EntityStore interface {
	// ReplaceUnits replaces every composite unit.
	ReplaceUnits(ctx context.Context, units []domain.Unit) error

	// ReplaceItems replaces every universal item.
	ReplaceItems(ctx context.Context, items []domain.UniversalItem) error

	// ReplaceRules replaces every standalone rule.
	ReplaceRules(ctx context.Context, rules []domain.Rule) error

	// ReplaceActions replaces the action catalog.
	ReplaceActions(ctx context.Context, actions []domain.Action) error

	// ReplaceOperations replaces every operation.
	ReplaceOperations(ctx context.Context, ops []domain.Operation) error

	// ReplaceArticles replaces every sequence step and article.
	ReplaceArticles(ctx context.Context, articles []domain.Article) error

	// ReplaceCore replaces rules, actions and operations in one transaction.
	ReplaceCore(ctx context.Context, bundle domain.CoreBundle) error

	// LoadEntities reads every table, ordered by id.
	LoadEntities(ctx context.Context) (*domain.EntityBatch, error)

	// ClearEntities empties every entity table in one transaction.
	ClearEntities(ctx context.Context) error
}

// IndexStore holds the serialised search index under one fixed key.
type IndexStore interface {
	// SaveArtifact replaces the stored artifact.
	SaveArtifact(ctx context.Context, data []byte) error

	// LoadArtifact returns the stored artifact.
	// Returns false and no error if none has been saved.
	LoadArtifact(ctx context.Context) ([]byte, bool, error)
}
