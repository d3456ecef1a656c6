package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
)

// Ensure VersionTracker implements the interface.
var _ driving.VersionService = (*VersionTracker)(nil)

const metaKeyVersion = "version"

// VersionTracker records the composite content version and its history.
type VersionTracker struct {
	meta driven.MetadataStore
	now  func() time.Time
	mu   sync.Mutex
}

// NewVersionTracker creates a tracker over meta.
func NewVersionTracker(meta driven.MetadataStore) *VersionTracker {
	return &VersionTracker{meta: meta, now: time.Now}
}

func (t *VersionTracker) load(ctx context.Context) (*domain.VersionRecord, error) {
	var rec domain.VersionRecord
	if _, err := t.meta.GetMeta(ctx, metaKeyVersion, &rec); err != nil {
		return nil, fmt.Errorf("read version record: %w", err)
	}
	return &rec, nil
}

// RecordVersion overwrites the current version and update time, pushing the
// previous version onto the history when it differs. It returns the previous version.
func (t *VersionTracker) RecordVersion(ctx context.Context, version, commit string) (string, error) {
	return t.commit(ctx, version, commit, nil)
}

// commit writes staged metadata together with the version record in one
// batch. With an empty version only LastCheckTime changes.
func (t *VersionTracker) commit(ctx context.Context, version, commit string, staged map[string]any) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.load(ctx)
	if err != nil {
		return "", err
	}
	now := t.now()
	previous := rec.CurrentVersion
	if version != "" {
		previous = rec.Record(version, commit, now)
	}
	rec.LastCheckTime = now

	batch := make(map[string]any, len(staged)+1)
	for k, v := range staged {
		batch[k] = v
	}
	batch[metaKeyVersion] = rec
	if err := t.meta.PutMetaBatch(ctx, batch); err != nil {
		return "", fmt.Errorf("write version record: %w", err)
	}
	return previous, nil
}

// Touch records that an update check ran, without changing the version.
func (t *VersionTracker) Touch(ctx context.Context) error {
	_, err := t.commit(ctx, "", "", nil)
	return err
}

// GetInfo returns the version read model. It never writes.
func (t *VersionTracker) GetInfo(ctx context.Context) (domain.VersionInfo, error) {
	rec, err := t.load(ctx)
	if err != nil {
		return domain.VersionInfo{}, err
	}
	return rec.Info(), nil
}

// Acknowledge marks the current version as seen.
func (t *VersionTracker) Acknowledge(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.load(ctx)
	if err != nil {
		return err
	}
	rec.AcknowledgedVersion = rec.CurrentVersion
	if err := t.meta.PutMeta(ctx, metaKeyVersion, rec); err != nil {
		return fmt.Errorf("write version record: %w", err)
	}
	return nil
}
