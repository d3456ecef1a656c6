package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// HashPayload returns the hex SHA-256 digest of a raw payload.
// Byte-identical payloads always hash identically; re-serialised but
// equivalent payloads may not.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// HashNamed digests a set of named payloads independently of their order.
func HashNamed(payloads map[string][]byte) string {
	names := make([]string, 0, len(payloads))
	for name := range payloads {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s\n", name, HashPayload(payloads[name]))
	}
	return HashPayload([]byte(b.String()))
}

// HashKey is the metadata key holding a resource's last committed hash.
func HashKey(locale, resource string) string {
	return "hash/" + locale + "/" + resource
}

// ChangeDetector compares payload hashes against the last committed ones.
type ChangeDetector struct {
	meta driven.MetadataStore
}

// NewChangeDetector creates a change detector over meta.
func NewChangeDetector(meta driven.MetadataStore) *ChangeDetector {
	return &ChangeDetector{meta: meta}
}

// Hash returns the hex SHA-256 digest of payload.
func (d *ChangeDetector) Hash(payload []byte) string {
	return HashPayload(payload)
}

// HasChanged reports whether hash differs from the one committed under key.
// It is true when no hash has been committed. It never writes.
func (d *ChangeDetector) HasChanged(ctx context.Context, key, hash string) (bool, error) {
	prev, found, err := d.Stored(ctx, key)
	if err != nil {
		return false, err
	}
	return !found || prev != hash, nil
}

// Stored returns the hash committed under key.
func (d *ChangeDetector) Stored(ctx context.Context, key string) (string, bool, error) {
	var prev string
	found, err := d.meta.GetMeta(ctx, key, &prev)
	if err != nil {
		return "", false, fmt.Errorf("read hash %s: %w", key, err)
	}
	return prev, found, nil
}
