package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestHashPayload(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashPayload(nil))
	assert.Equal(t, HashPayload([]byte("a")), HashPayload([]byte("a")))
	assert.NotEqual(t, HashPayload([]byte(`{"a":1}`)), HashPayload([]byte(`{ "a": 1 }`)))
}

func TestHashNamed_IgnoresOrder(t *testing.T) {
	a := HashNamed(map[string][]byte{"a.json": []byte("1"), "b.json": []byte("2")})
	b := HashNamed(map[string][]byte{"b.json": []byte("2"), "a.json": []byte("1")})
	assert.Equal(t, a, b)

	renamed := HashNamed(map[string][]byte{"a.json": []byte("1"), "c.json": []byte("2")})
	assert.NotEqual(t, a, renamed)
}

func TestHashKey(t *testing.T) {
	assert.Equal(t, "hash/de/units", HashKey("de", "units"))
}

func TestChangeDetector_HasChanged(t *testing.T) {
	ctx := context.Background()
	meta := memory.NewMetadataStore()
	d := NewChangeDetector(meta)
	key := HashKey("en", "items")
	h := d.Hash([]byte("payload"))

	changed, err := d.HasChanged(ctx, key, h)
	require.NoError(t, err)
	assert.True(t, changed, "nothing committed yet")
	assert.Zero(t, meta.Keys(), "HasChanged must not write")

	require.NoError(t, meta.PutMeta(ctx, key, h))
	changed, err = d.HasChanged(ctx, key, h)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = d.HasChanged(ctx, key, d.Hash([]byte("other")))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestChangeDetector_StorageFailure(t *testing.T) {
	meta := memory.NewMetadataStore()
	meta.FailOn("GetMeta", errors.New("disk gone"))

	_, err := NewChangeDetector(meta).HasChanged(context.Background(), "hash/en/items", "x")
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))
}
