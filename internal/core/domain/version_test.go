package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionRecord_HistoryBound(t *testing.T) {
	var r VersionRecord
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 15; i++ {
		r.Record(fmt.Sprintf("v%d", i), "", base.Add(time.Duration(i)*time.Minute))
	}

	assert.Equal(t, "v15", r.CurrentVersion)
	require.Len(t, r.History, MaxHistory)
	assert.Equal(t, "v14", r.History[0].Version)
	assert.Equal(t, "v5", r.History[MaxHistory-1].Version)
	for i := 1; i < len(r.History); i++ {
		assert.True(t, r.History[i-1].Timestamp.After(r.History[i].Timestamp), "history must be newest first")
	}
}

func TestVersionRecord_SameVersionDoesNotPush(t *testing.T) {
	var r VersionRecord
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", r.Record("v1", "abc", t0))
	assert.Equal(t, "v1", r.Record("v1", "abc", t0.Add(time.Hour)))

	assert.Empty(t, r.History)
	assert.Equal(t, t0.Add(time.Hour), r.LastUpdateTime)

	assert.Equal(t, "v1", r.Record("v2", "def", t0.Add(2*time.Hour)))
	require.Len(t, r.History, 1)
	assert.Equal(t, VersionEntry{Version: "v1", Timestamp: t0.Add(2 * time.Hour), Commit: "abc"}, r.History[0])
}

func TestVersionRecord_HistoryKeepsEachVersionsCommit(t *testing.T) {
	var r VersionRecord
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r.Record("v1", "abc", t0)
	r.Record("v2", "def", t0.Add(time.Hour))
	// Only the items changed, so no new manifest commit is known.
	r.Record("v3", "", t0.Add(2*time.Hour))

	assert.Equal(t, "def", r.Commit)
	require.Len(t, r.History, 2)
	assert.Equal(t, "v2", r.History[0].Version)
	assert.Equal(t, "def", r.History[0].Commit)
	assert.Equal(t, "v1", r.History[1].Version)
	assert.Equal(t, "abc", r.History[1].Commit)
}

func TestVersionRecord_UnseenChanges(t *testing.T) {
	now := time.Now()
	var r VersionRecord
	assert.Equal(t, 0, r.UnseenChanges())

	r.Record("v1", "", now)
	assert.Equal(t, 1, r.UnseenChanges())

	r.AcknowledgedVersion = "v1"
	assert.Equal(t, 0, r.UnseenChanges())

	r.Record("v2", "", now)
	r.Record("v3", "", now)
	assert.Equal(t, 2, r.UnseenChanges())

	r.AcknowledgedVersion = "gone"
	assert.Equal(t, 3, r.UnseenChanges())
}

func TestVersionRecord_InfoCopiesHistory(t *testing.T) {
	var r VersionRecord
	r.Record("v1", "", time.Now())
	r.Record("v2", "", time.Now())

	info := r.Info()
	info.History[0].Version = "mutated"

	assert.Equal(t, "v1", r.History[0].Version)
	assert.Equal(t, "v2", info.CurrentVersion)
}

func TestComposeVersion(t *testing.T) {
	units := "9f3ab2c1d4e5f60718293a4b5c6d7e8f"
	items := "0123456789abcdef"

	assert.Equal(t, "2024.10.1+9f3ab2c1+01234567", ComposeVersion("2024.10.1", units, items))
	assert.Equal(t, "2024.10.1+9f3ab2c1", ComposeVersion("2024.10.1", units, ""))
	assert.Equal(t, "01234567", ComposeVersion("", "", items))
	assert.Equal(t, "", ComposeVersion("", "", ""))
}
