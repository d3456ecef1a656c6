package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_Status(t *testing.T) {
	for _, args := range [][]string{{"index"}, {"index", "status"}} {
		t.Run(args[len(args)-1], func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()

			out, err := execute(t, args...)

			require.NoError(t, err)
			assert.Contains(t, out, "State:     ready")
			assert.Contains(t, out, "Documents: 12")
			assert.Contains(t, out, "Terms:     80")
		})
	}
}

func TestIndexCmd_StatusWarnsOnEnsureError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.ensureErr = errors.New("no content")

	out, err := execute(t, "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: no content")
}

func TestIndexCmd_Rebuild(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "rebuild")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.index.rebuilds)
	assert.Contains(t, out, "Index rebuilt.")
}

func TestIndexCmd_RebuildError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.rebuildErr = errors.New("storage: read entities")

	_, err := execute(t, "index", "rebuild")

	assert.EqualError(t, err, "rebuild failed: storage: read entities")
}

func TestIndexCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	indexService = nil

	_, err := execute(t, "index", "rebuild")

	assert.EqualError(t, err, "index service not configured")
}
