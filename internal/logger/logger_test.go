package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("fetch %s", "units")
	Info("changed %d", 2)
	Warn("skipped %s", "a.json")

	assert.Equal(t, "[DEBUG] fetch units\n[INFO] changed 2\n[WARN] skipped a.json\n", buf.String())
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("Update check")

	assert.Equal(t, "\n=== Update check ===\n", buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Error("store unavailable: %v", "disk full")

	assert.Equal(t, "[ERROR] store unavailable: disk full\n", buf.String())
}
