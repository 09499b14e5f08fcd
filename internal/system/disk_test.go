package system

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeSpace(t *testing.T) {
	d := t.TempDir()
	free, err := FreeSpace(d)
	require.NoError(t, err)
	total, avail, err := Usage(d)
	require.NoError(t, err)
	assert.Greater(t, total, uint64(0))
	assert.LessOrEqual(t, avail, total)
	assert.Greater(t, free, uint64(0))

	_, err = FreeSpace(filepath.Join(d, "missing", "dir"))
	assert.Error(t, err)
}

func TestLogBudget(t *testing.T) {
	assert.Equal(t, uint64(40<<20), LogBudget(10, 3))
	assert.Equal(t, uint64(100<<20), LogBudget(0, 0))
}
