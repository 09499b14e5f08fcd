package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateAndPrint(t *testing.T) {
	d := writeConfig(t, "batch:\n  parallel: 8\n")

	out := setupIO(t, "")
	require.NoError(t, handleConfig(context.Background(), []string{"validate"}))
	assert.Contains(t, out.String(), "config: valid")

	out = setupIO(t, "")
	require.NoError(t, handleConfig(context.Background(), []string{"print"}))
	assert.Contains(t, out.String(), "parallel: 8")
	assert.Contains(t, out.String(), "data_root: "+d)
}

func TestConfig_ValidateRejectsBadParallel(t *testing.T) {
	writeConfig(t, "batch:\n  parallel: -1\n")
	setupIO(t, "")
	assert.Error(t, handleConfig(context.Background(), []string{"validate"}))
}

func TestConfig_UnknownSubcommand(t *testing.T) {
	assert.Error(t, handleConfig(context.Background(), nil))
	assert.EqualError(t, handleConfig(context.Background(), []string{"edit"}), "unknown config subcommand: edit")
}

func TestDoctor(t *testing.T) {
	writeConfig(t, "history:\n  enabled: true\n")
	out := setupIO(t, "")
	require.NoError(t, handleDoctor(context.Background(), nil))
	s := out.String()
	assert.Contains(t, s, "✓ Rules load")
	assert.Contains(t, s, "✓ Sample URL cleans")
	assert.Contains(t, s, "https://example.com/page?id=1")
	assert.Contains(t, s, "✓ History database")
	assert.Contains(t, s, "0 failed")
}
