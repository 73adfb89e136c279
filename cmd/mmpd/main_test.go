package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	device, path, level, set := *midiDevice, *configPath, *logLevel, logLevelSet
	t.Cleanup(func() {
		*midiDevice = device
		*configPath = path
		*logLevel = level
		logLevelSet = set
	})
}

func TestSubcommandFlagsApply(t *testing.T) {
	resetFlags(t)

	require.NoError(t, parseSubcommandArgs("monitor", []string{"-midi-device", "nanoKONTROL"}))
	assert.Equal(t, "nanoKONTROL", *midiDevice)

	require.NoError(t, parseSubcommandArgs("init", []string{"-config", "/tmp/macros.yml"}))
	assert.Equal(t, "/tmp/macros.yml", *configPath)
}

func TestSubcommandLogLevelDetected(t *testing.T) {
	resetFlags(t)
	logLevelSet = false

	require.NoError(t, parseSubcommandArgs("monitor", nil))
	assert.False(t, logLevelSet)

	require.NoError(t, parseSubcommandArgs("monitor", []string{"-loglevel", "3"}))
	assert.True(t, logLevelSet)
	assert.Equal(t, 3, *logLevel)
}

func TestSubcommandUnknownFlagErrors(t *testing.T) {
	resetFlags(t)

	assert.Error(t, parseSubcommandArgs("monitor", []string{"-no-such-flag"}))
}
