package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	config, done, err := Parse(nil, &out)

	require.NoError(t, err)
	assert.True(t, done)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseValidateDefaults(t *testing.T) {
	var out bytes.Buffer
	config, done, err := Parse([]string{"validate"}, &out)

	require.NoError(t, err)
	assert.False(t, done)
	require.NotNil(t, config)
	assert.Equal(t, "validate", config.Command)
	assert.Equal(t, ".", config.Root)
	assert.Equal(t, "text", config.DiagFormat)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestParseBuildWithFlagsAndRoot(t *testing.T) {
	var out bytes.Buffer
	config, done, err := Parse(
		[]string{"build", "-out", "dist", "-format", "json", "-log-level", "debug", "./proj"},
		&out)

	require.NoError(t, err)
	assert.False(t, done)
	require.NotNil(t, config)
	assert.Equal(t, "build", config.Command)
	assert.Equal(t, "./proj", config.Root)
	assert.Equal(t, "dist", config.OutDir)
	assert.Equal(t, "json", config.DiagFormat)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestParseUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"deploy"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, `unknown command "deploy"`)
}

func TestParseInvalidFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"validate", "-format", "xml"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"validate", "-log-level", "verbose"}, &out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	config, done, err := Parse([]string{"help"}, &out)

	require.NoError(t, err)
	assert.True(t, done)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "dazzle validate")
}
