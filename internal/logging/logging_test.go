package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/logging"
)

func TestSetupWriter(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer

	require.NoError(t, logging.SetupWriter(&buf, "warn", "json"))

	slog.Info("hidden")
	slog.Warn("shown", "tracker", "calories")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"tracker":"calories"`)
}

func TestSetupWriter_Invalid(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	assert.Error(t, logging.SetupWriter(&bytes.Buffer{}, "loud", "text"))
	assert.Error(t, logging.SetupWriter(&bytes.Buffer{}, "info", "xml"))
}
