package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmaster/internal/pkg/logger"
)

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug")

	log.Info("Operação validada.", map[string]interface{}{"operation_id": "op-1", "movements": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Operação validada.", entry["message"])
	assert.Equal(t, "op-1", entry["operation_id"])
	assert.EqualValues(t, 2, entry["movements"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "error")

	log.Debug("ignorado", nil)
	log.Info("ignorado", nil)
	log.Warn("ignorado", nil)
	assert.Zero(t, buf.Len())

	log.Error("falhou", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verbose")

	log.Debug("ignorado", nil)
	assert.Zero(t, buf.Len())

	log.Info("registrado", nil)
	assert.NotZero(t, buf.Len())
}
