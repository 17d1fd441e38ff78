package observability

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/collide/config"
)

func TestInitializeJSON(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "collide"}, zapcore.AddSync(&buf))

	GetLogger().Debug("world state changed", zap.String("to", "running"))
	Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "collide", entry["logger"])
	assert.Equal(t, "running", entry["to"])
}

func TestInitializeOnce(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("hello")
	assert.NotZero(t, first.Len())
	assert.Zero(t, second.Len())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "chatty", Format: "console"}, zapcore.AddSync(&buf))

	GetLogger().Debug("hidden")
	GetLogger().Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestRotatedFileOutput(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	path := filepath.Join(t.TempDir(), "collide.log")
	var console bytes.Buffer
	Initialize(config.LoggerConfig{
		Level:   "info",
		Format:  "console",
		LogFile: path,
		MaxSize: 1,
	}, zapcore.AddSync(&console))

	GetLogger().Info("to both")
	Sync()
	assert.FileExists(t, path)
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
}
