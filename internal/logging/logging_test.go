package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/ec-storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "warn", Mode: "production"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Mode: "production"})
	assert.Error(t, err)
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	logger, err := New(config.LogConfig{
		Level:      "info",
		Mode:       "development",
		FileEnable: true,
		Filename:   path,
		MaxSizeMB:  1,
	})
	require.NoError(t, err)

	logger.Named("cart").Info("item added", zap.String("product_id", "A"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "item added", entry["msg"])
	assert.Equal(t, "cart", entry["logger"])
	assert.Equal(t, "A", entry["product_id"])
}

func TestSetup_ReplacesGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	logger, err := Setup(config.LogConfig{Level: "error", Mode: "production"})
	require.NoError(t, err)

	assert.Same(t, logger, zap.L())
}
