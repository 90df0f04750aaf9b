package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"ecommerce-platform/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_ProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "production"},
		Log:    config.LogConfig{Level: "debug"},
	}

	logger := NewWithOutput(cfg, &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("order_id", "o-1").Info("Order placed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Order placed", entry["msg"])
	assert.Equal(t, "o-1", entry["order_id"])
}

func TestNewWithOutput_DevelopmentLogsText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "development"},
		Log:    config.LogConfig{Level: "nonsense"},
	}

	logger := NewWithOutput(cfg, &buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel(), "unknown levels fall back to info")
	assert.Contains(t, buf.String(), "Invalid LOG_LEVEL")

	buf.Reset()
	logger.Info("Server starting")
	assert.Contains(t, buf.String(), `msg="Server starting"`)
}
