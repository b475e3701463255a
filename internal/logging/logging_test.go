package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderramin/taskup/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		cfg     config.LogConfig
		debugOn bool
		infoOn  bool
	}{
		{config.LogConfig{Level: "info", Format: "json"}, false, true},
		{config.LogConfig{Level: "debug", Format: "console"}, true, true},
		{config.LogConfig{Level: "error", Format: "json"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Level+"/"+tt.cfg.Format, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.debugOn, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.infoOn, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}
