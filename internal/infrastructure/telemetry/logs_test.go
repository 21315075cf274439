package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_DisabledCoreIsNop(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.IsEnabled())
	core := lp.ZapCore(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	if ce := core.Check(zapcore.Entry{Level: zapcore.InfoLevel, Message: "dropped"}, nil); ce != nil {
		ce.Write()
	}
	if ce := core.With(nil).Check(zapcore.Entry{Level: zapcore.WarnLevel, Message: "kept"}, nil); ce != nil {
		ce.Write()
	}

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
