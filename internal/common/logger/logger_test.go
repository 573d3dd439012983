package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Component(NewZapAdapter(zap.New(core)), "feedback")

	log.WithFields(map[string]interface{}{"feedbackId": "f1"}).
		Info("status changed", map[string]interface{}{"to": "resolved", "cause": errors.New("manual")})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "feedback", ctx["component"])
		assert.Equal(t, "f1", ctx["feedbackId"])
		assert.Equal(t, "resolved", ctx["to"])
		assert.Equal(t, "manual", ctx["cause"])
	}
}

func TestComponent_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(nil, "x").Warn("ignored", nil)
	})
}

func TestNewStructured(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log := NewStructured("error", format)
		assert.NotPanics(t, func() {
			log.WithError(errors.New("boom")).Error("storage write failed", map[string]interface{}{"partition": "feedback"})
			log.Debug("dropped", nil)
		}, format)
	}
}
