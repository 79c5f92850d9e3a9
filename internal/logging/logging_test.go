package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"tilecraft.ai/internal/config"
)

func TestNewLevels(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) || !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("json logger should start at warn")
	}
	l, err = New(config.LoggingConfig{Level: "chatty"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("unknown level should fall back to info")
	}
	if OrNop(nil) == nil {
		t.Fatalf("OrNop returned nil")
	}
}
