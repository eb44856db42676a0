package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected no-op logger before Init")
	}

	if err := l.Init("Warn"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if l.Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if !l.Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error must be enabled at warn level")
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
