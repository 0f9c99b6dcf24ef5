package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLogger_Levels(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	if err := InitLogger(false); err != nil {
		t.Fatalf("InitLogger(false): %v", err)
	}
	core := Logger.Desugar().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled outside debug mode")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}

	if err := InitLogger(true); err != nil {
		t.Fatalf("InitLogger(true): %v", err)
	}
	if !Logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled in debug mode")
	}
}
