package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until
// InitLogger is called.
var Logger = zap.NewNop().Sugar()

// InitLogger builds Logger. Debug mode logs everything in development
// format; otherwise only warnings and errors are written. Output goes to
// stderr so report output on stdout stays machine-readable.
func InitLogger(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
