// Package logger provides tagged console logging for the whole application.
// It wraps a zap logger so the hot paths get structured, leveled output while
// call sites stay as simple as logger.Info("TAG", "message").
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		// zap's development config only fails on impossible settings;
		// fall back to a no-op logger rather than crashing at init.
		l = zap.NewNop()
	}
	log = l.Sugar()
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	log.Infof("[%s] %s", tag, msg)
}

// Success logs a completed-milestone message under a component tag.
func Success(tag, msg string) {
	log.Infof("[%s] ✓ %s", tag, msg)
}

// Warn logs a recoverable problem under a component tag.
func Warn(tag, msg string) {
	log.Warnf("[%s] %s", tag, msg)
}

// Error logs a failure under a component tag.
func Error(tag, msg string) {
	log.Errorf("[%s] %s", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(os.Stdout, "\n  eve-courier %s - multi-leg trade route optimizer\n\n", version)
}

// Section prints a visual section divider for long startup sequences.
func Section(name string) {
	fmt.Fprintf(os.Stdout, "\n── %s ──\n", name)
}

// Stats prints a single key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Fprintf(os.Stdout, "   %-24s %v\n", key, value)
}
