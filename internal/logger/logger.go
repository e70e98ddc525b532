package logger

import (
	"os"

	"dyme-cli/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = newSugar(config.IsDebugMode())

func newSugar(debug bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// Logs go to stderr; stdout carries command output only
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core).Sugar()
}

// SetDebug switches debug output on or off
func SetDebug(debug bool) {
	sugar = newSugar(debug)
}

// Debug logs debug messages only when debug mode is enabled
func Debug(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

// Warning logs warning messages
func Warning(format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}

// ErrorWithDetails logs an error with detailed information in debug mode
func ErrorWithDetails(msg string, err error) {
	Error("%s", msg)
	if err != nil {
		sugar.Debugw("error details", "error", err)
	}
}

// Sync flushes buffered log entries
func Sync() {
	_ = sugar.Sync()
}
