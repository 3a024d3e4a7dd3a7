// Package logging builds the zap logger used across llmexplain.
package logging

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/llmexplain/internal/config"
)

// New returns a logger writing to w. Format "json" selects the production
// JSON encoder; anything else uses the console encoder. Unknown levels fall
// back to warn.
func New(cfg config.LogConfig, w io.Writer) *zap.Logger {
	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	return zap.New(core)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
