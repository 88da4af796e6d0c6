package gofromts

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the console logger used by the server and the CLI.
// Debug output is enabled in development or when DEBUG=true.
func NewLogger(development bool) *zap.SugaredLogger {
	encConfig := zap.NewDevelopmentEncoderConfig()
	encConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encConfig.EncodeCaller = nil
	encConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.StampMilli))
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if val, ok := os.LookupEnv("DEBUG"); development || (ok && strings.EqualFold(val, "true")) {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encConfig),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))).Sugar()
}
