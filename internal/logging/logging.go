// Package logging builds the zap loggers used across learnforge.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level  string    // debug, info, warn, error (default warn)
	Format string    // console or json (default console)
	File   string    // optional rotating log file, always JSON
	Output io.Writer // console destination (default os.Stderr)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// ParseLevel maps a level name to a zap level. Empty means warn.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	case "json":
		enc = zapcore.NewJSONEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", opts.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(out), level),
	}
	if opts.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
