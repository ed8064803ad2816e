package main

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes to stdout, and also to a rotated file when LOG_FILE is set.
// The returned close function flushes the file writer.
func newLogger(cfg *Config) (*slog.Logger, func() error) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)

	if cfg.LogFile != "" {
		lumberJackLogger := &lumberjack.Logger{
			Filename: cfg.LogFile,
			MaxSize:  50, // megabytes
			Compress: true,
		}
		w = io.MultiWriter(os.Stdout, lumberJackLogger)
		closeFn = lumberJackLogger.Close
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, nil)
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler), closeFn
}
