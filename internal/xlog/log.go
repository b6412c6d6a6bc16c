// Package xlog is a small structured-logging shim in the calling convention
// used throughout go-ethereum: Debug/Info/Warn/Error each take a message
// followed by alternating key/value pairs. It is built directly on log/slog
// rather than reimplementing a handler stack, since the only thing this
// module needs from go-ethereum's own log package is the call shape, not its
// terminal/glog formatting machinery.
package xlog

import (
	"context"
	"log/slog"
	"os"
)

var root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLevel adjusts the minimum level emitted by the root logger.
func SetLevel(level slog.Level) {
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Root returns the package-wide logger.
func Root() *slog.Logger { return root }

func Debug(msg string, kvs ...any) { root.Log(context.Background(), slog.LevelDebug, msg, kvs...) }
func Info(msg string, kvs ...any)  { root.Log(context.Background(), slog.LevelInfo, msg, kvs...) }
func Warn(msg string, kvs ...any)  { root.Log(context.Background(), slog.LevelWarn, msg, kvs...) }
func Error(msg string, kvs ...any) { root.Log(context.Background(), slog.LevelError, msg, kvs...) }
