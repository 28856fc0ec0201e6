// Package logger owns the process logger.
package logger

import (
	"context"

	glog "github.com/Laisky/go-utils/v6/log"
)

// Logger is the process wide logger. It is usable before SetupLogger runs.
var Logger glog.Logger = glog.Shared.Named("toxml")

type ctxKey struct{}

// SetupLogger replaces Logger with a console logger at the given level.
// Unknown levels fall back to info.
func SetupLogger(level string) error {
	lg, err := glog.NewConsoleWithName("toxml", parseLevel(level))
	if err != nil {
		return err
	}

	Logger = lg
	return nil
}

// SetupStderrLogger is SetupLogger for the stdio MCP transport, where stdout
// belongs to the protocol.
func SetupStderrLogger(level string) error {
	lg, err := glog.New(
		glog.WithName("toxml"),
		glog.WithLevel(parseLevel(level)),
		glog.WithEncoding(glog.EncodingConsole),
		glog.WithOutputPaths([]string{"stderr"}),
		glog.WithErrorOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return err
	}

	Logger = lg
	return nil
}

func parseLevel(level string) glog.Level {
	switch level {
	case "debug":
		return glog.LevelDebug
	case "warn", "warning":
		return glog.LevelWarn
	case "error":
		return glog.LevelError
	default:
		return glog.LevelInfo
	}
}

// WithContext stores lg in ctx.
func WithContext(ctx context.Context, lg glog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, lg)
}

// FromContext returns the logger stored in ctx, or Logger.
func FromContext(ctx context.Context) glog.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(ctxKey{}).(glog.Logger); ok && lg != nil {
			return lg
		}
	}

	return Logger
}
