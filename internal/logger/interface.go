package logger

import "context"

// Logger defines the interface for leveled pipeline logging.
// The console sink is always active; a durable file sink can be
// attached once the session directory exists.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	AttachFile(path string) error
	Close() error
}
