// Package logging is the structured logger shared by the client packages.
// SlogLogger, over log/slog, is the only implementation; tests use Nop.
package logging

import "context"

// Logger takes key/value pairs after the message:
//
//	log.Info(ctx, "search completed", "results", n, "seq", seq)
//
// Debug is for per-request detail, Warn for recoverable trouble such as a
// missing device position, Error for failures the user will notice.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
