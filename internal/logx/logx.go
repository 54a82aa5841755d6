package logx

import (
	"context"

	"pkt.systems/pslog"
)

type contextKey int

const viewerKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithViewer annotates the logger with the viewer's remote address if present.
func WithViewer(ctx context.Context, viewer string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if viewer != "" {
		if current, ok := ctx.Value(viewerKey).(string); ok && current == viewer {
			return log
		}
		log = log.With("viewer", viewer)
	}
	return log
}

// WithCommand annotates the logger with the child command when available.
func WithCommand(log pslog.Logger, argv []string) pslog.Logger {
	if len(argv) > 0 && argv[0] != "" {
		log = log.With("command", argv[0])
	}
	return log
}

// ContextWithViewer stores the viewer marker on the context for log de-duplication.
func ContextWithViewer(ctx context.Context, viewer string) context.Context {
	if ctx == nil || viewer == "" {
		return ctx
	}
	return context.WithValue(ctx, viewerKey, viewer)
}

// ContextWithViewerLogger attaches the logger and viewer marker to the context.
func ContextWithViewerLogger(ctx context.Context, log pslog.Logger, viewer string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithViewer(ctx, viewer)
}
