package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/reviewhub/internal/actorctx"
	"go.opentelemetry.io/otel/trace"
)

// contextHandler copies request-scoped identifiers from the record's context
// onto the record: the active span, and the authenticated user when the
// request carried a bearer token.
type contextHandler struct {
	slog.Handler
}

func NewTraceHandler(next slog.Handler) slog.Handler {
	return contextHandler{Handler: next}
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if actor, ok := actorctx.UserIDFrom(ctx); ok {
		r.AddAttrs(slog.String("actor_id", actor))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
