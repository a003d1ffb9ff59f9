// Package logging carries run correlation data through context.Context and
// into every slog record.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	clientKey
	actionableTypeKey
)

// WithRunID returns a context with the run ID set.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithClient returns a context with the client identifier set.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// WithActionableType returns a context with the actionable type set.
func WithActionableType(ctx context.Context, actionableType string) context.Context {
	return context.WithValue(ctx, actionableTypeKey, actionableType)
}

// RunID extracts the run ID from the context, or "" if absent.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// Client extracts the client identifier from the context, or "" if absent.
func Client(ctx context.Context) string {
	v, _ := ctx.Value(clientKey).(string)
	return v
}

// ActionableType extracts the actionable type from the context, or "" if absent.
func ActionableType(ctx context.Context) string {
	v, _ := ctx.Value(actionableTypeKey).(string)
	return v
}

// correlationAttrs returns the non-empty correlation values of ctx.
func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := RunID(ctx); v != "" {
		attrs = append(attrs, slog.String("run_id", v))
	}
	if v := Client(ctx); v != "" {
		attrs = append(attrs, slog.String("client", v))
	}
	if v := ActionableType(ctx); v != "" {
		attrs = append(attrs, slog.String("actionable_type", v))
	}
	return attrs
}

// CorrelationHandler wraps an slog.Handler, injecting correlation values from
// the context into every record. Callers log with logger.InfoContext(ctx, ...).
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
