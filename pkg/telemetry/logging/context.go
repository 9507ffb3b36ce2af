package logging

import (
	"context"
	"log/slog"
)

// Context keys for export log fields.
type contextKey string

const (
	// RunIDKey is the context key for export run ids.
	RunIDKey contextKey = "run_id"

	// FormatKey is the context key for format definition names.
	FormatKey contextKey = "format"

	// JobKey is the context key for scheduled job names.
	JobKey contextKey = "job"
)

// WithRunID adds an export run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the export run id from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithFormat adds a format name to the context.
func WithFormat(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, FormatKey, name)
}

// GetFormat retrieves the format name from the context.
func GetFormat(ctx context.Context) string {
	if name, ok := ctx.Value(FormatKey).(string); ok {
		return name
	}
	return ""
}

// WithJob adds a scheduled job name to the context.
func WithJob(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, JobKey, job)
}

// GetJob retrieves the scheduled job name from the context.
func GetJob(ctx context.Context) string {
	if job, ok := ctx.Value(JobKey).(string); ok {
		return job
	}
	return ""
}

// extractContextFields returns the context's export fields as key-value
// pairs suitable for slog.Logger.With.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if job := GetJob(ctx); job != "" {
		fields = append(fields, string(JobKey), job)
	}
	if name := GetFormat(ctx); name != "" {
		fields = append(fields, string(FormatKey), name)
	}
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, string(RunIDKey), runID)
	}
	return fields
}

// ContextHandler adds the export fields found in the context to every record
// logged through the *Context methods.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r.Add(fields...)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
