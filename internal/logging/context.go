package logging

import (
	"context"
	"log/slog"

	"proxymill/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one pipeline run.
	FieldRunID = "run_id"
	// FieldPass is the rendering pass (template) being processed.
	FieldPass = "pass"
	// FieldBatch is the render batch name.
	FieldBatch = "batch"
	// FieldCard is the full dual name of a card.
	FieldCard = "card"
	// FieldFace is front or back.
	FieldFace = "face"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if pass, ok := services.PassFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPass, pass))
	}
	if batch, ok := services.BatchFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatch, batch))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
