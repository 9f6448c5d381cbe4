package services

import "context"

type contextKey string

const (
	segmentIDKey contextKey = "segment_id"
	dayKey       contextKey = "day"
	componentKey contextKey = "component"
)

// WithSegmentID annotates context with the segment identifier the current
// operation concerns.
func WithSegmentID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, segmentIDKey, id)
}

// SegmentIDFromContext extracts the segment identifier if present.
func SegmentIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(segmentIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDay annotates context with the calendar day key (YYYY-MM-DD).
func WithDay(ctx context.Context, day string) context.Context {
	if day == "" {
		return ctx
	}
	return context.WithValue(ctx, dayKey, day)
}

// DayFromContext returns the calendar day key if present.
func DayFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(dayKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the engine component name.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
