package pipectx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyCorrelationID KeyContext = "correlation_id"
	keyStartTime     KeyContext = "pipeline_start_time"
)

// Begin initializes a pipeline context with a fresh correlation id.
// Every log line and error surfaced during the invocation carries this id.
func Begin(parentCtx context.Context) context.Context {
	ctx := context.WithValue(parentCtx, keyCorrelationID, uuid.NewString())
	ctx = context.WithValue(ctx, keyStartTime, time.Now())
	return ctx
}

// WithCorrelationID overrides the correlation id, used when the caller
// supplies its own request id.
func WithCorrelationID(parentCtx context.Context, correlationID string) context.Context {
	ctx := context.WithValue(parentCtx, keyCorrelationID, correlationID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())
	return ctx
}

// CorrelationID extracts the correlation id from context. Returns a fresh
// id if the context carries none, so log lines are never blank.
func CorrelationID(ctx context.Context) string {
	id, ok := ctx.Value(keyCorrelationID).(string)
	if !ok || id == "" {
		return uuid.NewString()
	}
	return id
}

// StartTime extracts the pipeline start time from context
func StartTime(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(keyStartTime).(time.Time)
	return start, ok
}
