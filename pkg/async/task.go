package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/richxcame/commuter-agent/pkg/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TaskContext holds the values carried from a caller into a background task.
type TaskContext struct {
	CorrelationID string
	SpanContext   trace.SpanContext
	StartTime     time.Time
	TaskName      string
}

// CaptureContext snapshots the correlation ID and span of ctx.
func CaptureContext(ctx context.Context, taskName string) TaskContext {
	return TaskContext{
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		SpanContext:   trace.SpanContextFromContext(ctx),
		StartTime:     time.Now(),
		TaskName:      taskName,
	}
}

// NewContext builds a fresh context, detached from the caller's cancellation,
// that carries the captured values.
func (tc TaskContext) NewContext() context.Context {
	ctx := context.Background()
	if tc.CorrelationID != "" {
		ctx = logger.ContextWithCorrelationID(ctx, tc.CorrelationID)
	}
	if tc.SpanContext.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, tc.SpanContext)
	}
	return ctx
}

// Go runs fn in a goroutine with a detached context and panic recovery. The
// returned channel is closed when fn returns or panics.
//
// Usage:
//
//	done := async.Go(ctx, "agent-registration", func(ctx context.Context) {
//	    notifier.RegisterAll(ctx, reg)
//	})
func Go(ctx context.Context, taskName string, fn func(ctx context.Context)) <-chan struct{} {
	tc := CaptureContext(ctx, taskName)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer recoverWithLogging(tc)

		taskCtx := tc.NewContext()
		fn(taskCtx)

		logger.DebugContext(taskCtx, "async task completed",
			zap.String("task", tc.TaskName),
			zap.Duration("duration", time.Since(tc.StartTime)),
		)
	}()

	return done
}

func recoverWithLogging(tc TaskContext) {
	if r := recover(); r != nil {
		logger.ErrorContext(tc.NewContext(), "async task panicked",
			zap.String("task", tc.TaskName),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
		)
	}
}
