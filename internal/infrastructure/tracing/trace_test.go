package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestStartSpanMintsTrace tests that a span started on a bare context gets
// a fresh trace id and no parent
func TestStartSpanMintsTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())

	span, ctx := tracer.StartSpan(context.Background(), "op")
	require.NotEmpty(t, span.TraceID)
	require.NotEmpty(t, span.SpanID)
	assert.Empty(t, span.ParentID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
}

// TestStartSpanNestsUnderParent tests that a child span shares the trace
// and records the parent span id
func TestStartSpanNestsUnderParent(t *testing.T) {
	tracer := New("test", zap.NewNop())

	parent, ctx := tracer.StartSpan(context.Background(), "outer")
	child, _ := tracer.StartSpan(ctx, "inner")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
}

// TestWithRemoteParent tests that header-supplied identity seeds the trace
func TestWithRemoteParent(t *testing.T) {
	tracer := New("test", zap.NewNop())

	ctx := WithRemoteParent(context.Background(), "trace-abc", "span-xyz")
	span, _ := tracer.StartSpan(ctx, "op")

	assert.Equal(t, TraceID("trace-abc"), span.TraceID)
	assert.Equal(t, SpanID("span-xyz"), span.ParentID)

	// Empty values leave the context untouched.
	bare := WithRemoteParent(context.Background(), "", "")
	assert.Empty(t, GetTraceID(bare))
}

// TestSetErrorForcesStatus tests that recording an error marks the span 500
func TestSetErrorForcesStatus(t *testing.T) {
	tracer := New("test", zap.NewNop())

	span, _ := tracer.StartSpan(context.Background(), "op")
	span.SetStatus(200)
	span.SetError(errors.New("boom"))
	span.Finish()

	assert.Equal(t, 500, span.StatusCode)
	assert.Error(t, span.Error)
	assert.False(t, span.EndTime.IsZero())
}
