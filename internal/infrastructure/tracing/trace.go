package tracing

import (
	"context"
	"time"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/id"
	"go.uber.org/zap"
)

// TraceID identifies one request end to end, across the shell and this server.
type TraceID string

// SpanID identifies a single timed operation within a trace.
type SpanID string

// Span is one timed operation. Finished spans are handed to the tracer,
// which writes them to the structured log.
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	Service    string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Tags       map[string]string
	Error      error
	StatusCode int
}

// Tracer collects finished spans on a buffered channel and emits them
// asynchronously, so request handlers never block on trace output.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
}

// New creates a tracer and starts its emit loop.
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, 1000),
	}

	go t.drain()

	return t
}

// StartSpan opens a span under whatever trace the context already carries.
// Without one, a fresh trace id is minted. The returned context carries the
// new span as parent for anything started beneath it.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}

	parentID, _ := ctx.Value(spanIDKey).(SpanID)

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.NewRequestID()),
		ParentID:  parentID,
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}

	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, spanIDKey, span.SpanID)

	return span, newCtx
}

// Finish stamps the end time and duration.
func (s *Span) Finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// SetTag attaches a key/value annotation.
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records a failure and forces a 500 status.
func (s *Span) SetError(err error) {
	s.Error = err
	s.StatusCode = 500
}

// SetStatus records the HTTP status code.
func (s *Span) SetStatus(code int) {
	s.StatusCode = code
}

// drain emits finished spans until the channel closes.
func (t *Tracer) drain() {
	for span := range t.spans {
		t.emit(span)
	}
}

// emit writes one span to the log.
func (t *Tracer) emit(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", t.service),
	}

	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}

	if span.Error != nil {
		fields = append(fields, zap.Error(span.Error))
		t.logger.Error("span completed with error", fields...)
	} else {
		t.logger.Info("span completed", fields...)
	}
}

// Submit queues a finished span. Spans are dropped rather than blocking
// when the buffer is full.
func (t *Tracer) Submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// WithRemoteParent seeds a context with trace identity received from the
// shell, so the server's spans join the caller's trace. Empty values are
// ignored.
func WithRemoteParent(ctx context.Context, traceID TraceID, parentID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if parentID != "" {
		ctx = context.WithValue(ctx, spanIDKey, parentID)
	}
	return ctx
}

// GetTraceID returns the trace id carried by the context, or "".
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)
