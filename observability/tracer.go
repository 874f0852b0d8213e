package observability

import (
	"context"
	"sync"
	"time"
)

type spanKey struct{}

// NewLogTracer returns a tracer that logs each finished span at debug level
// with its duration and tags, and feeds the duration to rec under the span
// name when rec is not nil.
func NewLogTracer(logger Logger, rec Recorder) Tracer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &logTracer{logger: logger, rec: rec}
}

type logTracer struct {
	logger Logger
	rec    Recorder
}

func (t *logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	s := &logSpan{tracer: t, name: name, start: time.Now()}
	if parent, ok := ctx.Value(spanKey{}).(*logSpan); ok {
		s.parent = parent.name
	}
	return context.WithValue(ctx, spanKey{}, s), s
}

type logSpan struct {
	tracer *logTracer
	name   string
	parent string
	start  time.Time

	mu   sync.Mutex
	tags []Field
	err  error
	done bool
}

func (s *logSpan) SetTag(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tagField(key, value))
}

func (s *logSpan) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *logSpan) Finish() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	elapsed := time.Since(s.start)
	fields := append([]Field{String("span", s.name), Duration("elapsed", elapsed)}, s.tags...)
	if s.parent != "" {
		fields = append(fields, String("parent", s.parent))
	}
	err := s.err
	s.mu.Unlock()

	if err != nil {
		fields = append(fields, Error("error", err))
	}
	s.tracer.logger.Debug("span finished", fields...)
	if s.tracer.rec != nil {
		s.tracer.rec.Observe(s.name, elapsed.Seconds())
	}
}

func tagField(key string, value interface{}) Field {
	switch v := value.(type) {
	case string:
		return String(key, v)
	case int:
		return Int(key, v)
	case int64:
		return Int64(key, v)
	case float64:
		return Float64(key, v)
	case bool:
		return Bool(key, v)
	case time.Duration:
		return Duration(key, v)
	case error:
		return Error(key, v)
	default:
		return anyField{key, v}
	}
}

type anyField struct {
	key string
	val interface{}
}

func (f anyField) Key() string        { return f.key }
func (f anyField) Value() interface{} { return f.val }
