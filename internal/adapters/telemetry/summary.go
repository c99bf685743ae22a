package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanTiming is the outcome of one finished span.
type SpanTiming struct {
	Name     string
	Duration time.Duration
	Failed   bool
	Status   string
}

// SummaryProcessor is a sdktrace.SpanProcessor that keeps ended spans in order.
type SummaryProcessor struct {
	mu    sync.Mutex
	spans []SpanTiming
}

var _ sdktrace.SpanProcessor = (*SummaryProcessor)(nil)

// NewSummaryProcessor returns an empty SummaryProcessor.
func NewSummaryProcessor() *SummaryProcessor {
	return &SummaryProcessor{}
}

// OnStart does nothing.
func (p *SummaryProcessor) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records the span.
func (p *SummaryProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	timing := SpanTiming{
		Name:     s.Name(),
		Duration: s.EndTime().Sub(s.StartTime()),
		Failed:   s.Status().Code == codes.Error,
		Status:   s.Status().Description,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.spans = append(p.spans, timing)
}

// Spans returns the recorded spans in the order they ended.
func (p *SummaryProcessor) Spans() []SpanTiming {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SpanTiming, len(p.spans))
	copy(out, p.spans)
	return out
}

// ForceFlush does nothing.
func (p *SummaryProcessor) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (p *SummaryProcessor) Shutdown(_ context.Context) error {
	return nil
}

// Install registers a global TracerProvider feeding the given processors and
// returns its shutdown function.
func Install(processors ...sdktrace.SpanProcessor) func(context.Context) error {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors))
	for _, sp := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(sp))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
