package document

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hvlabs/docproc/internal/function"
	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/monitoring"
	"github.com/hvlabs/docproc/internal/telemetry"
)

// Span names for the processing stages
const (
	SpanRender  = "document.render_pages"
	SpanExtract = "document.llm_extract"
)

// DefaultStrategy is used when the caller does not pick one
const DefaultStrategy = "mineru-vl"

// Simulated workload shape
const (
	pagesPerDocument = 10
	tokensProcessed  = 1500

	renderBaseline         = 200 * time.Millisecond
	renderSlowTime         = time.Second
	renderSlowProbability  = 0.05
	extractBaseline        = 300 * time.Millisecond
	extractSlowTime        = 900 * time.Millisecond
	extractSlowProbability = 0.10
)

// SleepFunc suspends only the calling invocation until the duration elapses
// or ctx is done, returning ctx.Err() in that case
type SleepFunc func(ctx context.Context, d time.Duration) error

// Processor simulates a document pipeline: page rendering followed by LLM
// content extraction, each stage under its own child span with occasional
// injected slowness for anomaly detection demos. Implements function.Handler.
type Processor struct {
	telemetry *telemetry.Context
	log       *logging.Logger
	metrics   *monitoring.Metrics

	sleep           SleepFunc
	randMu          sync.Mutex
	rnd             *rand.Rand
	renderSlowProb  float64
	extractSlowProb float64

	strategies []string
}

// Option configures a Processor
type Option func(*Processor)

// WithSleep replaces the delay function, used to make tests instant
func WithSleep(sleep SleepFunc) Option {
	return func(p *Processor) {
		p.sleep = sleep
	}
}

// WithRand replaces the random source for deterministic slowness
func WithRand(rnd *rand.Rand) Option {
	return func(p *Processor) {
		p.rnd = rnd
	}
}

// WithSlowProbabilities overrides the per-stage slow-path probabilities
func WithSlowProbabilities(render, extract float64) Option {
	return func(p *Processor) {
		p.renderSlowProb = render
		p.extractSlowProb = extract
	}
}

// WithMetrics enables stage metrics recording
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

// New creates a document processor
func New(tctx *telemetry.Context, log *logging.Logger, opts ...Option) *Processor {
	p := &Processor{
		telemetry:       tctx,
		log:             log.Named("document"),
		sleep:           defaultSleep,
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
		renderSlowProb:  renderSlowProbability,
		extractSlowProb: extractSlowProbability,
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnStart prepares the processor once per container
func (p *Processor) OnStart(ctx context.Context) error {
	log := p.log.For(ctx)

	log.Info("service_initializing", zap.Strings("strategies", []string{DefaultStrategy, "dots-ocr"}))
	p.strategies = []string{DefaultStrategy, "dots-ocr"}
	log.Info("service_initialized")

	return nil
}

// Handle processes one document through both stages.
//
// Each stage runs under a child span of whatever span is active in ctx.
// Stage errors propagate unchanged; the root span metric total_pages is
// only set when both stages complete.
func (p *Processor) Handle(ctx context.Context, req function.Request) (*function.Result, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = DefaultStrategy
	}

	p.log.For(ctx).Info("processing_document",
		zap.String("work_id", req.WorkID),
		zap.String("strategy", strategy),
	)

	if err := p.renderPages(ctx); err != nil {
		return nil, err
	}
	if err := p.extractContent(ctx); err != nil {
		return nil, err
	}

	// Final metric on the invocation's root span
	telemetry.SpanFromContext(ctx).SetMetric("total_pages", pagesPerDocument)
	p.log.For(ctx).Info("document_processed_successfully")

	return &function.Result{
		WorkID:   req.WorkID,
		Strategy: strategy,
		Status:   function.StatusSuccess,
		Pages:    pagesPerDocument,
	}, nil
}

// OnStop releases resources at container teardown
func (p *Processor) OnStop(ctx context.Context) error {
	p.log.For(ctx).Info("service_shutting_down")
	return nil
}

// renderPages simulates PDF page rendering
func (p *Processor) renderPages(ctx context.Context) error {
	ctx, span := p.telemetry.Start(ctx, SpanRender,
		telemetry.WithSpanType(telemetry.TypeTemplate),
	)
	defer span.End()

	span.SetMetric("pages_count", pagesPerDocument)

	slow := p.chance(p.renderSlowProb)
	delay := renderBaseline
	if slow {
		delay = renderSlowTime
	}
	// Tag before the delay so anomalies are visible even on cancellation
	span.SetBoolTag("slow_render", slow)

	start := time.Now()
	if err := p.sleep(ctx, delay); err != nil {
		span.SetError(err)
		return err
	}

	p.log.For(ctx).Info("rendered_pages",
		zap.Int("pages", pagesPerDocument),
		zap.Bool("slow", slow),
		zap.Int64("duration_ms", delay.Milliseconds()),
	)
	if p.metrics != nil {
		p.metrics.RecordStage("render_pages", time.Since(start), slow)
	}
	return nil
}

// extractContent simulates LLM content extraction
func (p *Processor) extractContent(ctx context.Context) error {
	ctx, span := p.telemetry.Start(ctx, SpanExtract,
		telemetry.WithSpanType(telemetry.TypeLLM),
	)
	defer span.End()

	span.SetTag("model", DefaultStrategy)
	span.SetMetric("tokens_processed", tokensProcessed)

	slow := p.chance(p.extractSlowProb)
	delay := extractBaseline
	if slow {
		delay = extractSlowTime
	}
	span.SetBoolTag("slow_llm", slow)

	start := time.Now()
	if err := p.sleep(ctx, delay); err != nil {
		span.SetError(err)
		return err
	}

	p.log.For(ctx).Info("extracted_content",
		zap.Int("tokens", tokensProcessed),
		zap.Bool("slow", slow),
		zap.Int64("duration_ms", delay.Milliseconds()),
	)
	if p.metrics != nil {
		p.metrics.RecordStage("llm_extract", time.Since(start), slow)
	}
	return nil
}

// chance draws once from the processor's random source
func (p *Processor) chance(probability float64) bool {
	p.randMu.Lock()
	defer p.randMu.Unlock()
	return p.rnd.Float64() < probability
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
