package app

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dshills/a11ybus/internal/capture"
	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/dedup"
	"github.com/dshills/a11ybus/internal/event/dispatch"
	"github.com/dshills/a11ybus/internal/event/router"
)

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Keys select the events written to the sink. Empty means every event.
	Keys []string

	// Filter further restricts written events. Nil allows all.
	Filter router.FilterFunc

	// Dedup enables suppression of repeated events when not nil.
	Dedup *dedup.Config

	// Sink receives selected events. Required.
	Sink Sink

	// Recorder, if set, receives every incoming message before decoding.
	Recorder *capture.Writer

	// Logger defaults to NullLogger and Metrics to a fresh tracker.
	Logger  *Logger
	Metrics *Metrics
}

// Pipeline decodes messages, drops repeats and routes the rest to the
// sink. Handle is safe for concurrent use.
type Pipeline struct {
	dispatcher *dispatch.Dispatcher
	router     *router.Router
	dedup      *dedup.Set
	sink       Sink
	recorder   *capture.Writer
	logger     *Logger
	metrics    *Metrics
	now        func() time.Time
	running    atomic.Bool
}

// NewPipeline creates a pipeline over the default dispatcher.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Sink == nil {
		return nil, NewComponentError("pipeline", "create", errors.New("no sink"))
	}
	if cfg.Logger == nil {
		cfg.Logger = NullLogger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}

	d := dispatch.Default()
	p := &Pipeline{
		dispatcher: d,
		sink:       cfg.Sink,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger.WithComponent("pipeline"),
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
	p.router = router.New(
		router.WithCatalog(d),
		router.WithPanicHandler(func(ev event.Event, v any, _ []byte) {
			p.logger.WithField("signal", ev.Signal()).Error("handler panic: %v", v)
		}),
	)
	if cfg.Dedup != nil {
		p.dedup = dedup.New(*cfg.Dedup)
	}

	var opts []router.SubscriptionOption
	if cfg.Filter != nil {
		opts = append(opts, router.WithFilter(cfg.Filter))
	}
	for _, key := range NormalizeKeys(cfg.Keys) {
		if _, err := p.router.SubscribeFunc(key, p.write, opts...); err != nil {
			return nil, NewComponentError("pipeline", "subscribe "+key, err)
		}
	}

	return p, nil
}

// NormalizeKeys drops keys already covered by another key, so each event
// matches at most one of the result. Empty input selects everything.
func NormalizeKeys(keys []string) []string {
	if len(keys) == 0 || slices.Contains(keys, router.AllKey) {
		return []string{router.AllKey}
	}

	tags := make(map[string]bool)
	for _, k := range keys {
		if sig := dispatch.Default().SignalByKey(k); sig == nil {
			tags[k] = true
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if sig := dispatch.Default().SignalByKey(k); sig != nil && tags[sig.RegistryTag()] {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Router returns the pipeline's router for additional subscriptions.
func (p *Pipeline) Router() *router.Router { return p.router }

// Metrics returns the pipeline's metrics.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// Dedup returns the duplicate set, or nil when suppression is off.
func (p *Pipeline) Dedup() *dedup.Set { return p.dedup }

// Handle processes one message. Messages that do not decode are counted,
// logged at debug level and dropped. Only recorder and context failures
// are returned.
func (p *Pipeline) Handle(ctx context.Context, msg event.Message) error {
	timer := StartTimer()
	defer func() { p.metrics.RecordHandle(timer.Elapsed()) }()

	p.metrics.RecordReceived()

	if p.recorder != nil {
		if err := p.recorder.Write(msg); err != nil {
			return NewComponentError("capture", "record", err)
		}
	}

	ev, err := p.dispatcher.Decode(msg)
	if err != nil {
		p.metrics.RecordDecodeFailure()
		p.logger.WithFields(map[string]any{
			"interface": msg.Interface,
			"member":    msg.Member,
			"sender":    msg.Sender,
		}).Debug("dropping message: %v", err)
		return nil
	}
	p.metrics.RecordDecoded(ev.Signal().RegistryTag())

	if p.dedup != nil && p.dedup.Seen(ev) {
		p.metrics.RecordDuplicate()
		return nil
	}

	if err := p.router.Route(ctx, ev); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.logger.WithField("signal", ev.Signal()).Error("%v", err)
	}
	return nil
}

func (p *Pipeline) write(_ context.Context, ev event.Event) error {
	if err := p.sink.Write(NewRecord(ev, p.now())); err != nil {
		p.metrics.RecordSinkFailure()
		return NewComponentError("sink", "write", err)
	}
	p.metrics.RecordWritten()
	return nil
}

// Run feeds src through Handle until src ends. Unreadable input is counted
// as a decode failure.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	return src.Listen(ctx, func(msg event.Message) error {
		return p.Handle(ctx, msg)
	}, func(err error) {
		p.metrics.RecordReceived()
		p.metrics.RecordDecodeFailure()
		p.logger.Debug("unreadable input: %v", err)
	})
}
