package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dshills/a11ybus/internal/capture"
	"github.com/dshills/a11ybus/internal/config"
	"github.com/dshills/a11ybus/internal/event/dedup"
	"github.com/dshills/a11ybus/internal/event/dispatch"
	"github.com/dshills/a11ybus/internal/event/matchrule"
	"github.com/dshills/a11ybus/internal/event/router"
	"github.com/dshills/a11ybus/internal/event/script"
	"github.com/dshills/a11ybus/internal/transport/atspibus"
)

// App owns the pipeline built from a configuration and the files it
// writes to.
type App struct {
	cfg      *config.Config
	logger   *Logger
	metrics  *Metrics
	pipeline *Pipeline
	sink     Sink
	filter   *script.Filter
	closers  []io.Closer
	closed   atomic.Bool
}

// Option configures New.
type Option func(*appOptions)

type appOptions struct {
	output io.Writer
	logger *Logger
}

// WithOutput sends sink output to w instead of the configured path.
func WithOutput(w io.Writer) Option {
	return func(o *appOptions) { o.output = w }
}

// WithLogger replaces the configured logger.
func WithLogger(l *Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// New builds the application from cfg. On error every file already opened
// is closed.
func New(cfg *config.Config, opts ...Option) (_ *App, err error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, metrics: NewMetrics()}
	defer func() {
		if err != nil {
			if a.filter != nil {
				a.filter.Close()
			}
			a.closeFiles()
		}
	}()

	a.logger = o.logger
	if a.logger == nil {
		logger, closer, err := OpenLogger(cfg.Log.Level, cfg.Log.Output)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
		}
		a.logger = logger
		a.closers = append(a.closers, closer)
	}

	out := o.output
	if out == nil {
		out = os.Stdout
		if cfg.Output.Path != "" {
			f, err := os.Create(cfg.Output.Path)
			if err != nil {
				return nil, NewComponentError("sink", "open", err)
			}
			a.closers = append(a.closers, f)
			out = f
		}
	}
	if a.sink, err = NewSink(cfg.Output.Format, out); err != nil {
		return nil, err
	}

	pcfg := PipelineConfig{
		Keys:    cfg.Filter.Keys,
		Sink:    a.sink,
		Logger:  a.logger,
		Metrics: a.metrics,
	}

	if cfg.Filter.Script != "" {
		a.filter, err = script.Load(cfg.Filter.Script, script.WithTimeout(cfg.Filter.ScriptTimeout.Std()))
		if err != nil {
			return nil, NewComponentError("script", "load", err)
		}
		log := a.logger.WithComponent("script")
		pcfg.Filter = router.FilterFunc(a.filter.Predicate(func(err error) {
			a.metrics.RecordScriptFailure()
			log.Warn("%v", err)
		}))
	}

	if cfg.Dedup.Enabled {
		pcfg.Dedup = &dedup.Config{
			MaxBuckets: cfg.Dedup.Size,
			TTL:        cfg.Dedup.Window.Std(),
		}
	}

	if cfg.Capture.Record != "" {
		f, err := os.OpenFile(cfg.Capture.Record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, NewComponentError("capture", "open", err)
		}
		a.closers = append(a.closers, f)
		pcfg.Recorder = capture.NewWriter(f)
	}

	if a.pipeline, err = NewPipeline(pcfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Pipeline returns the application's pipeline.
func (a *App) Pipeline() *Pipeline { return a.pipeline }

// Logger returns the application's logger.
func (a *App) Logger() *Logger { return a.logger }

// Decode runs the pipeline over a capture stream.
func (a *App) Decode(ctx context.Context, r io.Reader) error {
	if a.closed.Load() {
		return ErrClosed
	}
	return a.pipeline.Run(ctx, ReaderSource{R: r})
}

// Replay runs the pipeline over a capture file, following appended lines
// when follow is set.
func (a *App) Replay(ctx context.Context, path string, follow bool) error {
	if a.closed.Load() {
		return ErrClosed
	}
	return a.pipeline.Run(ctx, FileSource{
		Path:    path,
		Follow:  follow,
		FromEnd: a.cfg.Capture.FromEnd,
	})
}

// Monitor connects to the accessibility bus and runs the pipeline until
// ctx is done.
func (a *App) Monitor(ctx context.Context) error {
	if a.closed.Load() {
		return ErrClosed
	}

	conn, err := atspibus.Dial(ctx,
		atspibus.WithAddress(a.cfg.Bus.Address),
		atspibus.WithBufferSize(a.cfg.Bus.BufferSize),
	)
	if err != nil {
		return NewComponentError("bus", "dial", err)
	}
	defer conn.Close()

	for _, rule := range MatchRules(a.cfg.Bus.Groups) {
		if err := conn.AddMatch(rule); err != nil {
			return NewComponentError("bus", "add match", err)
		}
		a.logger.Debug("added match rule %s", rule)
	}

	a.logger.Info("monitoring %d interface groups", len(conn.Rules()))
	return a.pipeline.Run(ctx, conn)
}

// MatchRules returns one interface rule per registry tag, or per group
// when tags is empty. Unknown tags are skipped.
func MatchRules(tags []string) []matchrule.Rule {
	d := dispatch.Default()
	if len(tags) == 0 {
		var rules []matchrule.Rule
		for _, g := range d.Groups() {
			rules = append(rules, matchrule.ForInterface(g.Interface()))
		}
		return rules
	}

	var rules []matchrule.Rule
	for _, tag := range tags {
		if g := d.GroupByTag(tag); g != nil {
			rules = append(rules, matchrule.ForInterface(g.Interface()))
		}
	}
	return rules
}

// Close flushes the sink, releases the filter, closes opened files and
// logs a summary.
func (a *App) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := a.sink.Close(); err != nil {
		errs = append(errs, NewComponentError("sink", "close", err))
	}
	if a.filter != nil {
		a.filter.Close()
	}

	s := a.metrics.Snapshot()
	a.logger.WithFields(map[string]any{
		"received":   s.Received,
		"decoded":    s.Decoded,
		"failed":     s.DecodeFailures,
		"duplicates": s.Duplicates,
		"written":    s.Written,
	}).Info("pipeline finished")

	errs = append(errs, a.closeFiles())
	return errors.Join(errs...)
}

func (a *App) closeFiles() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
