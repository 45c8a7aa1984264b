package app

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/a11ybus/internal/capture"
	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/dedup"
	"github.com/dshills/a11ybus/internal/event/dispatch"
	"github.com/dshills/a11ybus/internal/event/events"
	"github.com/dshills/a11ybus/internal/event/router"
)

type memSink struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (s *memSink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Key
	}
	return out
}

func newTestPipeline(t *testing.T, cfg PipelineConfig) (*Pipeline, *memSink) {
	t.Helper()
	sink := &memSink{}
	cfg.Sink = sink
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p, sink
}

func TestPipelineRequiresSink(t *testing.T) {
	if _, err := NewPipeline(PipelineConfig{}); err == nil {
		t.Error("expected error without a sink")
	}
}

func TestPipelineHandle(t *testing.T) {
	p, sink := newTestPipeline(t, PipelineConfig{})
	ctx := context.Background()

	msgs := []event.Message{
		dispatch.Encode(events.Focus{Item: testItem}),
		{Interface: "org.a11y.atspi.Event.Nope", Member: "X", Body: event.NewBody()},
		dispatch.Encode(events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 1}),
	}
	for _, msg := range msgs {
		if err := p.Handle(ctx, msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	keys := sink.keys()
	if len(keys) != 2 || keys[0] != "Focus:Focus" || keys[1] != "Object:StateChanged" {
		t.Errorf("unexpected records %v", keys)
	}

	s := p.Metrics().Snapshot()
	if s.Received != 3 || s.Decoded != 2 || s.DecodeFailures != 1 || s.Written != 2 {
		t.Errorf("unexpected metrics %+v", s)
	}
}

func TestPipelineKeysAndFilter(t *testing.T) {
	p, sink := newTestPipeline(t, PipelineConfig{
		Keys:   []string{events.ObjectTag, "Object:StateChanged", events.MouseTag},
		Filter: router.FilterExcludeSender(":1.99"),
	})
	ctx := context.Background()

	noisy := event.Accessible{Name: ":1.99", Path: "/x"}
	for _, ev := range []event.Event{
		events.StateChanged{Item: testItem, State: events.StateBusy},
		events.Focus{Item: testItem},
		events.MouseAbs{Item: testItem, X: 1, Y: 2},
		events.MouseAbs{Item: noisy, X: 1, Y: 2},
	} {
		_ = p.Handle(ctx, dispatch.Encode(ev))
	}

	keys := sink.keys()
	if len(keys) != 2 || keys[0] != "Object:StateChanged" || keys[1] != "Mouse:Abs" {
		t.Errorf("expected one record per selected event, got %v", keys)
	}
	if p.Router().Count() != 2 {
		t.Errorf("expected covered key to be dropped, got %d subscriptions", p.Router().Count())
	}
}

func TestNormalizeKeys(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{"*"}},
		{[]string{"Object:", "*"}, []string{"*"}},
		{[]string{"Object:StateChanged", "Object:"}, []string{"Object:"}},
		{[]string{"Focus:Focus", "Focus:Focus", "Window:"}, []string{"Focus:Focus", "Window:"}},
	}
	for _, tt := range tests {
		got := NormalizeKeys(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("NormalizeKeys(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestPipelineDedup(t *testing.T) {
	p, sink := newTestPipeline(t, PipelineConfig{
		Dedup: &dedup.Config{MaxBuckets: 16, TTL: time.Minute},
	})
	ctx := context.Background()

	a := events.ObjectPropertyChange{Item: testItem, Property: events.KeyName, Value: events.NameProperty("OK")}
	b := events.ObjectPropertyChange{Item: testItem, Property: events.KeyName, Value: events.NameProperty("Cancel")}

	for _, ev := range []event.Event{a, a, b, a} {
		_ = p.Handle(ctx, dispatch.Encode(ev))
	}

	if n := len(sink.keys()); n != 2 {
		t.Errorf("expected 2 records, got %d", n)
	}
	if d := p.Metrics().Snapshot().Duplicates; d != 2 {
		t.Errorf("expected 2 duplicates, got %d", d)
	}
	if p.Dedup().Stats().Collisions != 1 {
		t.Errorf("expected one hash collision, got %d", p.Dedup().Stats().Collisions)
	}
}

func TestPipelineRecorder(t *testing.T) {
	var buf bytes.Buffer
	p, _ := newTestPipeline(t, PipelineConfig{Recorder: capture.NewWriter(&buf)})

	msg := event.Message{Interface: "org.a11y.atspi.Event.Nope", Member: "X", Body: event.NewBody()}
	_ = p.Handle(context.Background(), msg)
	_ = p.Handle(context.Background(), dispatch.Encode(events.Focus{Item: testItem}))

	got, err := capture.ReadAll(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Interface != msg.Interface {
		t.Errorf("expected every message to be recorded, got %v", got)
	}
}

func TestPipelineSinkFailure(t *testing.T) {
	var logs bytes.Buffer
	p, sink := newTestPipeline(t, PipelineConfig{Logger: fixedLogger(&logs, LogLevelDebug)})
	sink.err = errors.New("disk full")

	if err := p.Handle(context.Background(), dispatch.Encode(events.Focus{Item: testItem})); err != nil {
		t.Errorf("expected sink errors to be logged, got %v", err)
	}
	if p.Metrics().Snapshot().SinkFailures != 1 {
		t.Error("expected a sink failure")
	}
	if !strings.Contains(logs.String(), "disk full") {
		t.Errorf("expected error to be logged, got %q", logs.String())
	}
}

func TestPipelineRunCapture(t *testing.T) {
	var in bytes.Buffer
	w := capture.NewWriter(&in)
	_ = w.Write(dispatch.Encode(events.Focus{Item: testItem}))
	in.WriteString("{not json}\n")
	_ = w.Write(dispatch.Encode(events.WindowActivate{Item: testItem}))

	p, sink := newTestPipeline(t, PipelineConfig{})
	if err := p.Run(context.Background(), ReaderSource{R: &in}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if keys := sink.keys(); len(keys) != 2 || keys[1] != "Window:Activate" {
		t.Errorf("unexpected records %v", keys)
	}
	s := p.Metrics().Snapshot()
	if s.Received != 3 || s.DecodeFailures != 1 {
		t.Errorf("expected the bad line to count as a failure, got %+v", s)
	}
}

type blockingSource struct {
	started chan struct{}
}

func (s blockingSource) Listen(ctx context.Context, _ func(event.Message) error, _ func(error)) error {
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestPipelineRunTwice(t *testing.T) {
	p, _ := newTestPipeline(t, PipelineConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	src := blockingSource{started: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, src) }()
	<-src.started

	if err := p.Run(ctx, ReaderSource{R: strings.NewReader("")}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReaderSourceStopsOnHandlerError(t *testing.T) {
	var in bytes.Buffer
	w := capture.NewWriter(&in)
	_ = w.Write(dispatch.Encode(events.Focus{Item: testItem}))
	_ = w.Write(dispatch.Encode(events.Focus{Item: testItem}))

	stop := errors.New("stop")
	calls := 0
	err := ReaderSource{R: &in}.Listen(context.Background(), func(event.Message) error {
		calls++
		return stop
	}, nil)

	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("expected stop after one call, got %v after %d", err, calls)
	}
}

func TestPipelineRecordsNonFiniteDoubles(t *testing.T) {
	var buf bytes.Buffer
	p, sink := newTestPipeline(t, PipelineConfig{Recorder: capture.NewWriter(&buf)})

	nan := events.ObjectPropertyChange{
		Item:     testItem,
		Property: "x-ratio",
		Value:    events.OtherProperty("x-ratio", event.Double(math.NaN())),
	}
	src := sliceSource{dispatch.Encode(nan), dispatch.Encode(events.Focus{Item: testItem})}

	if err := p.Run(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if keys := sink.keys(); len(keys) != 2 || keys[1] != "Focus:Focus" {
		t.Errorf("expected both events written, got %v", keys)
	}

	got, err := capture.ReadAll(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recorded messages, got %d", len(got))
	}
	f, ok := got[0].Body.AnyData.AsDouble()
	if !ok || !math.IsNaN(f) {
		t.Errorf("expected NaN to survive recording, got %s", got[0].Body.AnyData)
	}
}

type sliceSource []event.Message

func (s sliceSource) Listen(_ context.Context, fn func(event.Message) error, _ func(error)) error {
	for _, msg := range s {
		if err := fn(msg); err != nil {
			return err
		}
	}
	return nil
}
