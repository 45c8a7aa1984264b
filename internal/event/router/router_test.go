package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/dispatch"
	"github.com/dshills/a11ybus/internal/event/events"
)

var testItem = event.Accessible{Name: ":1.5", Path: "/org/a11y/atspi/accessible/3"}

func noop(context.Context, event.Event) error { return nil }

func TestSubscribeValidation(t *testing.T) {
	r := New(WithCatalog(dispatch.Default()))

	tests := []struct {
		key     string
		wantErr error
	}{
		{"", ErrEmptyKey},
		{"Object:", nil},
		{"Object:StateChanged", nil},
		{AllKey, nil},
		{"Nope:", ErrUnknownKey},
		{"Object:Nope", ErrUnknownKey},
		{"object:StateChanged", ErrUnknownKey},
	}

	for _, tt := range tests {
		_, err := r.SubscribeFunc(tt.key, noop)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("key %q: expected %v, got %v", tt.key, tt.wantErr, err)
		}
	}

	if _, err := r.Subscribe("Object:", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestSubscribeWithoutCatalogAcceptsAnyKey(t *testing.T) {
	r := New()
	if _, err := r.SubscribeFunc("Custom:Thing", noop); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRouteMatchesTagSignalAndAll(t *testing.T) {
	r := New()

	var got []string
	record := func(name string) HandlerFunc {
		return func(context.Context, event.Event) error {
			got = append(got, name)
			return nil
		}
	}

	_, _ = r.Subscribe(AllKey, record("all"))
	_, _ = r.Subscribe(events.ObjectTag, record("tag"))
	_, _ = r.Subscribe("Object:StateChanged", record("signal"))
	_, _ = r.Subscribe("Object:TextCaretMoved", record("other-signal"))
	_, _ = r.Subscribe(events.WindowTag, record("other-tag"))

	if err := r.Route(context.Background(), events.StateChanged{Item: testItem}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"all", "tag", "signal"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRoutePriorityOrder(t *testing.T) {
	r := New()

	var got []Priority
	add := func(key string, p Priority) {
		_, err := r.SubscribeFunc(key, func(context.Context, event.Event) error {
			got = append(got, p)
			return nil
		}, WithPriority(p))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	add("Focus:Focus", PriorityLow)
	add(events.FocusTag, PriorityNormal)
	add(AllKey, PriorityHigh)
	add("Focus:Focus", PriorityCritical)

	_ = r.Route(context.Background(), events.Focus{Item: testItem})

	want := []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRouteJoinsErrorsAndIsolatesPanics(t *testing.T) {
	var panics int
	r := New(WithPanicHandler(func(event.Event, any, []byte) { panics++ }))

	boom := errors.New("boom")
	var reached bool

	_, _ = r.SubscribeFunc(AllKey, func(context.Context, event.Event) error { return boom }, WithPriority(PriorityCritical))
	panicky, _ := r.SubscribeFunc(AllKey, func(context.Context, event.Event) error { panic("kaboom") }, WithPriority(PriorityHigh))
	_, _ = r.SubscribeFunc(AllKey, func(context.Context, event.Event) error {
		reached = true
		return nil
	}, WithPriority(PriorityLow))

	err := r.Route(context.Background(), events.Focus{Item: testItem})

	if !reached {
		t.Error("expected delivery to continue after a panic")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to contain boom, got %v", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PanicError, got %v", err)
	}
	if pe.SubscriptionID != panicky.ID() || pe.Value != "kaboom" {
		t.Errorf("unexpected panic error: %+v", pe)
	}
	if len(pe.Stack) == 0 {
		t.Error("expected a stack trace")
	}
	if panics != 1 {
		t.Errorf("expected panic handler to run once, got %d", panics)
	}

	stats := r.Stats()
	if stats.Failed != 1 || stats.Panicked != 1 || stats.Delivered != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRouteFilterPauseAndOnce(t *testing.T) {
	r := New()

	var filtered, paused, once int
	_, _ = r.SubscribeFunc(AllKey, func(context.Context, event.Event) error {
		filtered++
		return nil
	}, WithFilter(func(ev event.Event) bool {
		sc, ok := ev.(events.StateChanged)
		return ok && sc.State == events.StateFocused
	}))
	pausedSub, _ := r.SubscribeFunc(AllKey, func(context.Context, event.Event) error {
		paused++
		return nil
	})
	_, _ = r.SubscribeFunc(AllKey, func(context.Context, event.Event) error {
		once++
		return nil
	}, WithOnce())

	pausedSub.Pause()

	ctx := context.Background()
	_ = r.Route(ctx, events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 1})
	_ = r.Route(ctx, events.StateChanged{Item: testItem, State: events.StateBusy, Enabled: 1})

	pausedSub.Resume()
	_ = r.Route(ctx, events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 0})

	if filtered != 2 {
		t.Errorf("expected filtered handler to run 2 times, got %d", filtered)
	}
	if paused != 1 {
		t.Errorf("expected paused handler to run once after resume, got %d", paused)
	}
	if once != 1 {
		t.Errorf("expected once handler to run once, got %d", once)
	}
	if r.Count() != 2 {
		t.Errorf("expected once subscription to be pruned, got count %d", r.Count())
	}
}

func TestRouteCancelledContext(t *testing.T) {
	r := New()

	var calls int
	_, _ = r.SubscribeFunc(AllKey, func(context.Context, event.Event) error {
		calls++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Route(ctx, events.Focus{Item: testItem})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no handler calls, got %d", calls)
	}
	if r.Stats().Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", r.Stats().Skipped)
	}
}

func TestRouteTimeout(t *testing.T) {
	r := New(WithTimeout(10 * time.Millisecond))

	_, _ = r.SubscribeFunc(AllKey, func(ctx context.Context, _ event.Event) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := r.Route(context.Background(), events.Focus{Item: testItem})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	r := New()

	sub, _ := r.SubscribeFunc(events.MouseTag, noop)
	if r.Count() != 1 {
		t.Fatalf("expected count 1, got %d", r.Count())
	}
	if !r.Unsubscribe(sub.ID()) {
		t.Error("expected Unsubscribe to succeed")
	}
	if r.Unsubscribe(sub.ID()) {
		t.Error("expected second Unsubscribe to fail")
	}
	if !sub.IsCancelled() {
		t.Error("expected subscription to be cancelled")
	}
	if len(r.Keys()) != 0 {
		t.Errorf("expected no keys, got %v", r.Keys())
	}

	_ = r.Route(context.Background(), events.MouseAbs{Item: testItem})
	if r.Stats().Unmatched != 1 {
		t.Errorf("expected 1 unmatched, got %d", r.Stats().Unmatched)
	}
}

func TestRouteConcurrentSubscribe(t *testing.T) {
	r := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := r.SubscribeFunc(events.KeyboardTag, noop)
			if err == nil {
				sub.Cancel()
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.Route(ctx, events.KeyboardModifiers{Item: testItem})
		}()
	}
	wg.Wait()

	if r.Stats().Routed != 16 {
		t.Errorf("expected 16 routed, got %d", r.Stats().Routed)
	}
}

func TestPriorityString(t *testing.T) {
	tests := []struct {
		p    Priority
		want string
	}{
		{PriorityCritical, "critical"},
		{PriorityHigh, "high"},
		{150, "normal"},
		{PriorityLow, "low"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
