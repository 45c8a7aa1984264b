package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/dispatch"
	"github.com/dshills/a11ybus/internal/event/events"
)

var testItem = event.Accessible{Name: ":1.7", Path: "/org/a11y/atspi/accessible/12"}

func sampleMessages() []event.Message {
	return []event.Message{
		dispatch.Encode(events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 1}),
		dispatch.Encode(events.ChildrenChanged{Item: testItem, Operation: "add", IndexInParent: 3, Child: testItem}),
		dispatch.Encode(events.ObjectPropertyChange{Item: testItem, Property: events.KeyRole, Value: events.RoleProperty(events.RoleMenuBar)}),
		dispatch.Encode(events.TextChanged{Item: testItem, Operation: "insert", StartPos: 1, Length: 2, Text: "hé"}),
	}
}

func messagesEqual(a, b event.Message) bool {
	return a.Interface == b.Interface &&
		a.Member == b.Member &&
		a.Sender == b.Sender &&
		a.Path == b.Path &&
		a.Body.Equal(b.Body)
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	msgs := sampleMessages()
	for _, m := range msgs {
		if err := w.Write(m); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if w.Count() != len(msgs) {
		t.Errorf("expected count %d, got %d", len(msgs), w.Count())
	}
	if lines := strings.Count(buf.String(), "\n"); lines != len(msgs) {
		t.Errorf("expected %d lines, got %d", len(msgs), lines)
	}

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(got))
	}
	for i := range msgs {
		if !messagesEqual(got[i], msgs[i]) {
			t.Errorf("message %d: expected %+v, got %+v", i, msgs[i], got[i])
		}
	}
}

func TestReadDecodesThroughDispatcher(t *testing.T) {
	input := `{"interface":"org.a11y.atspi.Event.Object","member":"PropertyChange","sender":":1.7","path":"/a","body":{"kind":"accessible-role","detail1":0,"detail2":0,"any_data":{"type":"u","value":34},"properties":{}}}`

	r := NewReader(strings.NewReader(input))
	msg, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev, err := dispatch.Default().Decode(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pc := ev.(events.ObjectPropertyChange)
	if role, _ := pc.Value.Role(); role != events.RoleMenuBar {
		t.Errorf("expected menu bar, got %s", role)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderSkipsBlankLinesAndReportsBadOnes(t *testing.T) {
	good := `{"interface":"org.a11y.atspi.Event.Focus","member":"Focus","sender":":1.2","path":"/b","body":{"kind":"","detail1":0,"detail2":0,"any_data":null}}`
	input := "\n" + good + "\n\n{not json}\n" + `{"member":"Focus"}` + "\n" + good + "\n"

	r := NewReader(strings.NewReader(input))

	msg, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Member != "Focus" || msg.Body.Properties == nil {
		t.Errorf("unexpected message %+v", msg)
	}

	var le *LineError
	_, err = r.Next()
	if !errors.As(err, &le) || le.Line != 4 {
		t.Fatalf("expected line error on line 4, got %v", err)
	}
	_, err = r.Next()
	if !errors.As(err, &le) || le.Line != 5 {
		t.Fatalf("expected line error on line 5, got %v", err)
	}

	if _, err := r.Next(); err != nil {
		t.Errorf("expected reading to continue, got %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderLineTooLong(t *testing.T) {
	input := strings.Repeat("x", MaxLineSize+1) + "\n"
	_, err := NewReader(strings.NewReader(input)).Next()
	if !errors.Is(err, ErrLineTooLong) {
		t.Errorf("expected ErrLineTooLong, got %v", err)
	}
}

func writeLines(t *testing.T, path string, msgs []event.Message) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := NewWriter(f)
	for _, m := range msgs {
		if err := w.Write(m); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.jsonl")
	msgs := sampleMessages()
	writeLines(t, path, msgs[:2])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan event.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, func(m event.Message) error {
			got <- m
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-ctx.Done():
			t.Fatal("timed out waiting for existing lines")
		}
	}

	writeLines(t, path, msgs[2:])

	for i := 2; i < len(msgs); i++ {
		select {
		case m := <-got:
			if !messagesEqual(m, msgs[i]) {
				t.Errorf("message %d: expected %+v, got %+v", i, msgs[i], m)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for appended lines")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFollowFromEndAndCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.jsonl")
	msgs := sampleMessages()
	writeLines(t, path, msgs[:1])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := errors.New("stop")
	var first event.Message
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, func(m event.Message) error {
			first = m
			return stop
		}, FromEnd())
	}()

	// Give the watcher time to start before appending.
	time.Sleep(100 * time.Millisecond)
	writeLines(t, path, msgs[1:2])

	select {
	case err := <-done:
		if !errors.Is(err, stop) {
			t.Fatalf("expected callback error, got %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out")
	}
	if !messagesEqual(first, msgs[1]) {
		t.Errorf("expected the appended message, got %+v", first)
	}
}

func TestFollowMissingFile(t *testing.T) {
	err := Follow(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"), func(event.Message) error { return nil })
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestTailerPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.jsonl")
	msg := sampleMessages()[0]

	var buf bytes.Buffer
	_ = NewWriter(&buf).Write(msg)
	line := buf.Bytes()
	half := len(line) / 2

	if err := os.WriteFile(path, line[:half], 0o644); err != nil {
		t.Fatal(err)
	}

	var got []event.Message
	tl := &tailer{path: path, fn: func(m event.Message) error {
		got = append(got, m)
		return nil
	}}
	if err := tl.open(); err != nil {
		t.Fatal(err)
	}
	defer tl.close()

	if err := tl.drain(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no message from a partial line, got %d", len(got))
	}

	f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	_, _ = f.Write(line[half:])
	_ = f.Close()

	if err := tl.drain(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !messagesEqual(got[0], msg) {
		t.Errorf("expected the completed message, got %+v", got)
	}
}
