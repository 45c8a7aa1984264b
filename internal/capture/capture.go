package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/a11ybus/internal/event"
)

// MaxLineSize bounds a single capture line.
const MaxLineSize = 1 << 20

// ErrLineTooLong is returned for a line longer than MaxLineSize.
var ErrLineTooLong = errors.New("capture line too long")

// LineError reports a line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("capture line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader decodes messages from a capture stream.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{sc: sc}
}

// Next returns the next message. It returns io.EOF after the last one. A
// malformed line returns a *LineError; reading may continue after it.
func (r *Reader) Next() (event.Message, error) {
	for r.sc.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		msg, err := decodeLine(raw)
		if err != nil {
			return event.Message{}, &LineError{Line: r.line, Err: err}
		}
		return msg, nil
	}

	if err := r.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return event.Message{}, &LineError{Line: r.line + 1, Err: ErrLineTooLong}
		}
		return event.Message{}, err
	}
	return event.Message{}, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int { return r.line }

// ReadAll returns every message in r, stopping at the first error.
func ReadAll(r io.Reader) ([]event.Message, error) {
	cr := NewReader(r)
	var out []event.Message
	for {
		msg, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
}

func decodeLine(raw []byte) (event.Message, error) {
	var msg event.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return event.Message{}, err
	}
	if msg.Interface == "" {
		return event.Message{}, errors.New("missing interface")
	}
	if msg.Body.Properties == nil {
		msg.Body.Properties = make(map[string]event.Value)
	}
	return msg, nil
}

// Writer encodes messages as JSON lines. It is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	count int
}

// NewWriter returns a writer to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one message as a single line. The line is written with a
// single Write call so concurrent readers never see a partial record
// followed by another record.
func (w *Writer) Write(msg event.Message) error {
	if msg.Body.Properties == nil {
		msg.Body.Properties = map[string]event.Value{}
	}
	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode capture line: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.Write(line); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of messages written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
