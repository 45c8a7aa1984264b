package app

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dshills/a11ybus/internal/config"
	"github.com/dshills/a11ybus/internal/event"
)

// Record is one decoded event as written by a sink.
type Record struct {
	ID        string         `json:"id" yaml:"id"`
	Time      time.Time      `json:"time" yaml:"time"`
	Key       string         `json:"key" yaml:"key"`
	Interface string         `json:"interface" yaml:"interface"`
	Member    string         `json:"member" yaml:"member"`
	Sender    string         `json:"sender" yaml:"sender"`
	Path      string         `json:"path" yaml:"path"`
	Summary   string         `json:"summary" yaml:"summary"`
	Body      map[string]any `json:"body" yaml:"body"`
}

// NewRecord describes ev. The body is the event's canonical encoding with
// dynamic values flattened to plain Go values.
func NewRecord(ev event.Event, at time.Time) Record {
	sig := ev.Signal()
	src := ev.Source()
	body := ev.Body()

	return Record{
		ID:        uuid.NewString(),
		Time:      at,
		Key:       sig.Key(),
		Interface: sig.Interface(),
		Member:    sig.Member(),
		Sender:    src.Name,
		Path:      src.Path,
		Summary:   Summarize(ev),
		Body: map[string]any{
			"kind":     body.Kind,
			"detail1":  body.Detail1,
			"detail2":  body.Detail2,
			"any_data": Plain(body.AnyData),
		},
	}
}

// Summarize renders the variant's fields other than its item as
// "Name=value" pairs.
func Summarize(ev event.Event) string {
	rv := reflect.ValueOf(ev)
	if rv.Kind() != reflect.Struct {
		return ""
	}

	var parts []string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Name == "Item" || !f.IsExported() {
			continue
		}
		v := rv.Field(i).Interface()
		if s, ok := v.(string); ok {
			v = fmt.Sprintf("%q", s)
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f.Name, v))
	}
	return strings.Join(parts, " ")
}

// Plain converts a dynamic value to strings, numbers, slices and maps.
func Plain(v event.Value) any {
	switch v.Kind() {
	case event.KindByte:
		x, _ := v.AsByte()
		return x
	case event.KindBool:
		x, _ := v.AsBool()
		return x
	case event.KindInt16:
		x, _ := v.AsInt16()
		return x
	case event.KindUint16:
		x, _ := v.AsUint16()
		return x
	case event.KindInt32:
		x, _ := v.AsInt32()
		return x
	case event.KindUint32:
		x, _ := v.AsUint32()
		return x
	case event.KindInt64:
		x, _ := v.AsInt64()
		return x
	case event.KindUint64:
		x, _ := v.AsUint64()
		return x
	case event.KindDouble:
		x, _ := v.AsDouble()
		return x
	case event.KindString:
		x, _ := v.AsString()
		return x
	case event.KindObjectPath:
		x, _ := v.AsObjectPath()
		return x
	case event.KindSignature:
		x, _ := v.AsSignature()
		return x
	case event.KindArray, event.KindStruct:
		elems, _ := v.Elems()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = Plain(e)
		}
		return out
	case event.KindDict:
		m, _ := v.AsDict()
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = Plain(e)
		}
		return out
	}
	return nil
}

// Sink receives records. Implementations are safe for concurrent use.
type Sink interface {
	Write(rec Record) error
	Close() error
}

// NewSink returns the sink for a configured output format.
func NewSink(format string, w io.Writer) (Sink, error) {
	switch format {
	case config.FormatText:
		return NewTextSink(w), nil
	case config.FormatJSON:
		return NewJSONSink(w), nil
	case config.FormatYAML:
		return NewYAMLSink(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// TextSink writes one line per record.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextSink creates a text sink.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Write writes rec as a line.
func (s *TextSink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %s %s %s", rec.Time.Format("15:04:05.000"), rec.Key, rec.Sender, rec.Path)
	if rec.Summary != "" {
		line += " " + rec.Summary
	}
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Close implements Sink.
func (s *TextSink) Close() error { return nil }

// JSONSink writes one JSON object per line.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink creates a JSON lines sink.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Write encodes rec.
func (s *JSONSink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

// Close implements Sink.
func (s *JSONSink) Close() error { return nil }

// YAMLSink writes one YAML document per record.
type YAMLSink struct {
	mu  sync.Mutex
	enc *yaml.Encoder
}

// NewYAMLSink creates a YAML stream sink.
func NewYAMLSink(w io.Writer) *YAMLSink {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLSink{enc: enc}
}

// Write encodes rec as a document.
func (s *YAMLSink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

// Close flushes the encoder.
func (s *YAMLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Close()
}
