package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/a11ybus/internal/event"
)

// FollowOption configures Follow.
type FollowOption func(*followConfig)

type followConfig struct {
	fromEnd   bool
	onLineErr func(error)
}

// FromEnd skips the lines already in the file.
func FromEnd() FollowOption {
	return func(c *followConfig) {
		c.fromEnd = true
	}
}

// OnLineError receives malformed lines instead of stopping Follow.
func OnLineError(fn func(error)) FollowOption {
	return func(c *followConfig) {
		c.onLineErr = fn
	}
}

// Follow calls fn for each message in the capture file at path, then keeps
// watching the file and calls fn for each appended line until ctx is done
// or fn returns an error. A line is delivered only once its newline has
// been written.
func Follow(ctx context.Context, path string, fn func(event.Message) error, opts ...FollowOption) error {
	var cfg followConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory so replacement of the file is seen.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("follow %s: %w", path, err)
	}

	t := &tailer{path: abs, fn: fn, cfg: cfg}
	if err := t.open(); err != nil {
		return err
	}
	defer t.close()

	if cfg.fromEnd {
		if t.offset, err = t.f.Seek(0, io.SeekEnd); err != nil {
			return err
		}
	}
	if err := t.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				t.close()
				if err := t.open(); err != nil {
					return err
				}
				if err := t.drain(); err != nil {
					return err
				}
			case ev.Has(fsnotify.Write):
				if err := t.drain(); err != nil {
					return err
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("follow %s: %w", path, err)
		}
	}
}

// tailer reads complete lines appended to a file.
type tailer struct {
	path    string
	fn      func(event.Message) error
	cfg     followConfig
	f       *os.File
	offset  int64
	pending []byte
	line    int
}

func (t *tailer) open() error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	t.f = f
	t.offset = 0
	t.pending = t.pending[:0]
	t.line = 0
	return nil
}

func (t *tailer) close() {
	if t.f != nil {
		_ = t.f.Close()
		t.f = nil
	}
}

// drain delivers every complete line written since the last call.
func (t *tailer) drain() error {
	if info, err := t.f.Stat(); err == nil && info.Size() < t.offset {
		// Truncated in place.
		if _, err := t.f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		t.offset = 0
		t.pending = t.pending[:0]
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := t.f.Read(buf)
		if n > 0 {
			t.offset += int64(n)
			t.pending = append(t.pending, buf[:n]...)
			if err := t.deliver(); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (t *tailer) deliver() error {
	for {
		i := bytes.IndexByte(t.pending, '\n')
		if i < 0 {
			if len(t.pending) > MaxLineSize {
				return &LineError{Line: t.line + 1, Err: ErrLineTooLong}
			}
			return nil
		}
		raw := bytes.TrimSpace(t.pending[:i])
		t.pending = t.pending[i+1:]
		t.line++
		if len(raw) == 0 {
			continue
		}

		msg, err := decodeLine(raw)
		if err != nil {
			lerr := &LineError{Line: t.line, Err: err}
			if t.cfg.onLineErr == nil {
				return lerr
			}
			t.cfg.onLineErr(lerr)
			continue
		}
		if err := t.fn(msg); err != nil {
			return err
		}
	}
}
