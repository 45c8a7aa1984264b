package app

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dshills/a11ybus/internal/capture"
	"github.com/dshills/a11ybus/internal/event"
)

// Source delivers incoming messages to fn until ctx is done, the source is
// exhausted or fn fails. Messages the source cannot read go to onErr.
// *atspibus.Conn is a Source.
type Source interface {
	Listen(ctx context.Context, fn func(event.Message) error, onErr func(error)) error
}

// ReaderSource reads a capture stream once.
type ReaderSource struct {
	R io.Reader
}

// Listen implements Source. Malformed lines go to onErr; a line too long to
// read stops the source.
func (s ReaderSource) Listen(ctx context.Context, fn func(event.Message) error, onErr func(error)) error {
	r := capture.NewReader(s.R)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var lerr *capture.LineError
			if !errors.As(err, &lerr) || errors.Is(err, capture.ErrLineTooLong) {
				return err
			}
			if onErr != nil {
				onErr(err)
			}
			continue
		}

		if err := fn(msg); err != nil {
			return err
		}
	}
}

// FileSource reads a capture file, or standard input for "-". With Follow
// set it keeps delivering appended lines.
type FileSource struct {
	Path    string
	Follow  bool
	FromEnd bool
}

// Listen implements Source.
func (s FileSource) Listen(ctx context.Context, fn func(event.Message) error, onErr func(error)) error {
	if s.Follow {
		opts := []capture.FollowOption{capture.OnLineError(onErr)}
		if s.FromEnd {
			opts = append(opts, capture.FromEnd())
		}
		return capture.Follow(ctx, s.Path, fn, opts...)
	}

	if s.Path == "-" {
		return ReaderSource{R: os.Stdin}.Listen(ctx, fn, onErr)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReaderSource{R: f}.Listen(ctx, fn, onErr)
}
