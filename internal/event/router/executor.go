package router

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dshills/a11ybus/internal/event"
)

// executor runs handlers with panic recovery and timing.
type executor struct {
	panicHandler PanicHandler
	timeout      time.Duration
}

// execute runs a handler and returns the result.
func (e *executor) execute(ctx context.Context, ev event.Event, handler Handler) (result Result) {
	select {
	case <-ctx.Done():
		return Result{Error: ctx.Err(), Skipped: true}
	default:
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			// A panicking panic handler must not take down the caller.
			if e.panicHandler != nil {
				func() {
					defer func() { _ = recover() }()
					e.panicHandler(ev, r, stack)
				}()
			}
		}
	}()

	if err := handler.Handle(ctx, ev); err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}
