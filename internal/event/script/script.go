// Package script filters accessibility events with a Lua predicate.
//
// A script defines a global function accept(ev) returning a boolean. ev is
// a table with the fields
//
//	interface, member, tag, key   -- signal identity
//	sender, path                  -- the event's item
//	kind, detail1, detail2        -- wire body scalars
//	any_data                      -- the body payload, converted to Lua
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are opened, and dofile, loadfile, load and loadstring are
// removed.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/a11ybus/internal/event"
)

// DefaultTimeout bounds a single accept call.
const DefaultTimeout = 100 * time.Millisecond

// Errors for filter operations.
var (
	// ErrFilterClosed is returned when using a closed filter.
	ErrFilterClosed = errors.New("filter is closed")

	// ErrNoAccept is returned when a script does not define accept.
	ErrNoAccept = errors.New("script does not define an accept function")
)

// ScriptError reports a Lua failure in a named script.
type ScriptError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Filter is a compiled Lua predicate.
//
// gopher-lua states are not goroutine-safe; Filter serializes calls with a
// mutex.
type Filter struct {
	mu      sync.Mutex
	name    string
	L       *lua.LState
	accept  *lua.LFunction
	timeout time.Duration
	closed  bool
}

// Option configures a Filter.
type Option func(*Filter)

// WithTimeout bounds each accept call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(f *Filter) {
		f.timeout = d
	}
}

// Compile runs source in a fresh restricted state and resolves accept.
func Compile(name, source string, opts ...Option) (*Filter, error) {
	f := &Filter{name: name, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(f)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, &ScriptError{Name: name, Err: err}
	}

	fn, ok := L.GetGlobal("accept").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, &ScriptError{Name: name, Err: ErrNoAccept}
	}

	f.L = L
	f.accept = fn
	return f, nil
}

// Load compiles the script at path.
func Load(path string, opts ...Option) (*Filter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load filter: %w", err)
	}
	return Compile(path, string(src), opts...)
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Name returns the script name.
func (f *Filter) Name() string { return f.name }

// Accept calls accept(ev) and reports its truthiness.
func (f *Filter) Accept(ctx context.Context, ev event.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false, ErrFilterClosed
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	f.L.SetContext(ctx)
	defer f.L.RemoveContext()

	arg := eventTable(f.L, ev)

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = f.L.CallByParam(lua.P{Fn: f.accept, NRet: 1, Protect: true}, arg)
	}()
	if callErr != nil {
		return false, &ScriptError{Name: f.name, Err: callErr}
	}

	ret := f.L.Get(-1)
	f.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Predicate adapts the filter to a plain predicate for router
// subscriptions. Script errors reject the event and are passed to onErr if
// it is not nil.
func (f *Filter) Predicate(onErr func(error)) func(ev event.Event) bool {
	return func(ev event.Event) bool {
		ok, err := f.Accept(context.Background(), ev)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return false
		}
		return ok
	}
}

// Close releases the Lua state.
func (f *Filter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.L.Close()
}

func eventTable(L *lua.LState, ev event.Event) *lua.LTable {
	sig := ev.Signal()
	item := ev.Source()
	body := ev.Body()

	t := L.NewTable()
	t.RawSetString("interface", lua.LString(sig.Interface()))
	t.RawSetString("member", lua.LString(sig.Member()))
	t.RawSetString("tag", lua.LString(sig.RegistryTag()))
	t.RawSetString("key", lua.LString(sig.Key()))
	t.RawSetString("sender", lua.LString(item.Name))
	t.RawSetString("path", lua.LString(item.Path))
	t.RawSetString("kind", lua.LString(body.Kind))
	t.RawSetString("detail1", lua.LNumber(body.Detail1))
	t.RawSetString("detail2", lua.LNumber(body.Detail2))
	t.RawSetString("any_data", toLua(L, body.AnyData))
	return t
}

// toLua converts a dynamic value. 64-bit integers beyond 2^53 lose
// precision, as Lua numbers are doubles.
func toLua(L *lua.LState, v event.Value) lua.LValue {
	switch v.Kind() {
	case event.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case event.KindByte, event.KindUint16, event.KindUint32, event.KindUint64:
		return lua.LNumber(unsigned(v))
	case event.KindInt16, event.KindInt32, event.KindInt64:
		return lua.LNumber(signed(v))
	case event.KindDouble:
		d, _ := v.AsDouble()
		return lua.LNumber(d)
	case event.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case event.KindObjectPath:
		s, _ := v.AsObjectPath()
		return lua.LString(s)
	case event.KindSignature:
		s, _ := v.AsSignature()
		return lua.LString(s)
	case event.KindArray, event.KindStruct:
		elems, _ := v.Elems()
		t := L.CreateTable(len(elems), 0)
		for i, e := range elems {
			t.RawSetInt(i+1, toLua(L, e))
		}
		return t
	case event.KindDict:
		m, _ := v.AsDict()
		t := L.CreateTable(0, len(m))
		for k, e := range m {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	}
	return lua.LNil
}

func unsigned(v event.Value) float64 {
	switch v.Kind() {
	case event.KindByte:
		n, _ := v.AsByte()
		return float64(n)
	case event.KindUint16:
		n, _ := v.AsUint16()
		return float64(n)
	case event.KindUint32:
		n, _ := v.AsUint32()
		return float64(n)
	}
	n, _ := v.AsUint64()
	return float64(n)
}

func signed(v event.Value) float64 {
	switch v.Kind() {
	case event.KindInt16:
		n, _ := v.AsInt16()
		return float64(n)
	case event.KindInt32:
		n, _ := v.AsInt32()
		return float64(n)
	}
	n, _ := v.AsInt64()
	return float64(n)
}
