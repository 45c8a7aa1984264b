package atspibus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/matchrule"
)

// Well-known names of the accessibility bus launcher on the session bus.
const (
	LauncherName      = "org.a11y.Bus"
	LauncherPath      = "/org/a11y/bus"
	LauncherGetAddr   = "org.a11y.Bus.GetAddress"
	AddressEnv        = "AT_SPI_BUS_ADDRESS"
	DefaultBufferSize = 256
)

// ErrClosed is returned by operations on a closed connection.
var ErrClosed = errors.New("accessibility bus connection closed")

// busConn is the part of *dbus.Conn the adapter uses.
type busConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	Close() error
}

// Option configures a connection.
type Option func(*options)

type options struct {
	address string
	buffer  int
}

// WithAddress dials the given bus address instead of asking the launcher.
func WithAddress(addr string) Option {
	return func(o *options) { o.address = addr }
}

// WithBufferSize sets the incoming signal buffer.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// Conn is a connection to the accessibility bus.
type Conn struct {
	bus     busConn
	signals chan *dbus.Signal
	done    chan struct{}

	mu     sync.Mutex
	rules  []matchrule.Rule
	closed bool
}

// Dial connects to the accessibility bus. The address comes from
// WithAddress, then AT_SPI_BUS_ADDRESS, then the launcher service.
func Dial(ctx context.Context, opts ...Option) (*Conn, error) {
	o := options{buffer: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}

	addr := o.address
	if addr == "" {
		addr = os.Getenv(AddressEnv)
	}
	if addr == "" {
		var err error
		addr, err = lookupAddress(ctx)
		if err != nil {
			return nil, err
		}
	}

	bus, err := dbus.Connect(addr, dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return newConn(bus, o.buffer), nil
}

func lookupAddress(ctx context.Context) (string, error) {
	session, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("session bus: %w", err)
	}
	defer session.Close()

	var addr string
	call := session.Object(LauncherName, LauncherPath).CallWithContext(ctx, LauncherGetAddr, 0)
	if err := call.Store(&addr); err != nil {
		return "", fmt.Errorf("%s: %w", LauncherGetAddr, err)
	}
	return addr, nil
}

func newConn(bus busConn, buffer int) *Conn {
	c := &Conn{
		bus:     bus,
		signals: make(chan *dbus.Signal, buffer),
		done:    make(chan struct{}),
	}
	bus.Signal(c.signals)
	return c
}

// AddMatch installs a match rule on the bus.
func (c *Conn) AddMatch(rule matchrule.Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.bus.AddMatchSignal(matchOptions(rule)...); err != nil {
		return fmt.Errorf("add match %s: %w", rule, err)
	}
	c.rules = append(c.rules, rule)
	return nil
}

// RemoveMatch removes a rule previously added with AddMatch.
func (c *Conn) RemoveMatch(rule matchrule.Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	for i, r := range c.rules {
		if r == rule {
			if err := c.bus.RemoveMatchSignal(matchOptions(rule)...); err != nil {
				return fmt.Errorf("remove match %s: %w", rule, err)
			}
			c.rules = append(c.rules[:i], c.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rules returns the installed match rules.
func (c *Conn) Rules() []matchrule.Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]matchrule.Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Listen delivers incoming signals as messages until ctx is done or the
// connection closes. Signals that are not event bodies go to onErr, which
// may be nil. A non-nil error from fn stops the loop.
func (c *Conn) Listen(ctx context.Context, fn func(event.Message) error, onErr func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrClosed
		case sig, ok := <-c.signals:
			if !ok {
				return ErrClosed
			}
			msg, err := MessageFromSignal(sig)
			if err != nil {
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
}

// Emit sends a message as a signal from its own path.
func (c *Conn) Emit(msg event.Message) error {
	args, err := ArgsFromBody(msg.Body)
	if err != nil {
		return fmt.Errorf("emit %s: %w", SignalName(msg), err)
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := c.bus.Emit(dbus.ObjectPath(msg.Path), SignalName(msg), args...); err != nil {
		return fmt.Errorf("emit %s: %w", SignalName(msg), err)
	}
	return nil
}

// Close detaches the signal channel and closes the bus connection. Any
// running Listen returns ErrClosed.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.bus.RemoveSignal(c.signals)
	return c.bus.Close()
}

func matchOptions(r matchrule.Rule) []dbus.MatchOption {
	var opts []dbus.MatchOption
	if r.Interface != "" {
		opts = append(opts, dbus.WithMatchInterface(r.Interface))
	}
	if r.Member != "" {
		opts = append(opts, dbus.WithMatchMember(r.Member))
	}
	if r.Path != "" {
		opts = append(opts, dbus.WithMatchObjectPath(dbus.ObjectPath(r.Path)))
	}
	if r.Sender != "" {
		opts = append(opts, dbus.WithMatchSender(r.Sender))
	}
	return opts
}
