package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/a11ybus/internal/config/loader"
	"github.com/dshills/a11ybus/internal/event/dispatch"
)

// MaxIncludeDepth bounds nested include directives.
const MaxIncludeDepth = 8

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// AllKey subscribes to every event.
const AllKey = "*"

// Config is the resolved a11ybus configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Bus     BusConfig     `toml:"bus"`
	Filter  FilterConfig  `toml:"filter"`
	Dedup   DedupConfig   `toml:"dedup"`
	Output  OutputConfig  `toml:"output"`
	Capture CaptureConfig `toml:"capture"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// Output is "stderr" or a file path.
	Output string `toml:"output"`
}

// BusConfig configures the accessibility bus connection.
type BusConfig struct {
	// Address overrides the launcher lookup.
	Address string `toml:"address"`
	// BufferSize is the incoming signal buffer.
	BufferSize int `toml:"buffer_size"`
	// Groups lists the registry tags to add match rules for. Empty means
	// every group.
	Groups []string `toml:"groups"`
}

// FilterConfig selects which decoded events reach the output.
type FilterConfig struct {
	// Keys are router keys: a registry tag, a signal key or "*".
	Keys []string `toml:"keys"`
	// Script is an optional Lua file defining accept(ev).
	Script string `toml:"script"`
	// ScriptTimeout bounds one accept call.
	ScriptTimeout Duration `toml:"script_timeout"`
}

// DedupConfig configures suppression of repeated events.
type DedupConfig struct {
	Enabled bool     `toml:"enabled"`
	Window  Duration `toml:"window"`
	Size    int      `toml:"size"`
}

// OutputConfig configures the event sink.
type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `toml:"format"`
	// Path is the output file. Empty means stdout.
	Path string `toml:"path"`
}

// CaptureConfig configures recording of raw messages.
type CaptureConfig struct {
	// Record is a JSON lines file that receives every message read.
	Record string `toml:"record"`
	// FromEnd skips existing lines when following a capture.
	FromEnd bool `toml:"from_end"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
		Bus: BusConfig{
			BufferSize: 256,
		},
		Filter: FilterConfig{
			Keys:          []string{AllKey},
			ScriptTimeout: Duration(100 * time.Millisecond),
		},
		Dedup: DedupConfig{
			Window: Duration(2 * time.Second),
			Size:   4096,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "a11ybus", "config.toml")
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs  loader.FileSystem
	env *loader.EnvLoader
}

// WithFileSystem reads config files through fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithEnvLoader replaces the environment layer.
func WithEnvLoader(env *loader.EnvLoader) Option {
	return func(o *options) { o.env = env }
}

// Load resolves defaults, the file at path (if it exists) and the
// environment, then validates the result. An empty path skips the file.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(loader.DefaultPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var merged map[string]any
	if path != "" {
		fileConfig, err := loader.NewTOMLLoaderWithFS(o.fs, path).LoadWithIncludes(path, MaxIncludeDepth)
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileConfig)
	}

	envConfig, err := o.env.Load()
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, envConfig)

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply decodes a raw settings map onto c, keeping fields it does not name.
func (c *Config) apply(raw map[string]any) error {
	if len(raw) == 0 {
		return nil
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, len(strict.Errors))
			for i, e := range strict.Errors {
				keys[i] = strings.Join(e.Key(), ".")
			}
			return fmt.Errorf("%w: %s", ErrUnknownSetting, strings.Join(keys, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		fail("log.level", "must be debug, info, warn or error", c.Log.Level)
	}

	if !slices.Contains([]string{FormatText, FormatJSON, FormatYAML}, c.Output.Format) {
		fail("output.format", "must be text, json or yaml", c.Output.Format)
	}

	if c.Bus.BufferSize <= 0 {
		fail("bus.buffer_size", "must be positive", c.Bus.BufferSize)
	}

	catalog := dispatch.Default()
	for _, tag := range c.Bus.Groups {
		if catalog.GroupByTag(tag) == nil {
			fail("bus.groups", "unknown registry tag", tag)
		}
	}
	for _, key := range c.Filter.Keys {
		if !ValidKey(key) {
			fail("filter.keys", "unknown registry tag or signal key", key)
		}
	}

	if c.Filter.ScriptTimeout <= 0 {
		fail("filter.script_timeout", "must be positive", c.Filter.ScriptTimeout.Std())
	}

	if c.Dedup.Enabled {
		if c.Dedup.Window <= 0 {
			fail("dedup.window", "must be positive", c.Dedup.Window.Std())
		}
		if c.Dedup.Size <= 0 {
			fail("dedup.size", "must be positive", c.Dedup.Size)
		}
	}

	return errors.Join(errs...)
}

// ValidKey reports whether key selects events: "*", a registry tag such
// as "Object:" or a signal key such as "Object:StateChanged".
func ValidKey(key string) bool {
	if key == AllKey {
		return true
	}
	catalog := dispatch.Default()
	return catalog.GroupByTag(key) != nil || catalog.SignalByKey(key) != nil
}
