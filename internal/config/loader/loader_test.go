package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func getByPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = data
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func TestTOMLLoaderLoad(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[output]
format = "json"

[filter]
keys = ["Object:", "Focus:Focus"]
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := getByPath(config, "output.format"); val != "json" {
		t.Errorf("expected output.format json, got %v", val)
	}
	keys, _ := getByPath(config, "filter.keys")
	if list, ok := keys.([]any); !ok || len(list) != 2 {
		t.Errorf("expected two filter keys, got %v", keys)
	}
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if config != nil {
		t.Errorf("expected nil config, got %v", config)
	}
}

func TestTOMLLoaderParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[log]\nlevel = \n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("expected path /bad.toml, got %s", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("expected line 2, got %d", perr.Line)
	}
	if !strings.Contains(perr.Error(), "line 2") {
		t.Errorf("expected position in message, got %s", perr.Error())
	}
}

func TestTOMLLoaderLoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[dedup]\nenabled = true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val, _ := getByPath(config, "dedup.enabled"); val != true {
		t.Errorf("expected dedup.enabled true, got %v", val)
	}
}

func TestTOMLLoaderIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/etc/a11ybus/config.toml", `
include = ["base.toml", "/shared/output.toml"]

[log]
level = "debug"
`)
	memfs.AddFile("/etc/a11ybus/base.toml", `
[log]
level = "warn"
output = "/var/log/a11ybus.log"
`)
	memfs.AddFile("/shared/output.toml", `
[output]
format = "yaml"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/etc/a11ybus/config.toml", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := config[IncludeKey]; ok {
		t.Error("expected include key to be removed")
	}

	tests := []struct {
		path string
		want any
	}{
		{"log.level", "debug"},
		{"log.output", "/var/log/a11ybus.log"},
		{"output.format", "yaml"},
	}
	for _, tt := range tests {
		if got, _ := getByPath(config, tt.path); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestTOMLLoaderIncludeDepth(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/loop.toml", `include = "loop.toml"`)

	_, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/loop.toml", 3)
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("expected ErrIncludeDepth, got %v", err)
	}

	memfs.AddFile("/bad.toml", `include = 3`)
	if _, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/bad.toml", 3); err == nil {
		t.Error("expected error for non-string include")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":    map[string]any{"level": "info", "output": "stderr"},
		"output": map[string]any{"format": "text"},
	}
	src := map[string]any{
		"log":    map[string]any{"level": "debug"},
		"output": "replaced",
	}

	got := DeepMerge(dst, src)
	if v, _ := getByPath(got, "log.level"); v != "debug" {
		t.Errorf("expected debug, got %v", v)
	}
	if v, _ := getByPath(got, "log.output"); v != "stderr" {
		t.Errorf("expected stderr to survive, got %v", v)
	}
	if got["output"] != "replaced" {
		t.Errorf("expected non-map value to replace, got %v", got["output"])
	}

	if out := DeepMerge(nil, map[string]any{"a": 1}); out["a"] != 1 {
		t.Errorf("expected merge into nil map, got %v", out)
	}
}

func envLoader(prefix string, env ...string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return env }
	return l
}

func TestEnvLoaderLoad(t *testing.T) {
	l := envLoader(DefaultPrefix,
		"A11YBUS_OUTPUT_FORMAT=yaml",
		"A11YBUS_DEDUP_ENABLED=true",
		"A11YBUS_BUS_BUFFER_SIZE=64",
		"A11YBUS_FILTER_KEYS=[\"Object:\"]",
		"A11YBUS_LOG=debug",
		"AT_SPI_BUS_ADDRESS=unix:path=/tmp/a11y",
		"HOME=/root",
		"A11YBUS_CAPTURE_RECORD=",
	)

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"output.format", "yaml"},
		{"dedup.enabled", true},
		{"bus.buffer_size", int64(64)},
		{"log.level", "debug"},
		{"bus.address", "unix:path=/tmp/a11y"},
		{"capture.record", ""},
	}
	for _, tt := range tests {
		if got, _ := getByPath(config, tt.path); got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.path, tt.want, tt.want, got, got)
		}
	}

	keys, _ := getByPath(config, "filter.keys")
	if list, ok := keys.([]any); !ok || len(list) != 1 || list[0] != "Object:" {
		t.Errorf("expected filter.keys [Object:], got %v", keys)
	}
	if _, ok := config["home"]; ok {
		t.Error("expected unprefixed variables to be ignored")
	}
}

func TestEnvLoaderAddMapping(t *testing.T) {
	l := envLoader("MY_", "CUSTOM_VAR=custom_value")
	l.AddMapping("CUSTOM_VAR", "custom.path")

	config, _ := l.Load()
	if val, _ := getByPath(config, "custom.path"); val != "custom_value" {
		t.Errorf("expected custom_value, got %v", val)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(DefaultPrefix)

	tests := []struct {
		env  string
		want string
	}{
		{"A11YBUS_OUTPUT_FORMAT", "output.format"},
		{"A11YBUS_FILTER_SCRIPT_TIMEOUT", "filter.script_timeout"},
		{"A11YBUS_SIMPLE", "simple"},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q): expected %q, got %q", tt.env, tt.want, got)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"off", false},
		{"1", int64(1)},
		{"-10", int64(-10)},
		{"3.14", 3.14},
		{"500ms", "500ms"},
		{"hello world", "hello world"},
		{"", ""},
		{"[broken", "[broken"},
	}

	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.want {
			t.Errorf("parseValue(%q): expected %v (%T), got %v (%T)", tt.input, tt.want, tt.want, got, got)
		}
	}

	if m, ok := parseValue(`{"k":"v"}`).(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("expected JSON object, got %v", parseValue(`{"k":"v"}`))
	}
}
