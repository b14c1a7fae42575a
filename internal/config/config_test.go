package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/reconcile/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Load(tmpDir); !errors.Is(err, "C001") {
		t.Errorf("Load(empty dir) error = %v, want C001", err)
	}

	configJSON := `{
  "log": {"level": "debug", "format": "json"},
  "scheduler": {"batchDelay": "5ms"},
  "metrics": {"enabled": false}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.BatchDelay() != 5*time.Millisecond {
		t.Errorf("BatchDelay() = %v, want 5ms", cfg.BatchDelay())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	// Defaults fill the rest.
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `inspector:
  addr: ":9000"
  tick: 250ms
tracing:
  tracerName: demo
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Inspector.Addr != ":9000" {
		t.Errorf("Inspector.Addr = %q, want :9000", cfg.Inspector.Addr)
	}
	if cfg.TickInterval() != 250*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 250ms", cfg.TickInterval())
	}
	if cfg.Tracing.TracerName != "demo" {
		t.Errorf("Tracing.TracerName = %q, want demo", cfg.Tracing.TracerName)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want the default", cfg.Log.Level)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"log": `), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, "C002") {
		t.Errorf("LoadFile(bad json) error = %v, want C002", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"batch delay", func(c *Config) { c.Scheduler.BatchDelay = "soon" }, "scheduler.batchDelay"},
		{"negative delay", func(c *Config) { c.Scheduler.BatchDelay = "-1s" }, "scheduler.batchDelay"},
		{"tick", func(c *Config) { c.Inspector.Tick = "0s" }, "inspector.tick"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.edit(cfg)
			err := cfg.Validate()
			if !errors.Is(err, "C003") {
				t.Fatalf("Validate() = %v, want C003", err)
			}
			if got := errors.FromError(err, "").Field("field"); got != tt.field {
				t.Errorf("field = %v, want %s", got, tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Log.Level = "warn"
			cfg.Inspector.Addr = ":8081"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatal(err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "code", "R040")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"code":"R040"`) {
		t.Errorf("output = %q, want a JSON record", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}

	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("LoadOrDefault() without a file returned %q", cfg.Path())
	}
}
