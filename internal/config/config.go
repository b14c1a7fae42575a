package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "reconcile.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "reconcile.yaml"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "reconcile"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "reconcile"
)

// Config represents the complete reconcile configuration.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Scheduler configures render batching.
	Scheduler SchedulerConfig `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`

	// Metrics configures Prometheus collectors.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Inspector configures the inspector HTTP server.
	Inspector InspectorConfig `json:"inspector,omitempty" yaml:"inspector,omitempty"`

	// Tracing configures pass spans.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// SchedulerConfig contains scheduler settings.
type SchedulerConfig struct {
	// BatchDelay delays each batch so notifications coalesce (e.g. "5ms").
	BatchDelay string `json:"batchDelay,omitempty" yaml:"batchDelay,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Enabled turns collection on.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Tick is the interval of the demo ticker driving re-renders.
	Tick string `json:"tick,omitempty" yaml:"tick,omitempty"`
}

// TracingConfig contains tracing settings.
type TracingConfig struct {
	// TracerName is the name passed to the global tracer provider.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scheduler: SchedulerConfig{
			BatchDelay: "0s",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
			Tick: "1s",
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// reconcile.json, then reconcile.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C001").
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Run 'reconcile config init' to write the defaults")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("C002").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Scheduler.BatchDelay == "" {
		c.Scheduler.BatchDelay = d.Scheduler.BatchDelay
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = d.Inspector.Addr
	}
	if c.Inspector.Tick == "" {
		c.Inspector.Tick = d.Inspector.Tick
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = d.Tracing.TracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C003").
			With("field", "log.format").
			WithDetailf("unknown log format %q", c.Log.Format).
			WithSuggestion("Use \"text\" or \"json\"")
	}
	if d, err := time.ParseDuration(c.Scheduler.BatchDelay); err != nil || d < 0 {
		return errors.New("C003").
			With("field", "scheduler.batchDelay").
			WithDetailf("invalid duration %q", c.Scheduler.BatchDelay)
	}
	if d, err := time.ParseDuration(c.Inspector.Tick); err != nil || d <= 0 {
		return errors.New("C003").
			With("field", "inspector.tick").
			WithDetailf("invalid duration %q", c.Inspector.Tick)
	}
	return nil
}

// BatchDelay returns the parsed scheduler batch delay, zero when invalid.
func (c *Config) BatchDelay() time.Duration {
	d, _ := time.ParseDuration(c.Scheduler.BatchDelay)
	if d < 0 {
		return 0
	}
	return d
}

// TickInterval returns the parsed inspector tick, one second when invalid.
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Inspector.Tick)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("C003").
			With("field", "log.level").
			WithDetailf("unknown log level %q", c.Log.Level)
	}
	return lvl, nil
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find one holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadOrDefault loads the configuration of the nearest project root, or
// returns the defaults when there is none.
func LoadOrDefault(startDir string) (*Config, error) {
	root, err := FindProjectRoot(startDir)
	if err != nil {
		if errors.Is(err, "C001") {
			return New(), nil
		}
		return nil, err
	}
	return Load(root)
}
