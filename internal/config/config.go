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

	"github.com/vango-dev/plop/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "plop.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// used when no JSON file exists.
	YAMLConfigFileName = "plop.yaml"

	// DefaultSelector is the mount point of the demo application.
	DefaultSelector = "#app"

	// DefaultFrameInterval is the paint frame interval of a real-time loop.
	DefaultFrameInterval = "16ms"

	// DefaultLogLevel is the minimum level logged.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the log handler format.
	DefaultLogFormat = "text"

	// DefaultMetricsNamespace prefixes every collector name.
	DefaultMetricsNamespace = "plop"

	// DefaultMetricsAddr is where plop serve listens.
	DefaultMetricsAddr = "localhost:9090"

	// DefaultTracerName names the tracer render spans are started on.
	DefaultTracerName = "plop"

	// DefaultSessionName keys the saved list order.
	DefaultSessionName = "default"

	// DefaultStateTTL is how long a saved list order is kept.
	DefaultStateTTL = "24h"
)

// Config represents the complete plop configuration.
type Config struct {
	// Mount describes where and how the application is started.
	Mount MountConfig `json:"mount" yaml:"mount"`

	// Frame contains paint loop settings.
	Frame FrameConfig `json:"frame" yaml:"frame"`

	// Log contains structured logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// State contains list order persistence settings.
	State StateConfig `json:"state" yaml:"state"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MountConfig describes the mount point of an application.
type MountConfig struct {
	// Selector finds the root element, e.g. "#app".
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Offset is the number of root children owned by something else.
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`

	// RemoteEvents sends serialisable payloads to handlers instead of live
	// events.
	RemoteEvents bool `json:"remoteEvents,omitempty" yaml:"remoteEvents,omitempty"`
}

// FrameConfig contains paint loop settings.
type FrameConfig struct {
	// Interval is the frame interval, e.g. "16ms".
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Addr      string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// StateConfig controls where plop serve saves the list order. An empty Dir
// keeps it in memory only.
type StateConfig struct {
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Session string `json:"session,omitempty" yaml:"session,omitempty"`
	TTL     string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Mount: MountConfig{
			Selector: DefaultSelector,
		},
		Frame: FrameConfig{
			Interval: DefaultFrameInterval,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
			Addr:      DefaultMetricsAddr,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		State: StateConfig{
			Session: DefaultSessionName,
			TTL:     DefaultStateTTL,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// plop.json, then plop.yaml.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if yamlPath := filepath.Join(dir, YAMLConfigFileName); fileExists(yamlPath) {
			path = yamlPath
		}
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("E121").Wrap(err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates
// the result.
func Parse(data []byte, asYAML bool) (*Config, error) {
	cfg := New()
	if asYAML {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse YAML: " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse JSON: " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path has a YAML extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E121").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Mount.Selector == "" {
		c.Mount.Selector = DefaultSelector
	}
	if c.Frame.Interval == "" {
		c.Frame.Interval = DefaultFrameInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.State.Session == "" {
		c.State.Session = DefaultSessionName
	}
	if c.State.TTL == "" {
		c.State.TTL = DefaultStateTTL
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mount.Offset < 0 {
		return errors.New("E120").
			WithDetailf("mount.offset must not be negative, got %d", c.Mount.Offset)
	}
	if d, err := c.FrameInterval(); err != nil || d <= 0 {
		return errors.New("E120").
			WithDetailf("frame.interval %q is not a positive duration", c.Frame.Interval).
			WithSuggestion(`Use a Go duration such as "16ms"`)
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("E120").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E120").
			WithDetailf("log.format %q is not text or json", c.Log.Format)
	}
	if d, err := c.StateTTL(); err != nil || d <= 0 {
		return errors.New("E120").
			WithDetailf("state.ttl %q is not a positive duration", c.State.TTL)
	}
	return nil
}

// StateTTL parses the state TTL.
func (c *Config) StateTTL() (time.Duration, error) {
	return time.ParseDuration(c.State.TTL)
}

// FrameInterval parses the frame interval.
func (c *Config) FrameInterval() (time.Duration, error) {
	return time.ParseDuration(c.Frame.Interval)
}

// LogLevel parses the log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// Logger builds a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName)) ||
		fileExists(filepath.Join(dir, YAMLConfigFileName))
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
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
			return "", errors.New("E121").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding one. Defaults are returned when there is
// none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
