package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/plop/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Mount.Selector != DefaultSelector {
		t.Errorf("Mount.Selector = %q, want %q", cfg.Mount.Selector, DefaultSelector)
	}
	if cfg.Frame.Interval != DefaultFrameInterval {
		t.Errorf("Frame.Interval = %q, want %q", cfg.Frame.Interval, DefaultFrameInterval)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !errors.Is(err, errors.ErrConfigRead) {
		t.Errorf("missing config error = %v, want E121", err)
	}

	configJSON := `{
  "mount": {"selector": "#root", "offset": 2, "remoteEvents": true},
  "frame": {"interval": "8ms"},
  "log": {"level": "debug", "format": "json"},
  "metrics": {"enabled": true},
  "state": {"dir": ".plop/state"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := New()
	want.Mount = MountConfig{Selector: "#root", Offset: 2, RemoteEvents: true}
	want.Frame.Interval = "8ms"
	want.Log = LogConfig{Level: "debug", Format: "json"}
	want.Metrics.Enabled = true
	want.State.Dir = ".plop/state"
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `mount:
  selector: "#list"
frame:
  interval: 33ms
tracing:
  enabled: true
  tracerName: demo
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Mount.Selector != "#list" {
		t.Errorf("Mount.Selector = %q, want #list", cfg.Mount.Selector)
	}
	if d, _ := cfg.FrameInterval(); d != 33*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 33ms", d)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "demo" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want default", cfg.Log.Level)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		detail  string
	}{
		{"json", ConfigFileName, "not valid json", "Failed to parse JSON"},
		{"yaml", YAMLConfigFileName, "mount: [", "Failed to parse YAML"},
		{"offset", ConfigFileName, `{"mount": {"offset": -1}}`, "mount.offset"},
		{"interval", ConfigFileName, `{"frame": {"interval": "soon"}}`, "frame.interval"},
		{"zero interval", ConfigFileName, `{"frame": {"interval": "0s"}}`, "frame.interval"},
		{"level", ConfigFileName, `{"log": {"level": "loud"}}`, "log.level"},
		{"format", ConfigFileName, `{"log": {"format": "xml"}}`, "log.format"},
		{"ttl", ConfigFileName, `{"state": {"ttl": "-1h"}}`, "state.ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadFile(path)
			if !errors.Is(err, errors.ErrConfigInvalid) {
				t.Fatalf("LoadFile() error = %v, want E120", err)
			}
			var pe *errors.PlopError
			if !errors.As(err, &pe) || !strings.Contains(pe.Detail, tt.detail) {
				t.Errorf("detail = %q, want it to mention %q", pe.Detail, tt.detail)
			}
		})
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Mount.Offset = 3
			cfg.Metrics.Addr = ":9100"

			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}
			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("reloaded config mismatch (-saved +loaded):\n%s", diff)
			}

			loaded.Mount.Offset = 4
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Mount.Offset != 4 {
				t.Errorf("Mount.Offset = %d, want 4", reloaded.Mount.Offset)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "n", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"n":1`) {
		t.Errorf("json output = %s", out)
	}

	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelWarn {
		t.Errorf("LogLevel() = %v, %v", level, err)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nestedDir); err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{nestedDir, filepath.Join(tmpDir, "a")} {
		root, err := FindProjectRoot(start)
		if err != nil {
			t.Fatalf("FindProjectRoot error: %v", err)
		}
		if root != tmpDir {
			t.Errorf("FindProjectRoot(%q) = %q, want %q", start, root, tmpDir)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if diff := cmp.Diff(New(), cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("applyDefaults mismatch (-want +got):\n%s", diff)
	}
}
