package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/quiverlib/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Library.Path = "/lib/Quiver.qvlibrary"
	return cfg
}

func TestDefaultConfig_NeedsLibraryPath(t *testing.T) {
	err := NewDefaultConfig().Validate()
	if err == nil {
		t.Fatal("default config without library path should fail")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestApplicationConfig_EmptyFormatDefaultsText(t *testing.T) {
	cfg := ApplicationConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default to text: %v", err)
	}
	if cfg.LogFormat != LogFormatText {
		t.Errorf("format = %q, want %q", cfg.LogFormat, LogFormatText)
	}
}

func TestApplicationConfig_InvalidFormat(t *testing.T) {
	cfg := ApplicationConfig{LogFormat: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid log format should fail validation")
	}
}

func TestLibraryConfig_Workers(t *testing.T) {
	cfg := LibraryConfig{Path: "x"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.PreloadWorkers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.PreloadWorkers)
	}

	cfg.PreloadWorkers = 65
	if err := cfg.Validate(); err == nil {
		t.Error("65 workers should fail validation")
	}
	cfg.PreloadWorkers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative workers should fail validation")
	}
}

func TestRenderConfig_UnknownStyle(t *testing.T) {
	cfg := validConfig()
	cfg.Render.Style = "no-such-style"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("unknown style should fail validation")
	}
	if !strings.Contains(err.Error(), "unknown chroma style") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_LoadFromYAML(t *testing.T) {
	t.Setenv("QUIVER_TEST_LIBRARY", "/data/Quiver.qvlibrary")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  log_level: debug
  log_format: json
library:
  path: ${QUIVER_TEST_LIBRARY}
  preload_workers: 8
index:
  path: /tmp/q.db
render:
  output_dir: /tmp/out
  style: monokai
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Library.Path != "/data/Quiver.qvlibrary" || cfg.Library.PreloadWorkers != 8 {
		t.Errorf("library = %+v", cfg.Library)
	}
	if cfg.Render.Style != "monokai" {
		t.Errorf("style = %q", cfg.Render.Style)
	}
}
