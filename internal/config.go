package internal

import (
	"errors"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quiverlib/internal/render"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	Index   IndexConfig       `yaml:"index"`
	Render  RenderConfig      `yaml:"render"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// LibraryConfig points at the .qvlibrary directory to read.
type LibraryConfig struct {
	Path           string `yaml:"path"`
	PreloadWorkers int    `yaml:"preload_workers"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	if c.PreloadWorkers == 0 {
		c.PreloadWorkers = 4
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.PreloadWorkers, validation.Min(1), validation.Max(64)),
	)
}

// IndexConfig holds the SQLite export database location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RenderConfig controls HTML output.
type RenderConfig struct {
	OutputDir string `yaml:"output_dir"`
	Style     string `yaml:"style"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	if c.Style == "" {
		c.Style = render.DefaultStyle
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Style, validation.By(knownStyle)),
	)
}

func knownStyle(value any) error {
	s, _ := value.(string)
	if !render.StyleExists(s) {
		return errors.New("unknown chroma style")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
// Library.Path has no default and must come from the file, env or flags.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Library: LibraryConfig{
			PreloadWorkers: 4,
		},
		Index: IndexConfig{
			Path: "./quiver.db",
		},
		Render: RenderConfig{
			OutputDir: "./html",
			Style:     render.DefaultStyle,
		},
	}
}
