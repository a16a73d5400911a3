// Package internal wires configuration, the library loader and the export,
// render and search commands together.
package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/quiverlib/internal/quiver"
)

// App runs commands against one opened library.
type App struct {
	cfg    *Config
	logger *slog.Logger
	out    io.Writer
	lib    *quiver.Library
}

// New applies opts and opens the configured library. Only the library
// metadata is read here; everything below it loads on demand.
func New(opts ...Option) (*App, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg.App, os.Stderr)
	}
	out := app.out
	if out == nil {
		out = os.Stdout
	}

	logger.Debug("Configuration loaded",
		slog.String("library_path", cfg.Library.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("output_dir", cfg.Render.OutputDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	lib, err := quiver.OpenLibrary(cfg.Library.Path, quiver.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	logger.Debug("Library opened",
		slog.String("id", lib.ID()),
		slog.String("path", lib.Path()),
		slog.Int("declared_notebooks", lib.NotebookCount()))

	return &App{cfg: cfg, logger: logger, out: out, lib: lib}, nil
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Library returns the opened library.
func (a *App) Library() *quiver.Library { return a.lib }
