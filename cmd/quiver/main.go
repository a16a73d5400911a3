package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quiverlib/internal"
	pkgconfig "github.com/starford/quiverlib/pkg/config"
)

// newApp loads the configuration named by the global flags and opens the library.
func newApp(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	_, err := pkgconfig.LoadOptional(cmd.String("config"), cfg, func(c *internal.Config) {
		if lib := cmd.String("library"); lib != "" {
			c.Library.Path = lib
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	logger := internal.NewLogger(cfg.App, os.Stderr)
	slog.SetDefault(logger)

	app, err := internal.New(
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("app init error: %w", err)
	}
	return app, nil
}

func matchFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "match",
		Usage: "Only visit notebooks whose name matches this glob",
	}
}

func treeCmd(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Tree(ctx, cmd.String("match"))
}

func showCmd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("show: note id is required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Show(ctx, id)
}

func renderCmd(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	return app.Render(ctx, cmd.String("out"), cmd.String("match"))
}

func exportCmd(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	_, err = app.Export(ctx, cmd.String("match"))
	return err
}

func searchCmd(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("search: query is required")
	}
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	_, err = app.Search(ctx, query, int(cmd.Int("limit")))
	return err
}

func main() {
	cmd := &cli.Command{
		Name:  "quiver",
		Usage: "Read a Quiver note library: browse, render to HTML, export to SQLite and search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("QUIVER_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the .qvlibrary directory (overrides library.path)",
				Sources: cli.EnvVars("QUIVER_LIBRARY"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "tree",
				Usage:  "Print notebooks and notes",
				Flags:  []cli.Flag{matchFlag()},
				Action: treeCmd,
			},
			{
				Name:      "show",
				Usage:     "Print the cells of one note",
				ArgsUsage: "<note-id>",
				Action:    showCmd,
			},
			{
				Name:  "render",
				Usage: "Write one HTML page per note",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory (overrides render.output_dir)",
					},
					matchFlag(),
				},
				Action: renderCmd,
			},
			{
				Name:   "export",
				Usage:  "Incrementally export the library into SQLite",
				Flags:  []cli.Flag{matchFlag()},
				Action: exportCmd,
			},
			{
				Name:      "search",
				Usage:     "Search the SQLite export",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits",
						Value: 20,
					},
				},
				Action: searchCmd,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
