package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/verseclock/internal"
	"github.com/starford/verseclock/internal/userstate"
	pkgconfig "github.com/starford/verseclock/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	return cfg, nil
}

// openApp wires the application for one-shot commands, which log only
// warnings and errors so their output stays readable.
func openApp(cmd *cli.Command) (*internal.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.App.LogLevel = slog.LevelWarn
	return internal.New(internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func now(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	v, err := app.Service.CurrentVerse(ctx, cmd.String("time"), cmd.String("category"))
	if err != nil {
		return err
	}
	printVerse(cmd.Root().Writer, v.TimeKey, v.Reference, v.Body)
	return nil
}

func today(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	v, err := app.Service.VerseOfDay(ctx, cmd.String("date"))
	if err != nil {
		return err
	}
	printVerse(cmd.Root().Writer, "", v.Reference, v.Body)
	return nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	hits := app.Service.Search(ctx, strings.Join(cmd.Args().Slice(), " "))
	w := cmd.Root().Writer
	if len(hits) == 0 {
		fmt.Fprintln(w, "No verses found.")
		return nil
	}
	for _, h := range hits {
		printVerse(w, h.TimeKey, h.Reference(), h.Body())
	}
	return nil
}

func devotionalCmd(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	text := cmd.Args().First()
	if text == "" {
		v, err := app.Service.CurrentVerse(ctx, "", "")
		if err != nil {
			return err
		}
		text = v.Text
	}
	d := app.Service.Devotional(ctx, text)

	style := "light"
	if th, err := app.Service.Theme(ctx); err == nil && th == userstate.ThemeDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render("# " + d.Title + "\n\n" + d.Content)
	if err != nil {
		return fmt.Errorf("render devotional: %w", err)
	}
	fmt.Fprint(cmd.Root().Writer, out)
	return nil
}

func printVerse(w io.Writer, timeKey, reference, body string) {
	if timeKey != "" {
		fmt.Fprintf(w, "[%s] ", timeKey)
	}
	fmt.Fprintf(w, "%s\n  %s\n", reference, body)
}

func main() {
	cmd := &cli.Command{
		Name:    "verseclock",
		Usage:   "Shows a Bible verse for the current time, with favorites, search and daily devotionals",
		Version: internal.Version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live display events",
				Action: serve,
			},
			{
				Name:  "now",
				Usage: "Print the verse for the current (or given) time",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "time", Aliases: []string{"t"}, Usage: "Clock time HH:MM"},
					&cli.StringFlag{Name: "category", Usage: "Category filter"},
				},
				Action: now,
			},
			{
				Name:  "today",
				Usage: "Print the verse of the day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date YYYY-MM-DD"},
				},
				Action: today,
			},
			{
				Name:      "search",
				Usage:     "Search verse text and categories",
				ArgsUsage: "[term]",
				Action:    search,
			},
			{
				Name:      "devotional",
				Usage:     "Render a devotional for a verse (defaults to the current one)",
				ArgsUsage: "[verse text]",
				Action:    devotionalCmd,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
