package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"tagmark/internal/app"
	appcli "tagmark/internal/cli"
	"tagmark/internal/config"
	"tagmark/internal/logging"
	"tagmark/internal/popup"
)

var version = "dev"

func main() {
	// A .env next to the working directory can supply TAGMARK_* vars.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:    "tagmark",
		Usage:   "search and tag your browser bookmarks from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config file (default: platform config directory)"},
			&cli.StringFlag{Name: "db-path", Usage: "path to the cache database"},
			&cli.StringFlag{Name: "bridge-url", Usage: "bookmarks bridge base URL"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		// Bare invocation opens the popup.
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App, _ *appcli.Commands) error {
				return popup.Run(a)
			})
		},
		Commands: []*cli.Command{
			{
				Name:  "popup",
				Usage: "open the interactive popup",
				Action: func(c *cli.Context) error {
					return withApp(c, func(a *app.App, _ *appcli.Commands) error {
						return popup.Run(a)
					})
				},
			},
			{
				Name:      "search",
				Usage:     "fuzzy-search bookmarks",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("usage: tagmark search \"<query>\"")
					}
					query := strings.Join(c.Args().Slice(), " ")
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.Search(c.Context, query)
					})
				},
			},
			{
				Name:  "list",
				Usage: "list bookmarks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tag", Usage: "only bookmarks carrying this tag"},
					&cli.IntFlag{Name: "limit", Usage: "limit number of results"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.List(c.Context, c.String("tag"), c.Int("limit"))
					})
				},
			},
			{
				Name:  "tags",
				Usage: "list all known tags with usage counts",
				Action: func(c *cli.Context) error {
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.Tags(c.Context)
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "edit a bookmark's title and tags",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "new title (tags excluded)"},
					&cli.StringFlag{Name: "tags", Usage: "replace all tags, e.g. \"work urgent\" or \"#work #urgent\""},
					&cli.StringSliceFlag{Name: "add", Usage: "tag to add (repeatable)"},
					&cli.StringSliceFlag{Name: "remove", Usage: "tag to remove (repeatable)"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: tagmark edit <id> [--title ...] [--tags ...] [--add t] [--remove t]")
					}
					opts := appcli.EditOptions{
						AddTags:    c.StringSlice("add"),
						RemoveTags: c.StringSlice("remove"),
					}
					if c.IsSet("title") {
						title := c.String("title")
						opts.Title = &title
					}
					if c.IsSet("tags") {
						opts.ReplaceTags = splitTagsArg(c.String("tags"))
					}
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.Edit(c.Context, c.Args().First(), opts)
					})
				},
			},
			{
				Name:      "open",
				Usage:     "open a bookmark in the browser",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: tagmark open <id>")
					}
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.Open(c.Context, c.Args().First())
					})
				},
			},
			{
				Name:  "sync",
				Usage: "refresh the cache and replay queued updates",
				Action: func(c *cli.Context) error {
					return withApp(c, func(_ *app.App, commands *appcli.Commands) error {
						return commands.Sync(c.Context)
					})
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads config, builds the application context and tears it down
// around fn.
func withApp(c *cli.Context, fn func(*app.App, *appcli.Commands) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.String("db-path"); v != "" {
		cfg.DBPath = v
	}
	if v := c.String("bridge-url"); v != "" {
		cfg.Bridge.URL = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync()

	a, err := app.Setup(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	return fn(a, appcli.NewCommands(a))
}

// splitTagsArg accepts either "#work #urgent" or "work,urgent" forms.
// Sanitization strips the leading '#' later.
func splitTagsArg(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
}
