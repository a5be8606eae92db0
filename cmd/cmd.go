// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "Result page to fetch",
		Value:   1,
	}
}

func withFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, outputFlags()...)
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config if missing, initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write config.toml from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the TMDB session lifecycle
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your TMDB session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with TMDB username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "TMDB username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "TMDB password",
						Sources: cli.EnvVars("TMDBX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "approve",
				Usage: "Sign in by approving a request token in the browser",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for approval",
						Value: approvalTimeout,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the approval URL instead of opening it",
					},
				},
				Action: r.AuthApprove,
			},
			{
				Name:   "logout",
				Usage:  "Delete the session and forget it locally",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Verify the stored session and show the signed-in user",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalogue browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse movies",
		Commands: []*cli.Command{
			{
				Name:   "popular",
				Usage:  "List popular movies",
				Flags:  withFlags(pageFlag()),
				Action: r.MoviesPopular,
			},
			{
				Name:   "top-rated",
				Usage:  "List top rated movies",
				Flags:  withFlags(pageFlag()),
				Action: r.MoviesTopRated,
			},
			{
				Name:      "genre",
				Usage:     "List movies in a genre",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     withFlags(pageFlag()),
				Action:    r.MoviesGenre,
			},
			{
				Name:   "genres",
				Usage:  "List genre ids and names",
				Flags:  outputFlags(),
				Action: r.MoviesGenres,
			},
			{
				Name:      "show",
				Usage:     "Show details, cast and trailers for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.MoviesShow,
			},
			{
				Name:      "reviews",
				Usage:     "List reviews for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     withFlags(pageFlag()),
				Action:    r.MoviesReviews,
			},
		},
	}
}

// searchCommand handles free-text search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search movies by title",
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Flags: withFlags(
			pageFlag(),
			&cli.BoolFlag{
				Name:  "multi",
				Usage: "Search movies, TV and people",
			},
		),
		Action: r.Search,
	}
}

// listsCommand handles the signed-in user's lists
func listsCommand(r *Runner) *cli.Command {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: json, csv, markdown, txt",
		Value:   "json",
	}

	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"l"},
		Usage:   "Manage your TMDB lists",
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "List your lists",
				Flags:  outputFlags(),
				Action: r.ListsLs,
			},
			{
				Name:      "show",
				Usage:     "Show the items of a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: withFlags(&cli.StringFlag{
					Name:  "filter",
					Usage: "Fuzzy-match item titles",
				}),
				Action: r.ListsShow,
			},
			{
				Name:      "create",
				Usage:     "Create a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "List description"},
				},
				Action: r.ListsCreate,
			},
			{
				Name:      "update",
				Usage:     "Rename a list or change its description",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
				},
				Action: r.ListsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ListsDelete,
			},
			{
				Name:  "add",
				Usage: "Add a movie to a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "list-id"},
					&cli.StringArg{Name: "movie-id"},
				},
				Action: r.ListsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a movie from a list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "list-id"},
					&cli.StringArg{Name: "movie-id"},
				},
				Action: r.ListsRemove,
			},
			{
				Name:      "export",
				Usage:     "Export a list to files",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					formatFlag,
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory", Value: "."},
				},
				Action: r.ListsExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every list concurrently and write a manifest",
				Flags: []cli.Flag{
					formatFlag,
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: tmdb_export_{epoch})"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers (max 10)", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "List fetches per second", Value: 5},
				},
				Action: r.ListsExportAll,
			},
			{
				Name:  "history",
				Usage: "Show recorded bulk exports",
				Flags: withFlags(&cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of runs to show",
					Value: 10,
				}),
				Action: r.ListsHistory,
			},
		},
	}
}

// apiCommand handles direct TMDB API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct TMDB API calls for debugging",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a TMDB path and print the raw JSON",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"q"},
						Usage:   "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "session",
						Usage: "Send the stored session_id",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body to a TMDB path",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "session",
						Usage: "Send the stored session_id",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Dump API configuration, genres and, when signed in, account and lists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing movies and lists",
		Action:  r.TUI,
	}
}
