package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/repositories"
	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/desertthunder/tmdbx/internal/store"
	"github.com/urfave/cli/v3"
)

// ExportHistory stores and lists bulk export runs. [repositories.ExportRepository] implements it.
type ExportHistory interface {
	Create(rec *models.ExportRecord) error
	ListByAccount(accountID, limit int) ([]*models.ExportRecord, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	client  *services.Client
	service services.Service
	state   *store.State
	exports ExportHistory
	db      *sql.DB
	logger  *log.Logger
	output  io.Writer
	openURL func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When State is nil, [Runner.Load] builds the client, database and state from the config file.
type RunnerOpts struct {
	Config  *shared.Config
	Client  *services.Client
	State   *store.State
	Exports ExportHistory
	Logger  *log.Logger
	Output  io.Writer
	OpenURL func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	r := &Runner{
		config:  opts.Config,
		client:  opts.Client,
		state:   opts.State,
		exports: opts.Exports,
		logger:  opts.Logger,
		output:  opts.Output,
		openURL: opts.OpenURL,
	}
	if opts.Client != nil {
		r.service = opts.Client
	}
	return r
}

// Load is the root Before hook. It reads the config, opens the database and hydrates the session.
//
// A missing config file falls back to the embedded defaults plus TMDBX_* environment overrides.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.state != nil {
		return ctx, nil
	}

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	if err := shared.ApplyEnv(r.config); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		r.logger.Warn("TMDB requests will fail until credentials are configured", "error", err)
	}

	r.client = services.NewClient(services.ClientOpts{
		BaseURL:     r.config.TMDB.APIURL,
		APIKey:      r.config.TMDB.APIKey,
		AccessToken: r.config.TMDB.AccessToken,
		Language:    r.config.TMDB.Language,
		RateLimit:   r.config.TMDB.RateLimit,
		Burst:       r.config.TMDB.Burst,
		Timeout:     r.config.TMDB.Timeout(),
		Logger:      r.logger,
	})
	r.service = r.client

	opts := store.Opts{
		Service: r.client,
		Restore: store.RestoreOptsFromConfig(r.config.Session),
		Logger:  r.logger,
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("database unavailable, session will not be persisted", "path", r.config.Database.Path, "error", err)
	} else {
		r.db = db
		opts.Storage = repositories.NewStorageRepository(db)
		r.exports = repositories.NewExportRepository(db)
	}

	r.state = store.New(opts)
	if _, err := r.state.Hydrate(); err != nil {
		r.logger.Warn("failed to load persisted session", "error", err)
	}
	return ctx, nil
}

// Close releases the database. It is the root After hook.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
// The client and state built by [Runner.Load] follow it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.client != nil {
		r.client.SetLogger(logger)
	}
	if r.state != nil {
		r.state.SetLogger(logger)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, searchCommand, listsCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireState fails when Load has not run or could not build the state.
func (r *Runner) requireState() error {
	if r.state == nil || r.service == nil {
		return fmt.Errorf("%w: TMDB client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// asJSON writes data as JSON when --json or --pretty is set and reports whether it did.
func (r *Runner) asJSON(cmd *cli.Command, data any) (bool, error) {
	if !cmd.Bool("json") && !cmd.Bool("pretty") {
		return false, nil
	}
	return true, r.writeJSON(data, cmd.Bool("pretty"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// stateError converts an error message recorded on a state slice back into a wrapped sentinel.
// Without a message the sentinel is returned as is.
func stateError(sentinel error, msg *string) error {
	if msg == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, *msg)
}
