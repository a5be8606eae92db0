// Package store holds the application state shared by the CLI and the TUI.
//
// A single [State] owns the session, the movie and search collections, the
// selected movie and the user's lists. Actions perform network calls without
// holding the lock and apply their results in short critical sections, so
// there is only ever one writer. Readers take a [Snapshot].
//
// Errors never leave an action: they are recorded as messages on the slice
// of state the action owns.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
)

// Storage persists the session keys. [repositories.StorageRepository] implements it.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	SetMany(pairs map[string]string) error
	Remove(keys ...string) error
}

// RestoreOpts bounds the retries made by [State.RestoreSession] for transient failures.
type RestoreOpts struct {
	Attempts    int
	BaseBackoff time.Duration
	MaxInterval time.Duration
}

// DefaultRestoreOpts returns three attempts starting at 250ms, capped at 2s.
func DefaultRestoreOpts() RestoreOpts {
	return RestoreOpts{Attempts: 3, BaseBackoff: 250 * time.Millisecond, MaxInterval: 2 * time.Second}
}

// RestoreOptsFromConfig converts the [session] config section, keeping defaults for unset values.
func RestoreOptsFromConfig(c shared.SessionConfig) RestoreOpts {
	opts := DefaultRestoreOpts()
	if c.RestoreAttempts > 0 {
		opts.Attempts = c.RestoreAttempts
	}
	if c.RestoreBaseBackoffMS > 0 {
		opts.BaseBackoff = time.Duration(c.RestoreBaseBackoffMS) * time.Millisecond
	}
	if c.RestoreMaxIntervalMS > 0 {
		opts.MaxInterval = time.Duration(c.RestoreMaxIntervalMS) * time.Millisecond
	}
	return opts
}

// Opts configures a [State].
type Opts struct {
	Service services.Service
	Storage Storage
	Restore RestoreOpts
	Logger  *log.Logger
}

// State is the application state container.
type State struct {
	mu      sync.Mutex
	svc     services.Service
	storage Storage
	restore RestoreOpts
	logger  *log.Logger

	session  Session
	verified bool // session confirmed against the API by this process

	movies  MovieState
	details DetailState
	lists   ListState

	seq map[string]uint64
}

// Snapshot is a deep copy of [State] safe to read without locking.
type Snapshot struct {
	Session Session
	Movies  MovieState
	Details DetailState
	Lists   ListState
}

// New creates a [State]. Call [State.Hydrate] to load the persisted session.
func New(opts Opts) *State {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Restore.Attempts <= 0 {
		opts.Restore = DefaultRestoreOpts()
	}
	return &State{
		svc:     opts.Service,
		storage: opts.Storage,
		restore: opts.Restore,
		logger:  shared.WithLogger(opts.Logger, "component", "store"),
		session: Session{Phase: PhaseAnonymous},
		movies:  newMovieState(),
		details: DetailState{Reviews: newPaged[models.Review]()},
		lists:   newListState(),
		seq:     map[string]uint64{},
	}
}

// Snapshot returns a consistent copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Session: s.session.clone(),
		Movies:  s.movies.clone(),
		Details: s.details.clone(),
		Lists:   s.lists.clone(),
	}
}

// SetLogger replaces the state's logger.
func (s *State) SetLogger(logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = shared.WithLogger(logger, "component", "store")
}

// begin starts a new request for the collection key and returns its sequence number. Callers hold mu.
func (s *State) begin(key string) uint64 {
	s.seq[key]++
	return s.seq[key]
}

// latest reports whether n is still the newest request for key. Callers hold mu.
func (s *State) latest(key string, n uint64) bool {
	return s.seq[key] == n
}

func genreKey(genreID int) string { return fmt.Sprintf("genre:%d", genreID) }

func errMessage(err error, fallback string) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return &msg
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
