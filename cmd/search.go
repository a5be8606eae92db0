package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a movie search, or a multi search with --multi.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: <query>", shared.ErrMissingArgument)
	}

	if cmd.Bool("multi") {
		r.state.SearchMulti(ctx, query, page(cmd))
	} else {
		r.state.SearchMovies(ctx, query, page(cmd))
	}

	return r.printMovies(cmd, fmt.Sprintf("Results for %q", query), r.state.Snapshot().Movies.Search)
}
