package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/desertthunder/tmdbx/internal/store"
	"github.com/urfave/cli/v3"
)

type moviePage = store.PagedResult[models.MovieSummary]

// intArg parses a positive integer positional argument.
func intArg(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return n, nil
}

func page(cmd *cli.Command) int {
	return max(int(cmd.Int("page")), 1)
}

// printMovies writes a page of movies, or the page as JSON when requested.
func (r *Runner) printMovies(cmd *cli.Command, title string, p moviePage) error {
	if p.Error != nil {
		return stateError(shared.ErrAPIRequest, p.Error)
	}
	if ok, err := r.asJSON(cmd, p); ok {
		return err
	}

	r.writePlainHeader(title)
	if len(p.Results) == 0 {
		return r.writePlain("No results\n")
	}
	for _, m := range p.Results {
		line := fmt.Sprintf("%8d  %s (%s)  ★ %s", m.ID, m.DisplayTitle(), m.Year(), m.Rating())
		if kind := m.Kind(); kind != "movie" {
			line += "  [" + kind + "]"
		}
		r.writePlain("%s\n", line)
	}
	return r.writePlainln("Page %d of %d (%d results)", p.Page, max(p.TotalPages, 1), p.TotalResults)
}

// MoviesPopular lists popular movies.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	r.state.FetchPopular(ctx, page(cmd))
	return r.printMovies(cmd, "Popular Movies", r.state.Snapshot().Movies.Popular)
}

// MoviesTopRated lists top rated movies.
func (r *Runner) MoviesTopRated(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	r.state.FetchTopRated(ctx, page(cmd))
	return r.printMovies(cmd, "Top Rated Movies", r.state.Snapshot().Movies.TopRated)
}

// MoviesGenre lists movies in one genre.
func (r *Runner) MoviesGenre(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	genreID, err := intArg(cmd, "id")
	if err != nil {
		return err
	}

	r.state.FetchByGenre(ctx, genreID, page(cmd))
	p, ok := r.state.Snapshot().Movies.ByGenre[genreID]
	if !ok {
		return fmt.Errorf("%w: no results recorded for genre %d", shared.ErrInvalidResponse, genreID)
	}
	return r.printMovies(cmd, fmt.Sprintf("Genre %d", genreID), *p)
}

// MoviesGenres lists the genre catalogue. It reads the service directly; genres are not part of the state.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	genres, err := r.service.Genres(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if ok, err := r.asJSON(cmd, genres.Genres); ok {
		return err
	}

	r.writePlainHeader("Genres")
	for _, g := range genres.Genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

type movieOutput struct {
	Movie    *models.MovieDetails `json:"movie"`
	Trailers []models.Video       `json:"trailers"`
}

// MoviesShow prints details, cast and YouTube trailers for a movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	id, err := intArg(cmd, "id")
	if err != nil {
		return err
	}

	r.state.FetchMovieDetails(ctx, id)
	r.state.FetchMovieVideos(ctx, id)

	d := r.state.Snapshot().Details
	if d.Movie == nil {
		return stateError(shared.ErrMovieNotFound, d.Error)
	}
	if d.VideosError != nil {
		r.logger.Warn("trailers unavailable", "error", *d.VideosError)
	}
	if ok, err := r.asJSON(cmd, movieOutput{Movie: d.Movie, Trailers: d.Trailers}); ok {
		return err
	}

	mv := d.Movie
	r.writePlainHeader(fmt.Sprintf("%s (%s)", mv.DisplayTitle(), mv.Year()))
	if mv.Tagline != "" {
		r.writePlain("%s\n\n", mv.Tagline)
	}
	r.writePlain("Rating:   ★ %s\n", mv.Rating())
	r.writePlain("Runtime:  %s\n", mv.RuntimeString())
	r.writePlain("Genres:   %s\n", mv.GenreNames())
	if poster := mv.PosterURL(r.config.TMDB.ImageBaseURL, models.PosterMedium); poster != "" {
		r.writePlain("Poster:   %s\n", poster)
	}
	if backdrop := mv.BackdropURL(r.config.TMDB.ImageBaseURL, models.BackdropLarge); backdrop != "" {
		r.writePlain("Backdrop: %s\n", backdrop)
	}
	if mv.Overview != "" {
		r.writePlainln("%s", mv.Overview)
	}

	if c := mv.Credits; c != nil {
		if dirs := c.Directors(); len(dirs) > 0 {
			names := make([]string, len(dirs))
			for i, cr := range dirs {
				names[i] = cr.Name
			}
			r.writePlainln("Directed by %s", strings.Join(names, ", "))
		}
		if cast := c.TopCast(10); len(cast) > 0 {
			r.writePlainln("Cast:")
			for _, p := range cast {
				r.writePlain("  • %s as %s\n", p.Name, p.Character)
			}
		}
	}

	if len(d.Trailers) > 0 {
		r.writePlainln("Trailers:")
		for _, v := range d.Trailers {
			r.writePlain("  • %s: %s\n", v.Name, v.URL())
		}
	}
	return nil
}

// MoviesReviews lists a page of reviews for a movie.
func (r *Runner) MoviesReviews(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	id, err := intArg(cmd, "id")
	if err != nil {
		return err
	}

	r.state.FetchMovieReviews(ctx, id, page(cmd))
	p := r.state.Snapshot().Details.Reviews
	if p.Error != nil {
		return stateError(shared.ErrAPIRequest, p.Error)
	}
	if ok, err := r.asJSON(cmd, p); ok {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Reviews for movie %d", id))
	if len(p.Results) == 0 {
		return r.writePlain("No reviews yet\n")
	}
	for _, rv := range p.Results {
		r.writePlainln("%s, %s", rv.Author, models.FormatReviewDate(rv.CreatedAt))
		r.writePlain("%s\n", strings.TrimSpace(rv.Content))
	}
	return r.writePlainln("Page %d of %d (%d reviews)", p.Page, max(p.TotalPages, 1), p.TotalResults)
}
