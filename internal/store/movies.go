package store

import (
	"context"
	"strings"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/services"
)

const (
	keyPopular  = "popular"
	keyTopRated = "top_rated"
	keySearch   = "search"
)

// PagedResult is one paged collection.
//
// Results from the previous page stay in place while Loading is set.
type PagedResult[T any] struct {
	Results      []T
	Page         int
	TotalPages   int
	TotalResults int
	Loading      bool
	Error        *string
}

func newPaged[T any]() PagedResult[T] {
	return PagedResult[T]{Results: []T{}, Page: 1}
}

func (p PagedResult[T]) clone() PagedResult[T] {
	p.Results = cloneSlice(p.Results)
	p.Error = clonePtr(p.Error)
	return p
}

func (p *PagedResult[T]) start() {
	p.Loading = true
	p.Error = nil
}

func (p *PagedResult[T]) apply(page *models.Page[T]) {
	p.Loading = false
	p.Results = page.Results
	if p.Results == nil {
		p.Results = []T{}
	}
	p.Page = page.Page
	p.TotalPages = page.TotalPages
	p.TotalResults = page.TotalResults
}

func (p *PagedResult[T]) fail(err error, fallback string) {
	p.Loading = false
	p.Error = errMessage(err, fallback)
}

// MovieState holds the four browsing collections.
type MovieState struct {
	Popular  PagedResult[models.MovieSummary]
	TopRated PagedResult[models.MovieSummary]
	ByGenre  map[int]*PagedResult[models.MovieSummary]
	Search   PagedResult[models.MovieSummary]
	Query    string
	Multi    bool
}

func newMovieState() MovieState {
	return MovieState{
		Popular:  newPaged[models.MovieSummary](),
		TopRated: newPaged[models.MovieSummary](),
		ByGenre:  map[int]*PagedResult[models.MovieSummary]{},
		Search:   newPaged[models.MovieSummary](),
	}
}

func (m MovieState) clone() MovieState {
	out := m
	out.Popular = m.Popular.clone()
	out.TopRated = m.TopRated.clone()
	out.Search = m.Search.clone()
	out.ByGenre = make(map[int]*PagedResult[models.MovieSummary], len(m.ByGenre))
	for k, v := range m.ByGenre {
		c := v.clone()
		out.ByGenre[k] = &c
	}
	return out
}

type moviePageFunc func(ctx context.Context) (*services.MoviePage, error)

// fetchMovies drives one collection through loading, loaded or errored.
//
// slot is only called with mu held. A response is dropped when a newer request for key has started.
func (s *State) fetchMovies(ctx context.Context, key, fallback string, slot func() *PagedResult[models.MovieSummary], call moviePageFunc, onFail func(p *PagedResult[models.MovieSummary])) {
	s.mu.Lock()
	n := s.begin(key)
	slot().start()
	s.mu.Unlock()

	page, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(key, n) {
		s.logger.Debug("dropping stale response", "collection", key, "seq", n)
		return
	}
	p := slot()
	if err != nil {
		s.logger.Warn("fetch failed", "collection", key, "error", err)
		p.fail(err, fallback)
		if onFail != nil {
			onFail(p)
		}
		return
	}
	p.apply(page)
}

// FetchPopular loads a page of popular movies.
func (s *State) FetchPopular(ctx context.Context, page int) {
	s.fetchMovies(ctx, keyPopular, "Failed to fetch popular movies",
		func() *PagedResult[models.MovieSummary] { return &s.movies.Popular },
		func(ctx context.Context) (*services.MoviePage, error) { return s.svc.Popular(ctx, page) },
		nil)
}

// FetchTopRated loads a page of top rated movies.
func (s *State) FetchTopRated(ctx context.Context, page int) {
	s.fetchMovies(ctx, keyTopRated, "Failed to fetch top rated movies",
		func() *PagedResult[models.MovieSummary] { return &s.movies.TopRated },
		func(ctx context.Context) (*services.MoviePage, error) { return s.svc.TopRated(ctx, page) },
		nil)
}

// FetchByGenre loads a page of movies in genreID. The entry is created when the first request goes out.
func (s *State) FetchByGenre(ctx context.Context, genreID, page int) {
	s.fetchMovies(ctx, genreKey(genreID), "Failed to fetch movies by genre",
		func() *PagedResult[models.MovieSummary] { return s.genreSlot(genreID) },
		func(ctx context.Context) (*services.MoviePage, error) { return s.svc.Discover(ctx, genreID, page) },
		nil)
}

// genreSlot returns the entry for genreID, creating it on first use. Callers hold mu.
func (s *State) genreSlot(genreID int) *PagedResult[models.MovieSummary] {
	p, ok := s.movies.ByGenre[genreID]
	if !ok {
		np := newPaged[models.MovieSummary]()
		p = &np
		s.movies.ByGenre[genreID] = p
	}
	return p
}

// SearchMovies searches movies. A rejected search clears the results.
func (s *State) SearchMovies(ctx context.Context, query string, page int) {
	s.search(ctx, query, page, false)
}

// SearchMulti searches movies and TV.
func (s *State) SearchMulti(ctx context.Context, query string, page int) {
	s.search(ctx, query, page, true)
}

func (s *State) search(ctx context.Context, query string, page int, multi bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.ClearSearch()
		return
	}

	s.mu.Lock()
	s.movies.Query = query
	s.movies.Multi = multi
	s.mu.Unlock()

	call := func(ctx context.Context) (*services.MoviePage, error) {
		if multi {
			return s.svc.SearchMulti(ctx, query, page)
		}
		return s.svc.SearchMovies(ctx, query, page)
	}

	s.fetchMovies(ctx, keySearch, "Failed to search movies",
		func() *PagedResult[models.MovieSummary] { return &s.movies.Search },
		call,
		func(p *PagedResult[models.MovieSummary]) { p.Results = []models.MovieSummary{} })
}

// ClearSearch resets the search collection and forgets the query. In-flight searches are dropped.
func (s *State) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin(keySearch)
	s.movies.Search = newPaged[models.MovieSummary]()
	s.movies.Query = ""
	s.movies.Multi = false
}
