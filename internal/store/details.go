package store

import (
	"context"

	"github.com/desertthunder/tmdbx/internal/models"
)

const (
	keyDetails = "details"
	keyVideos  = "videos"
	keyReviews = "reviews"
)

// DetailState holds the selected movie. Trailers and reviews load independently of the details.
type DetailState struct {
	MovieID       int
	Movie         *models.MovieDetails
	Loading       bool
	Error         *string
	Trailers      []models.Video
	VideosLoading bool
	VideosError   *string
	Reviews       PagedResult[models.Review]
}

func (d DetailState) clone() DetailState {
	if d.Movie != nil {
		m := *d.Movie
		d.Movie = &m
	}
	d.Error = clonePtr(d.Error)
	d.Trailers = cloneSlice(d.Trailers)
	d.VideosError = clonePtr(d.VideosError)
	d.Reviews = d.Reviews.clone()
	return d
}

// selectMovie switches the slot to id, resetting it when the id changes. Callers hold mu.
func (s *State) selectMovie(id int) {
	if s.details.MovieID == id {
		return
	}
	s.details = DetailState{MovieID: id, Reviews: newPaged[models.Review]()}
}

// FetchMovieDetails loads details, credits, videos and the first page of reviews for id.
func (s *State) FetchMovieDetails(ctx context.Context, id int) {
	s.mu.Lock()
	s.selectMovie(id)
	n := s.begin(keyDetails)
	s.details.Loading = true
	s.details.Error = nil
	s.mu.Unlock()

	movie, err := s.svc.MovieDetails(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(keyDetails, n) || s.details.MovieID != id {
		s.logger.Debug("dropping stale details", "movie_id", id)
		return
	}
	s.details.Loading = false
	if err != nil {
		s.logger.Warn("details fetch failed", "movie_id", id, "error", err)
		s.details.Error = errMessage(err, "Failed to fetch movie details")
		return
	}
	s.details.Movie = movie
}

// FetchMovieVideos loads the YouTube trailers and teasers for id.
func (s *State) FetchMovieVideos(ctx context.Context, id int) {
	s.mu.Lock()
	s.selectMovie(id)
	n := s.begin(keyVideos)
	s.details.VideosLoading = true
	s.details.VideosError = nil
	s.mu.Unlock()

	videos, err := s.svc.MovieVideos(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(keyVideos, n) || s.details.MovieID != id {
		return
	}
	s.details.VideosLoading = false
	if err != nil {
		s.details.VideosError = errMessage(err, "Failed to fetch videos")
		return
	}
	s.details.Trailers = models.YouTubeTrailers(videos.Results)
}

// FetchMovieReviews loads a page of reviews for id.
func (s *State) FetchMovieReviews(ctx context.Context, id, page int) {
	s.mu.Lock()
	s.selectMovie(id)
	n := s.begin(keyReviews)
	s.details.Reviews.start()
	s.mu.Unlock()

	reviews, err := s.svc.MovieReviews(ctx, id, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(keyReviews, n) || s.details.MovieID != id {
		return
	}
	if err != nil {
		s.details.Reviews.fail(err, "Failed to fetch reviews")
		return
	}
	s.details.Reviews.apply(reviews)
}

// ClearMovieDetails resets the selected movie. In-flight requests for it are dropped.
func (s *State) ClearMovieDetails() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range []string{keyDetails, keyVideos, keyReviews} {
		s.begin(k)
	}
	s.details = DetailState{Reviews: newPaged[models.Review]()}
}
