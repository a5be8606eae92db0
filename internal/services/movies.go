package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/tmdbx/internal/models"
)

// MoviePage is a page of movie or TV summaries.
type MoviePage = models.Page[models.MovieSummary]

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// Popular fetches GET /movie/popular.
func (c *Client) Popular(ctx context.Context, page int) (*MoviePage, error) {
	return fetch[MoviePage](ctx, c, http.MethodGet, "/movie/popular", pageParams(page), nil)
}

// TopRated fetches GET /movie/top_rated.
func (c *Client) TopRated(ctx context.Context, page int) (*MoviePage, error) {
	return fetch[MoviePage](ctx, c, http.MethodGet, "/movie/top_rated", pageParams(page), nil)
}

// Discover fetches GET /discover/movie filtered by genre.
func (c *Client) Discover(ctx context.Context, genreID, page int) (*MoviePage, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	return fetch[MoviePage](ctx, c, http.MethodGet, "/discover/movie", params, nil)
}

// SearchMovies fetches GET /search/movie.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return fetch[MoviePage](ctx, c, http.MethodGet, "/search/movie", params, nil)
}

// SearchMulti fetches GET /search/multi, which mixes movie, TV and person results.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return fetch[MoviePage](ctx, c, http.MethodGet, "/search/multi", params, nil)
}

// MovieDetails fetches GET /movie/{id} with videos, credits and reviews appended.
func (c *Client) MovieDetails(ctx context.Context, id int) (*models.MovieDetails, error) {
	params := url.Values{"append_to_response": {"videos,credits,reviews"}}
	return fetch[models.MovieDetails](ctx, c, http.MethodGet, fmt.Sprintf("/movie/%d", id), params, nil)
}

// MovieVideos fetches GET /movie/{id}/videos.
func (c *Client) MovieVideos(ctx context.Context, id int) (*models.VideoResults, error) {
	return fetch[models.VideoResults](ctx, c, http.MethodGet, fmt.Sprintf("/movie/%d/videos", id), nil, nil)
}

// MovieReviews fetches GET /movie/{id}/reviews.
func (c *Client) MovieReviews(ctx context.Context, id, page int) (*models.Page[models.Review], error) {
	return fetch[models.Page[models.Review]](ctx, c, http.MethodGet, fmt.Sprintf("/movie/%d/reviews", id), pageParams(page), nil)
}

// Genres fetches GET /genre/movie/list.
func (c *Client) Genres(ctx context.Context) (*models.GenreList, error) {
	return fetch[models.GenreList](ctx, c, http.MethodGet, "/genre/movie/list", nil, nil)
}
