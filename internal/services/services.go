package services

import (
	"context"

	"github.com/desertthunder/tmdbx/internal/models"
)

// AuthService covers token issuance, session lifecycle and account lookup.
type AuthService interface {
	// RequestToken issues a short-lived request token.
	RequestToken(ctx context.Context) (*models.RequestTokenResponse, error)

	// ValidateWithLogin approves a request token with username and password.
	ValidateWithLogin(ctx context.Context, username, password, token string) (*models.RequestTokenResponse, error)

	// CreateSession exchanges an approved token for a session id.
	CreateSession(ctx context.Context, token string) (*models.SessionResponse, error)

	// DeleteSession invalidates a session id.
	DeleteSession(ctx context.Context, sessionID string) error

	// AccountDetails returns the account owning a session id.
	AccountDetails(ctx context.Context, sessionID string) (*models.Account, error)
}

// MovieService covers catalogue browsing and search.
type MovieService interface {
	Popular(ctx context.Context, page int) (*MoviePage, error)
	TopRated(ctx context.Context, page int) (*MoviePage, error)
	Discover(ctx context.Context, genreID, page int) (*MoviePage, error)
	SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error)
	SearchMulti(ctx context.Context, query string, page int) (*MoviePage, error)
	MovieDetails(ctx context.Context, id int) (*models.MovieDetails, error)
	MovieVideos(ctx context.Context, id int) (*models.VideoResults, error)
	MovieReviews(ctx context.Context, id, page int) (*models.Page[models.Review], error)
	Genres(ctx context.Context) (*models.GenreList, error)
}

// ListService covers the user's lists.
//
// Every write requires a session id; list writes that the API reports as unsuccessful are returned as errors.
type ListService interface {
	UserLists(ctx context.Context, accountID int, sessionID string, page int) (*ListPage, error)
	ListDetails(ctx context.Context, id models.ListID, sessionID string) (*models.MovieList, error)
	CreateList(ctx context.Context, sessionID string, req models.ListRequest) (*models.ListMutationResponse, error)
	UpdateList(ctx context.Context, sessionID string, id models.ListID, req models.ListRequest) (*models.ListMutationResponse, error)
	DeleteList(ctx context.Context, sessionID string, id models.ListID) (*models.ListMutationResponse, error)
	AddItem(ctx context.Context, sessionID string, id models.ListID, movieID int) (*models.ListMutationResponse, error)
	RemoveItem(ctx context.Context, sessionID string, id models.ListID, movieID int) (*models.ListMutationResponse, error)
}

// Service is the full TMDB surface implemented by [Client].
type Service interface {
	AuthService
	MovieService
	ListService
}

var _ Service = (*Client)(nil)
