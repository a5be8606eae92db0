package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/tmdbx/internal/models"
)

// ListPage is a page of list summaries.
type ListPage = models.Page[models.List]

// UserLists fetches GET /account/{account_id}/lists. A page of 0 leaves the choice to the API.
func (c *Client) UserLists(ctx context.Context, accountID int, sessionID string, page int) (*ListPage, error) {
	params := sessionParams(sessionID)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return fetch[ListPage](ctx, c, http.MethodGet, fmt.Sprintf("/account/%d/lists", accountID), params, nil)
}

// ListDetails fetches GET /list/{list_id}. sessionID may be empty for public lists.
func (c *Client) ListDetails(ctx context.Context, id models.ListID, sessionID string) (*models.MovieList, error) {
	var params url.Values
	if sessionID != "" {
		params = sessionParams(sessionID)
	}
	return fetch[models.MovieList](ctx, c, http.MethodGet, fmt.Sprintf("/list/%d", id), params, nil)
}

// CreateList creates a list owned by the session's account.
func (c *Client) CreateList(ctx context.Context, sessionID string, req models.ListRequest) (*models.ListMutationResponse, error) {
	if req.Language == "" {
		req.Language = c.language
	}
	return mutate(ctx, c, http.MethodPost, "/list", sessionID, req)
}

// UpdateList renames or re-describes a list.
func (c *Client) UpdateList(ctx context.Context, sessionID string, id models.ListID, req models.ListRequest) (*models.ListMutationResponse, error) {
	return mutate(ctx, c, http.MethodPost, fmt.Sprintf("/list/%d", id), sessionID, models.ListRequest{Name: req.Name, Description: req.Description})
}

// DeleteList deletes a list.
func (c *Client) DeleteList(ctx context.Context, sessionID string, id models.ListID) (*models.ListMutationResponse, error) {
	return mutate(ctx, c, http.MethodDelete, fmt.Sprintf("/list/%d", id), sessionID, nil)
}

// AddItem adds a movie to a list.
func (c *Client) AddItem(ctx context.Context, sessionID string, id models.ListID, movieID int) (*models.ListMutationResponse, error) {
	return mutate(ctx, c, http.MethodPost, fmt.Sprintf("/list/%d/add_item", id), sessionID, models.MediaRequest{MediaID: movieID})
}

// RemoveItem removes a movie from a list.
func (c *Client) RemoveItem(ctx context.Context, sessionID string, id models.ListID, movieID int) (*models.ListMutationResponse, error) {
	return mutate(ctx, c, http.MethodPost, fmt.Sprintf("/list/%d/remove_item", id), sessionID, models.MediaRequest{MediaID: movieID})
}

// mutate performs a list write and rejects 2xx bodies that report success=false.
func mutate(ctx context.Context, c *Client, method, path, sessionID string, body any) (*models.ListMutationResponse, error) {
	res := c.Do(ctx, method, path, sessionParams(sessionID), body)

	var out models.ListMutationResponse
	if err := Decode(res, &out); err != nil {
		return nil, err
	}
	if !out.Succeeded() {
		msg := out.StatusMessage
		if msg == "" {
			msg = defaultMessage
		}
		return nil, &APIError{Status: res.Status, Message: msg}
	}
	return &out, nil
}
