package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ListID is a list identifier.
//
// TMDB returns list ids as numbers from account endpoints and as strings from GET /list/{id}; both decode to the same value.
type ListID int

func (id *ListID) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ListID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("list id must be a number or string: %w", err)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid list id %q: %w", s, err)
	}
	*id = ListID(n)
	return nil
}

func (id ListID) String() string { return strconv.Itoa(int(id)) }

// List is a list summary as returned by GET /account/{account_id}/lists.
type List struct {
	ID            ListID  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ItemCount     int     `json:"item_count"`
	FavoriteCount int     `json:"favorite_count"`
	ISO6391       string  `json:"iso_639_1,omitempty"`
	ListType      string  `json:"list_type,omitempty"`
	PosterPath    *string `json:"poster_path"`
}

func (l *List) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("list missing id")
	}
	if l.Name == "" {
		return fmt.Errorf("list %d missing name", l.ID)
	}
	return nil
}

// MovieList is a list with its items as returned by GET /list/{list_id}.
type MovieList struct {
	List
	CreatedBy string         `json:"created_by"`
	Items     []MovieSummary `json:"items"`
}

func (l *MovieList) Validate() error {
	if err := l.List.Validate(); err != nil {
		return err
	}
	for i := range l.Items {
		if err := l.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// Contains reports whether the list holds the title with movieID.
func (l MovieList) Contains(movieID int) bool {
	for _, it := range l.Items {
		if it.ID == movieID {
			return true
		}
	}
	return false
}

// ListRequest is the body for POST /list and POST /list/{list_id}.
type ListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language,omitempty"`
}

const (
	MaxListNameLength        = 50
	MaxListDescriptionLength = 200
)

// Validate requires a name and enforces the length limits TMDB's list form applies.
func (r ListRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("list name is required")
	}
	if n := utf8.RuneCountInString(r.Name); n > MaxListNameLength {
		return fmt.Errorf("list name is %d characters, limit is %d", n, MaxListNameLength)
	}
	if n := utf8.RuneCountInString(r.Description); n > MaxListDescriptionLength {
		return fmt.Errorf("list description is %d characters, limit is %d", n, MaxListDescriptionLength)
	}
	return nil
}

// MediaRequest is the body for add_item and remove_item.
type MediaRequest struct {
	MediaID int `json:"media_id"`
}

// ListMutationResponse is the body returned by list writes.
type ListMutationResponse struct {
	StatusResponse
	ListID ListID `json:"list_id,omitempty"`
}

func (r *ListMutationResponse) Validate() error { return nil }
