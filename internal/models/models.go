package models

import "fmt"

// Validator is implemented by every response type decoded from the API.
type Validator interface {
	Validate() error // Validate reports whether required fields are present
}

// Page is one page of a paginated TMDB collection.
type Page[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// Validate checks pagination metadata and each result that implements [Validator].
func (p *Page[T]) Validate() error {
	if p.Page < 0 || p.TotalPages < 0 {
		return fmt.Errorf("invalid pagination: page %d of %d", p.Page, p.TotalPages)
	}
	for i := range p.Results {
		if v, ok := any(&p.Results[i]).(Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("result %d: %w", i, err)
			}
		}
	}
	return nil
}

// StatusResponse is the generic body TMDB returns for writes and errors.
type StatusResponse struct {
	Success       *bool  `json:"success,omitempty"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (s *StatusResponse) Validate() error { return nil }

// Succeeded reports the success flag, treating an absent flag as success.
func (s *StatusResponse) Succeeded() bool {
	return s.Success == nil || *s.Success
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
