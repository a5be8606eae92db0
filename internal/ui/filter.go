package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/sahilm/fuzzy"
)

// FilterMovies returns the movies whose titles fuzzy-match query, best match first.
// An empty query returns movies unchanged.
func FilterMovies(query string, movies []models.MovieSummary) []models.MovieSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return movies
	}

	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = strings.ToLower(m.DisplayTitle())
	}

	matches := fuzzy.Find(strings.ToLower(query), titles)
	out := make([]models.MovieSummary, len(matches))
	for i, match := range matches {
		out[i] = movies[match.Index]
	}
	return out
}

// fuzzyFilter is a case-insensitive [list.FilterFunc].
func fuzzyFilter(term string, targets []string) []list.Rank {
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}

	matches := fuzzy.Find(strings.ToLower(term), lower)
	ranks := make([]list.Rank, len(matches))
	for i, match := range matches {
		ranks[i] = list.Rank{Index: match.Index, MatchedIndexes: match.MatchedIndexes}
	}
	return ranks
}
