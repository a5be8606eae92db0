package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tmdbx/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = listItem{}
)

// movieItem wraps [models.MovieSummary] to implement [list.Item].
type movieItem struct {
	movie models.MovieSummary
}

func (i movieItem) FilterValue() string { return i.movie.DisplayTitle() }
func (i movieItem) Title() string       { return i.movie.DisplayTitle() }
func (i movieItem) Description() string {
	desc := fmt.Sprintf("%s • ★ %s", i.movie.Year(), i.movie.Rating())
	if kind := i.movie.Kind(); kind != "movie" {
		desc = fmt.Sprintf("%s • %s", desc, kind)
	}
	return desc
}

// listItem wraps [models.List] to implement [list.Item].
type listItem struct {
	list models.List
}

func (i listItem) FilterValue() string { return i.list.Name }
func (i listItem) Title() string       { return i.list.Name }
func (i listItem) Description() string {
	desc := fmt.Sprintf("%d items", i.list.ItemCount)
	if i.list.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.list.Description)
	}
	return desc
}

func movieItems(movies []models.MovieSummary) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}

func listItems(lists []models.List) []list.Item {
	items := make([]list.Item, len(lists))
	for i, l := range lists {
		items[i] = listItem{list: l}
	}
	return items
}
