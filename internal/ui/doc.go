// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a thin view over [store.State]:
//  1. [PopularView] : Browse popular movies page by page
//  2. [SearchView] : Search movies with a text input
//  3. [DetailsView] : Overview, cast, trailers and reviews for one movie
//  4. [ListsView] : The signed-in user's lists
//  5. [ListItemsView] : Items of one list, with fuzzy filtering
//  6. [PickListView] : Choose a list to add the selected movie to
//
// Commands run store actions off the update loop and answer with a [Msg] carrying a fresh [store.Snapshot];
// the model only ever renders snapshots.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
