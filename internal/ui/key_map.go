package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	search  key.Binding
	lists   key.Binding
	popular key.Binding
	add     key.Binding
	remove  key.Binding
	next    key.Binding
	prev    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search")),
		lists:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "my lists")),
		popular: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "popular")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to list")),
		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		next:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		prev:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.lists, k.popular},
		{k.add, k.remove, k.next, k.prev, k.quit},
	}
}
