package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/store"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PopularView ViewState = iota
	SearchView
	DetailsView
	ListsView
	ListItemsView
	PickListView
)

const msgSignIn = "Sign in with `tmdbx auth login` to manage lists"

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	state     *store.State
	imageBase string
	snap      store.Snapshot

	view    ViewState
	back    ViewState // view to return to from details and the list picker
	width   int
	height  int
	loading bool
	status  string
	failed  bool
	picking *models.MovieSummary

	popular list.Model
	results list.Model
	lists   list.Model
	items   list.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model over state. imageBase is the CDN root used for links.
func NewModel(ctx context.Context, state *store.State, imageBase string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.CharLimit = 100
	ti.Prompt = "🔍 "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return &Model{
		ctx:       ctx,
		state:     state,
		imageBase: imageBase,
		snap:      state.Snapshot(),
		view:      PopularView,
		popular:   newList("Popular Movies"),
		results:   newList("Search Results"),
		lists:     newList("My Lists"),
		items:     newList("List Items"),
		input:     ti,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Filter = fuzzyFilter
	l.SetShowHelp(false)
	return l
}

// View returns the active view.
func (m *Model) View() string {
	header := m.renderHeader()

	var body string
	switch m.view {
	case PopularView:
		body = m.renderBrowse(&m.popular, m.keys.search, m.keys.lists, m.keys.add, m.keys.next, m.keys.prev)
	case SearchView:
		body = m.renderSearch()
	case DetailsView:
		body = m.renderDetails()
	case ListsView:
		body = m.renderBrowse(&m.lists, m.keys.enter, m.keys.remove, m.keys.back)
	case ListItemsView:
		body = m.renderBrowse(&m.items, m.keys.enter, m.keys.remove, m.keys.back)
	case PickListView:
		body = m.renderPicker()
	}

	return fmt.Sprintf("%s\n%s%s", header, body, m.renderStatus())
}

// Init restores the persisted session and loads the first page of popular movies.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.restoreSession(), m.fetchPopular(1))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.popular, &m.results, &m.lists, &m.items} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		m.input.Width = msg.Width - 8
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.apply(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case PopularView:
			return m.handleBrowseKeys(&m.popular, msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailsView:
			return m.handleDetailsKeys(msg)
		case ListsView:
			return m.handleListsKeys(msg)
		case ListItemsView:
			return m.handleItemsKeys(msg)
		case PickListView:
			return m.handlePickerKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// apply stores the snapshot carried by msg and refreshes the widgets that show it.
func (m *Model) apply(msg Msg) (tea.Model, tea.Cmd) {
	m.snap = msg.snap
	m.loading = false

	switch msg.kind {
	case MsgSessionRestored:
		if e := m.snap.Session.Error; e != nil {
			m.setStatus(*e, true)
		}
	case MsgMoviesLoaded:
		p := m.snap.Movies.Popular
		m.popular.SetItems(movieItems(p.Results))
		m.popular.Title = fmt.Sprintf("Popular Movies (page %d of %d)", p.Page, max(p.TotalPages, 1))
		if p.Error != nil {
			m.setStatus(*p.Error, true)
		}
	case MsgSearchLoaded:
		p := m.snap.Movies.Search
		m.results.SetItems(movieItems(p.Results))
		m.results.Title = fmt.Sprintf("Results for %q (%d)", m.snap.Movies.Query, p.TotalResults)
		if p.Error != nil {
			m.setStatus(*p.Error, true)
		}
	case MsgDetailsLoaded:
		if e := m.snap.Details.Error; e != nil {
			m.setStatus(*e, true)
		}
	case MsgListsLoaded:
		m.refreshLists()
		if e := m.snap.Lists.UserLists.Error; e != nil {
			m.setStatus(*e, true)
		}
	case MsgListLoaded:
		m.refreshItems()
		if e := m.snap.Lists.CurrentError; e != nil {
			m.setStatus(*e, true)
		}
	case MsgOperationDone:
		if op, ok := m.snap.Lists.Operations[msg.opID]; ok {
			if op.Error != nil {
				m.setStatus(*op.Error, true)
			} else {
				m.setStatus(op.Message, false)
			}
		}
		m.state.ClearOperation(msg.opID)
		m.refreshLists()
		m.refreshItems()
	}
	return m, nil
}

func (m *Model) refreshLists() {
	m.lists.SetItems(listItems(m.snap.Lists.UserLists.Items))
}

func (m *Model) refreshItems() {
	if cur := m.snap.Lists.CurrentList; cur != nil {
		m.items.SetItems(movieItems(cur.Items))
		m.items.Title = cur.Name
	}
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// filtering reports whether l owns the keyboard for its filter prompt.
func filtering(l *list.Model) bool {
	return l.FilterState() == list.Filtering
}

func selectedMovie(l *list.Model) (models.MovieSummary, bool) {
	if it, ok := l.SelectedItem().(movieItem); ok {
		return it.movie, true
	}
	return models.MovieSummary{}, false
}

func selectedList(l *list.Model) (models.List, bool) {
	if it, ok := l.SelectedItem().(listItem); ok {
		return it.list, true
	}
	return models.List{}, false
}

func (m *Model) forward(l *list.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

// handleBrowseKeys drives the popular and search result lists.
func (m *Model) handleBrowseKeys(l *list.Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if filtering(l) {
		return m.forward(l, msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if movie, ok := selectedMovie(l); ok {
			return m, m.openDetails(movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.popular):
		m.view = PopularView
		return m, nil
	case key.Matches(msg, m.keys.lists):
		return m, m.openLists()
	case key.Matches(msg, m.keys.add):
		if movie, ok := selectedMovie(l); ok {
			return m, m.startPick(movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.next), key.Matches(msg, m.keys.prev):
		return m, m.turnPage(key.Matches(msg, m.keys.next))
	case key.Matches(msg, m.keys.back) && m.view == SearchView:
		m.view = PopularView
		return m, nil
	}

	return m.forward(l, msg)
}

func (m *Model) turnPage(forward bool) tea.Cmd {
	p := m.snap.Movies.Popular
	if m.view == SearchView {
		p = m.snap.Movies.Search
	}

	page := p.Page - 1
	if forward {
		page = p.Page + 1
	}
	if page < 1 || (p.TotalPages > 0 && page > p.TotalPages) {
		return nil
	}

	if m.view == SearchView {
		return m.search(m.snap.Movies.Query, page)
	}
	return m.fetchPopular(page)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.input.Focused() {
		return m.handleBrowseKeys(&m.results, msg)
	}

	switch msg.Type {
	case tea.KeyEnter:
		m.input.Blur()
		return m, m.search(m.input.Value(), 1)
	case tea.KeyEsc:
		m.input.Blur()
		if len(m.results.Items()) == 0 {
			m.view = PopularView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.snap.Details
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.back
		return m, nil
	case key.Matches(msg, m.keys.add):
		if d.Movie != nil {
			return m, m.startPick(d.Movie.MovieSummary)
		}
	case key.Matches(msg, m.keys.next):
		if d.Reviews.Page < d.Reviews.TotalPages {
			return m, m.fetchReviews(d.MovieID, d.Reviews.Page+1)
		}
	case key.Matches(msg, m.keys.prev):
		if d.Reviews.Page > 1 {
			return m, m.fetchReviews(d.MovieID, d.Reviews.Page-1)
		}
	}
	return m, nil
}

func (m *Model) handleListsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if filtering(&m.lists) {
		return m.forward(&m.lists, msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PopularView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if l, ok := selectedList(&m.lists); ok {
			m.items.SetItems(nil)
			m.items.Title = l.Name
			m.view = ListItemsView
			return m, m.fetchList(l.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if l, ok := selectedList(&m.lists); ok {
			return m, m.mutate(func() string { return m.state.DeleteList(m.ctx, l.ID) })
		}
		return m, nil
	}

	return m.forward(&m.lists, msg)
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if filtering(&m.items) {
		return m.forward(&m.items, msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListsView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if movie, ok := selectedMovie(&m.items); ok {
			return m, m.openDetails(movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		cur := m.snap.Lists.CurrentList
		movie, ok := selectedMovie(&m.items)
		if cur != nil && ok {
			listID := cur.ID
			return m, m.mutate(func() string { return m.state.RemoveMovieFromList(m.ctx, listID, movie.ID) })
		}
		return m, nil
	}

	return m.forward(&m.items, msg)
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if filtering(&m.lists) {
		return m.forward(&m.lists, msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		m.view = m.back
		m.picking = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		l, ok := selectedList(&m.lists)
		if !ok || m.picking == nil {
			return m, nil
		}
		movieID := m.picking.ID
		m.view = m.back
		m.picking = nil
		return m, m.mutate(func() string { return m.state.AddMovieToList(m.ctx, l.ID, movieID) })
	}

	return m.forward(&m.lists, msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.view {
	case PopularView:
		return m.forward(&m.popular, msg)
	case SearchView:
		return m.forward(&m.results, msg)
	case ListsView, PickListView:
		return m.forward(&m.lists, msg)
	case ListItemsView:
		return m.forward(&m.items, msg)
	}
	return m, nil
}

func (m *Model) openDetails(id int) tea.Cmd {
	m.back = m.view
	m.view = DetailsView
	return m.run(MsgDetailsLoaded, func() {
		m.state.FetchMovieDetails(m.ctx, id)
		m.state.FetchMovieVideos(m.ctx, id)
		m.state.FetchMovieReviews(m.ctx, id, 1)
	})
}

func (m *Model) openLists() tea.Cmd {
	if !m.snap.Session.IsAuthenticated {
		m.setStatus(msgSignIn, true)
		return nil
	}
	m.view = ListsView
	return m.fetchLists()
}

func (m *Model) startPick(movie models.MovieSummary) tea.Cmd {
	if !m.snap.Session.IsAuthenticated {
		m.setStatus(msgSignIn, true)
		return nil
	}
	m.back = m.view
	m.view = PickListView
	m.picking = &movie
	if len(m.lists.Items()) == 0 {
		return m.fetchLists()
	}
	return nil
}

// run performs action off the update loop and answers with a snapshot.
func (m *Model) run(kind MsgKind, action func()) tea.Cmd {
	m.loading = true
	m.status = ""
	return func() tea.Msg {
		action()
		return stateMsg(kind, m.state.Snapshot())
	}
}

// mutate runs a list mutation and answers with its operation id.
func (m *Model) mutate(action func() string) tea.Cmd {
	m.loading = true
	m.status = ""
	return func() tea.Msg {
		id := action()
		return operationDoneMsg(id, m.state.Snapshot())
	}
}

func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		if id := m.state.Snapshot().Session.SessionID; id != nil {
			m.state.RestoreSession(m.ctx, *id)
		}
		return stateMsg(MsgSessionRestored, m.state.Snapshot())
	}
}

func (m *Model) fetchPopular(page int) tea.Cmd {
	return m.run(MsgMoviesLoaded, func() { m.state.FetchPopular(m.ctx, page) })
}

func (m *Model) search(query string, page int) tea.Cmd {
	return m.run(MsgSearchLoaded, func() { m.state.SearchMovies(m.ctx, query, page) })
}

func (m *Model) fetchReviews(id, page int) tea.Cmd {
	return m.run(MsgDetailsLoaded, func() { m.state.FetchMovieReviews(m.ctx, id, page) })
}

func (m *Model) fetchLists() tea.Cmd {
	return m.run(MsgListsLoaded, func() { m.state.GetUserLists(m.ctx) })
}

func (m *Model) fetchList(id models.ListID) tea.Cmd {
	return m.run(MsgListLoaded, func() { m.state.GetListDetails(m.ctx, id) })
}

func (m *Model) renderHeader() string {
	who := "guest"
	if u := m.snap.Session.User; m.snap.Session.IsAuthenticated && u != nil {
		who = u.Username
	}
	return styles.title.Render(fmt.Sprintf("TMDB • %s", who))
}

func (m *Model) renderStatus() string {
	var out string
	if m.loading {
		out = fmt.Sprintf("\n%s Loading...", m.spinner.View())
	}
	if m.status != "" {
		style := styles.ok
		if m.failed {
			style = styles.err
		}
		out += "\n" + style.Render(m.status)
	}
	return out
}

func (m *Model) renderBrowse(l *list.Model, keys ...key.Binding) string {
	keys = append(keys, m.keys.quit)
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderSearch() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.add, m.keys.next, m.keys.prev, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.input.View(), m.results.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderPicker() string {
	title := "Add to which list?"
	if m.picking != nil {
		title = fmt.Sprintf("Add '%s' to which list?", m.picking.DisplayTitle())
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(title), m.lists.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetails() string {
	d := m.snap.Details
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.add, m.keys.next, m.keys.prev, m.keys.back, m.keys.quit})

	if d.Movie == nil {
		if d.Error != nil {
			return styles.err.Render(fmt.Sprintf("Error: %s", *d.Error)) + "\n\n" + helpView
		}
		return helpView
	}

	mv := d.Movie
	width := max(m.width-4, 40)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.title.Render(fmt.Sprintf("%s (%s)", mv.DisplayTitle(), mv.Year())))
	if mv.Tagline != "" {
		fmt.Fprintf(&b, "%s\n\n", styles.help.Render(mv.Tagline))
	}
	fmt.Fprintf(&b, "%s %s • %s • %s\n\n", styles.rating.Render("★"), mv.Rating(), mv.RuntimeString(), mv.GenreNames())
	if mv.Overview != "" {
		fmt.Fprintf(&b, "%s\n\n", wrap.Render(mv.Overview))
	}

	if c := mv.Credits; c != nil {
		if dirs := c.Directors(); len(dirs) > 0 {
			names := make([]string, len(dirs))
			for i, cr := range dirs {
				names[i] = cr.Name
			}
			fmt.Fprintf(&b, "%s %s\n", styles.label.Render("Directed by"), strings.Join(names, ", "))
		}
		if cast := c.TopCast(5); len(cast) > 0 {
			b.WriteString(styles.label.Render("Cast") + "\n")
			for _, p := range cast {
				fmt.Fprintf(&b, "  • %s as %s\n", p.Name, p.Character)
			}
		}
		b.WriteString("\n")
	}

	if len(d.Trailers) > 0 {
		b.WriteString(styles.label.Render("Trailers") + "\n")
		for _, v := range d.Trailers {
			fmt.Fprintf(&b, "  • %s %s\n", v.Name, styles.help.Render(v.URL()))
		}
		b.WriteString("\n")
	}

	if poster := mv.PosterURL(m.imageBase, models.PosterMedium); poster != "" {
		fmt.Fprintf(&b, "%s %s\n\n", styles.label.Render("Poster"), poster)
	}

	r := d.Reviews
	if len(r.Results) > 0 {
		fmt.Fprintf(&b, "%s\n", styles.label.Render(fmt.Sprintf("Reviews (page %d of %d)", r.Page, max(r.TotalPages, 1))))
		for _, rv := range r.Results[:min(len(r.Results), 3)] {
			fmt.Fprintf(&b, "  %s, %s\n", styles.ok.Render(rv.Author), models.FormatReviewDate(rv.CreatedAt))
			fmt.Fprintf(&b, "%s\n", wrap.PaddingLeft(2).Render(truncate(rv.Content, 280)))
		}
	} else if r.Error != nil {
		fmt.Fprintf(&b, "%s\n", styles.warn.Render(*r.Error))
	}

	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
