package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/view"
)

// DefaultInterval is the refresh interval of the watch screen.
const DefaultInterval = 30 * time.Second

// Source executes the watched view with a sort token.
type Source interface {
	Fetch(ctx context.Context, sortToken string) (*view.Output, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, sortToken string) (*view.Output, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, sortToken string) (*view.Output, error) {
	return f(ctx, sortToken)
}

// ViewMode is the current display mode.
type ViewMode int

const (
	ViewTable ViewMode = iota
	ViewDetail
)

// Model is the Bubble Tea model of the watch screen.
type Model struct {
	source   Source
	reloads  <-chan config.Reload
	interval time.Duration
	timeout  time.Duration

	out        *view.Output
	rows       []registry.Row // aligned with the table's rows
	table      table.Model
	detail     viewport.Model
	sortToken  string
	err        error
	reloadErr  error
	fetching   bool
	lastUpdate time.Time

	width    int
	height   int
	mode     ViewMode
	showHelp bool
	quitting bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// fetchedMsg carries the result of one fetch.
type fetchedMsg struct {
	out   *view.Output
	err   error
	token string
	time  time.Time
}

// reloadMsg carries a configuration reload.
type reloadMsg config.Reload

// NewModel creates the watch screen. sortToken is the initial sort, reloads
// may be nil.
func NewModel(source Source, sortToken string, interval time.Duration, reloads <-chan config.Reload) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		source:    source,
		reloads:   reloads,
		interval:  interval,
		timeout:   interval,
		sortToken: sortToken,
		table:     table.New(table.WithFocused(true)),
		detail:    viewport.New(0, 0),
		width:     80,
		height:    24,
	}
}

// Init fetches the view and starts the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.sortToken), m.tickCmd(), m.waitReloadCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.mode == ViewDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.fetchCmd(m.sortToken))

	case fetchedMsg:
		m.fetching = false
		m.lastUpdate = msg.time
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sortToken = msg.token
		m.setOutput(msg.out)

	case reloadMsg:
		m.reloadErr = msg.Err
		if msg.Err != nil {
			return m, m.waitReloadCmd()
		}
		return m, tea.Batch(m.waitReloadCmd(), m.fetchCmd(m.sortToken))
	}

	return m, nil
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.render()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchCmd runs the view with token. The model adopts the token only once
// the fetch succeeds.
func (m *Model) fetchCmd(token string) tea.Cmd {
	m.fetching = true
	source, timeout := m.source, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := source.Fetch(ctx, token)
		return fetchedMsg{out: out, err: err, token: token, time: time.Now()}
	}
}

func (m Model) waitReloadCmd() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	reloads := m.reloads
	return func() tea.Msg {
		r, ok := <-reloads
		if !ok {
			return nil
		}
		return reloadMsg(r)
	}
}

// SortToken returns the sort token of the displayed view.
func (m Model) SortToken() string { return m.sortToken }

// Err returns the error of the last fetch.
func (m Model) Err() error { return m.err }

// Output returns the displayed view.
func (m Model) Output() *view.Output { return m.out }

// SelectedRow returns the row under the cursor.
func (m Model) SelectedRow() (registry.Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil, false
	}
	return m.rows[i], true
}
