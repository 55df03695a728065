package monitor

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyRefresh    = "r"
	KeyResetSort  = "0"
	KeyExpand     = "enter"
	KeyCollapse   = "esc"
	KeyToggleHelp = "?"
)

// HandleKeyMsg processes keys the screen owns. Navigation keys are left to
// the table or the detail viewport. It reports whether the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.fetchCmd(m.sortToken)

	case KeyExpand:
		if m.mode == ViewTable && len(m.rows) > 0 {
			m.mode = ViewDetail
			m.updateDetail()
		}
		return true, nil

	case KeyCollapse:
		m.mode = ViewTable
		return true, nil

	case KeyResetSort:
		return true, m.fetchCmd("")
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
		return true, m.toggleSort(n - 1)
	}
	return false, nil
}

// toggleSort fetches the view sorted the way a click on the header of
// column i sorts it. Columns without sorter are ignored.
func (m *Model) toggleSort(i int) tea.Cmd {
	if m.out == nil || i >= len(m.out.Cells) {
		return nil
	}
	token, ok := m.out.Cells[i].SortToken(m.out.Sort)
	if !ok {
		return nil
	}
	return m.fetchCmd(token)
}
