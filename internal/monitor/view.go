package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/lsview/internal/output"
)

// helpBindings are the keyboard shortcuts shown in the help overlay.
var helpBindings = []struct{ Key, Desc string }{
	{"q / Ctrl+C", "Quit"},
	{"r", "Refresh now"},
	{"1-9", "Sort by column, again to reverse"},
	{"0", "Default sort"},
	{"up / k", "Previous row"},
	{"down / j", "Next row"},
	{"Enter", "Show row detail"},
	{"Esc", "Back / close"},
	{"?", "Toggle this help"},
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.out == nil && m.err == nil:
		b.WriteString(StatsStyle.Render(" Querying sites..."))
	case m.out == nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	case m.mode == ViewDetail:
		b.WriteString(m.detail.View())
	case len(m.rows) == 0:
		b.WriteString(StatsStyle.Render(" No rows"))
	default:
		b.WriteString(m.table.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	if m.out == nil {
		return HeaderStyle.Render("lsview watch")
	}
	stats := fmt.Sprintf(" | %d rows", len(m.out.Rows))
	if len(m.out.Dead) > 0 {
		stats += fmt.Sprintf(" | %d sites down", len(m.out.Dead))
	}
	if !m.lastUpdate.IsZero() {
		stats += " | updated " + humanize.Time(m.lastUpdate)
	}
	if m.fetching {
		stats += " | refreshing"
	}
	return HeaderStyle.Render(m.out.View.DisplayTitle()) + StatsStyle.Render(stats)
}

func (m Model) renderFooter() string {
	var lines []string
	if m.err != nil && m.out != nil {
		lines = append(lines, ErrorStyle.Render(m.err.Error()))
	}
	if m.reloadErr != nil {
		lines = append(lines, ErrorStyle.Render("Config reload failed: "+m.reloadErr.Error()))
	}
	if m.out != nil {
		for _, n := range output.Notices(m.out) {
			lines = append(lines, NoticeStyle.Render(n))
		}
	}
	lines = append(lines, FooterStyle.Render("q quit | r refresh | 1-9 sort | enter detail | ? help"))
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	lines := []string{LabelStyle.Render("Keyboard Shortcuts"), ""}
	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}
	lines = append(lines, "", helpDescStyle.Render("Press ? to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		helpBoxStyle.Render(strings.Join(lines, "\n")))
}
