package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a focused Bubbles table with the default styling, used
// by the watch screen.
func NewTable(columns []TableColumn, rows []table.Row, height int) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)
	t.SetStyles(s)
	return t
}

// ColumnWidths sizes columns to their widest cell, header included, capped
// at max. Widths account for ANSI sequences.
func ColumnWidths(headers []string, rows [][]string, max int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if max > 0 && widths[i] > max {
			widths[i] = max
		}
	}
	return widths
}

// SiteStatus is the reachability of a site.
type SiteStatus string

const (
	SiteUp       SiteStatus = "up"
	SiteDead     SiteStatus = "dead"
	SiteDisabled SiteStatus = "disabled"
)

// SiteTableRow is one row of the sites table.
type SiteTableRow struct {
	Status  SiteStatus
	Site    string
	Alias   string
	Version string // program version, or the error of dead sites
	Hosts   string
	Latency string
}

// RenderSiteTable renders site reachability as a formatted table.
func RenderSiteTable(rows []SiteTableRow) string {
	if len(rows) == 0 {
		return "No sites configured"
	}

	headers := []string{"", "SITE", "ALIAS", "VERSION", "HOSTS", "LATENCY"}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{"", r.Site, r.Alias, r.Version, r.Hosts, r.Latency}
	}
	widths := ColumnWidths(headers, cells, 48)

	var b strings.Builder
	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = padRight(h, widths[i])
	}
	b.WriteString(HeaderStyle().Render(strings.Join(header, "  ")))
	b.WriteString("\n")

	for i, r := range rows {
		icon, style := siteIcon(r.Status)
		line := []string{padRight(style.Render(icon), widths[0])}
		for col := 1; col < len(headers); col++ {
			v := padRight(truncate(cells[i][col], widths[col]), widths[col])
			if col == 3 && r.Status == SiteDead {
				v = ErrorStyle().Render(v)
			} else if col == 5 {
				v = MutedStyle().Render(v)
			}
			line = append(line, v)
		}
		b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func siteIcon(status SiteStatus) (string, lipgloss.Style) {
	switch status {
	case SiteUp:
		return SymbolSuccess, SuccessStyle()
	case SiteDead:
		return SymbolFail, ErrorStyle()
	default:
		return SymbolPending, MutedStyle()
	}
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	if visible := lipgloss.Width(s); visible < width {
		return s + strings.Repeat(" ", width-visible)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
