package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
)

func TestStateColor(t *testing.T) {
	tests := []struct {
		class string
		want  string
		ok    bool
	}{
		{"state svcstate state0", string(ColorSuccess), true},
		{"state svcstate state1", string(ColorWarning), true},
		{"state svcstate state2", string(ColorError), true},
		{"state svcstate state3", string(ColorUnknown), true},
		{"state hstate hstate1", string(ColorError), true},
		{"state hstate hstatep", string(ColorMuted), true},
		{"count svcstate state2", string(ColorError), true},
		{"age recent", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			c, ok := StateColor(tt.class)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, string(c))
		})
	}
}

func TestClassStyle_RendersContent(t *testing.T) {
	DisableColors()
	assert.Equal(t, "CRIT", ClassStyle("state svcstate state2").Render("CRIT"))
	assert.Equal(t, "3", ClassStyle("count zero").Render("3"))
}

func TestSortIndicator(t *testing.T) {
	assert.Equal(t, SymbolSorted, SortIndicator("asc"))
	assert.Equal(t, SymbolReverse, SortIndicator("desc"))
	assert.Empty(t, SortIndicator(""))
}

func TestColumnWidths(t *testing.T) {
	widths := ColumnWidths(
		[]string{"Host", "State"},
		[][]string{{"web1", "OK"}, {"a-very-long-host-name", "CRIT"}},
		10,
	)
	assert.Equal(t, []int{10, 5}, widths)
}

func TestRenderSiteTable(t *testing.T) {
	DisableColors()
	out := RenderSiteTable([]SiteTableRow{
		{Status: SiteUp, Site: "prod", Alias: "Production", Version: "2.2.0p1", Hosts: "12", Latency: "3ms"},
		{Status: SiteDead, Site: "lab", Alias: "Lab", Version: "connection refused"},
		{Status: SiteDisabled, Site: "old"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "SITE")
	assert.Contains(t, lines[1], SymbolSuccess)
	assert.Contains(t, lines[1], "2.2.0p1")
	assert.Contains(t, lines[2], SymbolFail)
	assert.Contains(t, lines[2], "connection refused")
	assert.Contains(t, lines[3], SymbolPending)

	assert.Equal(t, "No sites configured", RenderSiteTable(nil))
}

func TestNewTable(t *testing.T) {
	tbl := NewTable([]TableColumn{{Title: "Host", Width: 8}}, []table.Row{{"web1"}, {"web2"}}, 5)
	assert.Len(t, tbl.Rows(), 2)
	assert.Contains(t, tbl.View(), "web1")
}

func TestSpinner_ClearsLineOnStop(t *testing.T) {
	DisableColors()
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Querying 2 sites")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Querying 2 sites...")
	assert.True(t, strings.HasSuffix(out, "\r"))
}
