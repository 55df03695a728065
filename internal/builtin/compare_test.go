package builtin

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/lsview/internal/registry"
)

func sortedBy(cmp func(a, b registry.Row) int, column string, values ...any) []any {
	rows := make([]registry.Row, len(values))
	for i, v := range values {
		rows[i] = registry.Row{column: v}
	}
	sort.SliceStable(rows, func(i, j int) bool { return cmp(rows[i], rows[j]) < 0 })
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r[column]
	}
	return out
}

func TestCmpNumSplit(t *testing.T) {
	got := sortedBy(cmpNumSplit("host_name"), "host_name", "web10", "Web2", "db1", "web2a", "web")
	assert.Equal(t, []any{"db1", "web", "Web2", "web2a", "web10"}, got)
	assert.Equal(t, 0, cmpNumSplitString("Host1", "host1"))
	assert.Negative(t, cmpNumSplitString("1host", "host"))
}

func TestNumSplit(t *testing.T) {
	assert.Equal(t, []string{"web", "10", "-a", "2"}, numSplit("web10-a2"))
	assert.Nil(t, numSplit(""))
}

func TestCmpInsensitiveString(t *testing.T) {
	got := sortedBy(cmpSimpleString("c"), "c", "beta", "Alpha", "alpha", "Beta")
	assert.Equal(t, []any{"Alpha", "alpha", "Beta", "beta"}, got)
}

func TestCmpIPAddress(t *testing.T) {
	got := sortedBy(cmpIPAddress("host_address"), "host_address",
		"10.0.0.10", "10.0.0.9", "host.example", "9.255.0.1", "10.0.0.9.1")
	assert.Equal(t, []any{"9.255.0.1", "10.0.0.9", "10.0.0.9.1", "10.0.0.10", "host.example"}, got)
}

func TestCmpServiceName(t *testing.T) {
	got := sortedBy(cmpServiceName("service_description"), "service_description",
		"Memory", "Check_MK Discovery", "CPU load", "Check_MK", "Interface 10", "Interface 2")
	assert.Equal(t, []any{"Check_MK", "Check_MK Discovery", "CPU load", "Interface 2", "Interface 10", "Memory"}, got)
}

func TestCmpSimpleNumber(t *testing.T) {
	got := sortedBy(cmpSimpleNumber("service_state"), "service_state", int64(2), nil, int64(0), 1.5)
	assert.Equal(t, []any{nil, int64(0), 1.5, int64(2)}, got)
}

func TestCmpStringList(t *testing.T) {
	got := sortedBy(cmpStringList("members"), "members", []any{"b"}, []any{"a", "z"}, nil)
	assert.Equal(t, []any{nil, []any{"a", "z"}, []any{"b"}}, got)
}

func TestPerfValue(t *testing.T) {
	perf := "load1=0.52;5;10;0; load5=1.2;5;10;0; mem=2048MB"
	assert.Equal(t, "0.52", perfValue(perf, 0))
	assert.Equal(t, "2048MB", perfValue(perf, 2))
	assert.Equal(t, "2048", trimUnit(perfValue(perf, 2)))
	assert.Equal(t, "", perfValue(perf, 3))
	assert.Equal(t, "", perfValue("garbage", 0))

	got := sortedBy(cmpPerfValue("p", 0), "p", "x=10;1", "x=9.5", "", "x=100ms")
	assert.Equal(t, []any{"", "x=9.5", "x=10;1", "x=100ms"}, got)
}
