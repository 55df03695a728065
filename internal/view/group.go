package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// Canonicalize turns v into an order-stable value: lists become lists of
// canonical elements and maps become lists of [key, value] pairs sorted by
// key. Scalars are normalized and passed through.
func Canonicalize(v any) any {
	switch x := registry.Normalize(v).(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Canonicalize(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = []any{k, Canonicalize(x[k])}
		}
		return out
	default:
		return x
	}
}

// GroupValue collects the values that decide which group a row belongs to:
// the painter's group function result, or else the row's values of the
// painter's columns that are present.
func GroupValue(row registry.Row, cells []*Cell) []any {
	var group []any
	for _, c := range cells {
		p := c.Painter()
		if p == nil {
			continue
		}
		if p.GroupBy != nil {
			group = append(group, p.GroupBy(row, p.Args...))
			continue
		}
		for _, col := range p.ColumnsFor(c.PainterParameters()) {
			if v, ok := row[col]; ok {
				group = append(group, v)
			}
		}
	}
	return group
}

// GroupKey returns a comparable key for the row's group. Rows with equal
// group values get equal keys, regardless of map key order.
func GroupKey(row registry.Row, cells []*Cell) string {
	return groupEncode(Canonicalize(GroupValue(row, cells)))
}

// groupEncode writes a canonical value as a type tagged string.
func groupEncode(v any) string {
	var b strings.Builder
	encodeTo(&b, v)
	return b.String()
}

func encodeTo(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("n")
	case bool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(x))
	case int64:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(x))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeTo(b, e)
		}
		b.WriteByte(']')
	case map[string]any:
		encodeTo(b, Canonicalize(x))
	default:
		b.WriteString("?:")
		b.WriteString(strconv.Quote(registry.ToString(x)))
	}
}

// Group is a run of consecutive rows sharing a group key.
type Group struct {
	Key  string
	Rows []registry.Row
}

// GroupRows splits rows into groups of consecutive rows with equal keys.
// Without group cells all rows form one group.
func GroupRows(rows []registry.Row, cells []*Cell) []Group {
	if len(rows) == 0 {
		return nil
	}
	if len(cells) == 0 {
		return []Group{{Rows: rows}}
	}

	var groups []Group
	for _, row := range rows {
		key := GroupKey(row, cells)
		if n := len(groups); n > 0 && groups[n-1].Key == key {
			groups[n-1].Rows = append(groups[n-1].Rows, row)
			continue
		}
		groups = append(groups, Group{Key: key, Rows: []registry.Row{row}})
	}
	return groups
}
