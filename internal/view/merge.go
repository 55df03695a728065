package view

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// mergeFunc combines the values two sites report for one column.
type mergeFunc func(a, b any) any

// mergePolicy picks the merge function for a column by its name, or by the
// part after its table prefix ("hostgroup_num_hosts" -> "num_hosts").
// Unknown names keep the first value.
func mergePolicy(column string) mergeFunc {
	names := []string{column}
	if _, suffix, ok := strings.Cut(column, "_"); ok {
		names = append(names, suffix)
	}
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "num_"), strings.HasPrefix(name, "members"):
			return mergeSum
		case strings.HasPrefix(name, "worst_service"):
			return worstState(2)
		case strings.HasPrefix(name, "worst_host"):
			return worstState(1)
		}
	}
	return keepFirst
}

func keepFirst(a, _ any) any { return a }

// mergeSum adds numbers and concatenates lists and strings.
func mergeSum(a, b any) any {
	switch x := a.(type) {
	case []any:
		y, _ := b.([]any)
		out := make([]any, 0, len(x)+len(y))
		return append(append(out, x...), y...)
	case string:
		y, _ := b.(string)
		return x + y
	}

	ia, aInt := a.(int64)
	ib, bInt := b.(int64)
	if aInt && bInt {
		return ia + ib
	}
	fa, okA := registry.ToFloat(a)
	fb, okB := registry.ToFloat(b)
	if okA && okB {
		return registry.Normalize(fa + fb)
	}
	if a == nil {
		return b
	}
	return a
}

// worstState returns a reducer in which dominant always wins and otherwise
// the higher state wins.
func worstState(dominant int64) mergeFunc {
	return func(a, b any) any {
		ia, _ := registry.ToInt(a)
		ib, _ := registry.ToInt(b)
		if ia == dominant || ib == dominant {
			return dominant
		}
		if ia > ib {
			return ia
		}
		return ib
	}
}

// MergeRows merges raw rows (site first, merge key second) that share a merge
// key. columns names every value after the site column. The site of a merged
// row is "". The result is ordered by merge key.
func MergeRows(data [][]any, columns []string) [][]any {
	funcs := make([]mergeFunc, len(columns))
	for i, c := range columns {
		funcs[i] = mergePolicy(c)
	}

	var keys []any
	merged := map[string][]any{}
	for _, row := range data {
		if len(row) < 2 {
			continue
		}
		id := groupEncode(registry.Normalize(row[1]))
		old, seen := merged[id]
		if !seen {
			keys = append(keys, row[1])
			merged[id] = append([]any(nil), row...)
			continue
		}

		next := make([]any, len(old))
		next[0] = ""
		for i := 1; i < len(old); i++ {
			var b any
			if i < len(row) {
				b = row[i]
			}
			if i-1 < len(funcs) {
				next[i] = funcs[i-1](old[i], b)
			} else {
				next[i] = old[i]
			}
		}
		merged[id] = next
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return registry.CompareValues(keys[i], keys[j]) < 0
	})

	out := make([][]any, len(keys))
	for i, k := range keys {
		out[i] = merged[groupEncode(registry.Normalize(k))]
	}
	return out
}
