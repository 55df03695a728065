package view

import (
	"sort"

	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/sortkey"
)

type boundSorter struct {
	sorter *registry.Sorter
	dir    sortkey.Directive
}

// bindSorters looks up the sorters of the directives. Unknown sorters are
// dropped with a warning.
func bindSorters(reg *registry.Registry, directives []sortkey.Directive, log logger.Logger) []boundSorter {
	bound := make([]boundSorter, 0, len(directives))
	for _, d := range directives {
		s, ok := reg.Sorter(d.Sorter)
		if !ok {
			logger.OrDefault(log).Warn("ignoring unknown sorter %s", d.Sorter)
			continue
		}
		bound = append(bound, boundSorter{sorter: s, dir: d})
	}
	return bound
}

// SortRows orders rows in place by the directives, first directive first.
// The sort is stable. Joined directives compare the rows' joined sub-rows;
// a missing sub-row compares as an empty row.
func SortRows(reg *registry.Registry, rows []registry.Row, directives []sortkey.Directive, log logger.Logger) {
	bound := bindSorters(reg, directives, log)
	if len(bound) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(bound, rows[i], rows[j]) < 0
	})
}

func compareRows(bound []boundSorter, a, b registry.Row) int {
	for _, bs := range bound {
		ra, rb := a, b
		if bs.dir.Joined {
			ra, rb = joinedRow(a, bs.dir.Join), joinedRow(b, bs.dir.Join)
		}
		c := bs.sorter.Cmp(ra, rb)
		if bs.dir.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func joinedRow(row registry.Row, service string) registry.Row {
	if sub, ok := row.JoinRows()[service]; ok {
		return sub
	}
	return registry.Row{}
}

// sorterColumns returns the columns the directives' sorters need, split
// into columns of the rows themselves and columns of joined rows.
func sorterColumns(reg *registry.Registry, directives []sortkey.Directive) (plain, joined []string) {
	for _, d := range directives {
		s, ok := reg.Sorter(d.Sorter)
		if !ok {
			continue
		}
		if d.Joined {
			joined = append(joined, s.Columns...)
		} else {
			plain = append(plain, s.Columns...)
		}
	}
	return plain, joined
}
