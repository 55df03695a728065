package builtin

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// cmpSimpleNumber compares the raw values of a column.
func cmpSimpleNumber(column string) func(a, b registry.Row) int {
	return func(a, b registry.Row) int {
		return registry.CompareValues(a[column], b[column])
	}
}

// cmpInsensitiveString orders case-insensitively and breaks ties by the
// exact spelling, so the order is strict.
func cmpInsensitiveString(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func cmpSimpleString(column string) func(a, b registry.Row) int {
	return func(a, b registry.Row) int {
		return cmpInsensitiveString(registry.ToString(a[column]), registry.ToString(b[column]))
	}
}

func cmpStringList(column string) func(a, b registry.Row) int {
	join := func(v any) string {
		list, _ := v.([]any)
		var s strings.Builder
		for _, e := range list {
			s.WriteString(registry.ToString(e))
		}
		return s.String()
	}
	return func(a, b registry.Row) int {
		return cmpInsensitiveString(join(a[column]), join(b[column]))
	}
}

// numSplit cuts s into alternating runs of digits and non-digits.
func numSplit(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if i > start && unicode.IsDigit(r) != unicode.IsDigit(rune(s[start])) {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

// cmpNumSplitString compares strings so that embedded numbers order
// numerically: "web2" sorts before "web10".
func cmpNumSplitString(a, b string) int {
	pa, pb := numSplit(strings.ToLower(a)), numSplit(strings.ToLower(b))
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := strconv.ParseUint(pa[i], 10, 64)
		nb, errB := strconv.ParseUint(pb[i], 10, 64)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			if c := strings.Compare(pa[i], pb[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

func cmpNumSplit(column string) func(a, b registry.Row) int {
	return func(a, b registry.Row) int {
		return cmpNumSplitString(registry.ToString(a[column]), registry.ToString(b[column]))
	}
}

// splitIP returns the octets of a dotted address, or nil when s is not one.
func splitIP(s string) []int64 {
	fields := strings.Split(s, ".")
	out := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil
		}
		out[i] = n
	}
	return out
}

// cmpIPAddress orders dotted addresses by octet. Anything that is not an
// address sorts after addresses, by string.
func cmpIPAddress(column string) func(a, b registry.Row) int {
	return func(a, b registry.Row) int {
		sa, sb := registry.ToString(a[column]), registry.ToString(b[column])
		ia, ib := splitIP(sa), splitIP(sb)
		switch {
		case ia != nil && ib != nil:
			for i := 0; i < len(ia) && i < len(ib); i++ {
				if ia[i] != ib[i] {
					if ia[i] < ib[i] {
						return -1
					}
					return 1
				}
			}
			return len(ia) - len(ib)
		case ia != nil:
			return -1
		case ib != nil:
			return 1
		}
		return strings.Compare(sa, sb)
	}
}

// serviceNameEquiv ranks the agent's own services before all others.
func serviceNameEquiv(name string) int {
	switch name {
	case "Check_MK":
		return -6
	case "Check_MK Agent":
		return -5
	case "Check_MK Discovery":
		return -4
	case "Check_MK inventory":
		return -3
	case "Check_MK HW/SW Inventory":
		return -2
	}
	return 0
}

func cmpServiceName(column string) func(a, b registry.Row) int {
	return func(a, b registry.Row) int {
		sa, sb := registry.ToString(a[column]), registry.ToString(b[column])
		if ea, eb := serviceNameEquiv(sa), serviceNameEquiv(sb); ea != eb {
			return ea - eb
		}
		return cmpNumSplitString(sa, sb)
	}
}

// perfValue returns the n-th value of a performance data string without
// its unit, or "" when there is none.
func perfValue(perfdata string, n int) string {
	fields := strings.Fields(perfdata)
	if n < 0 || n >= len(fields) {
		return ""
	}
	_, rest, ok := strings.Cut(fields[n], "=")
	if !ok {
		return ""
	}
	value, _, _ := strings.Cut(rest, ";")
	return value
}

func trimUnit(value string) string {
	return strings.TrimRightFunc(value, func(r rune) bool { return !unicode.IsDigit(r) })
}

func cmpPerfValue(column string, n int) func(a, b registry.Row) int {
	num := func(r registry.Row) any {
		v := trimUnit(perfValue(registry.ToString(r[column]), n))
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return nil
	}
	return func(a, b registry.Row) int {
		return registry.CompareValues(num(a), num(b))
	}
}
