package livestatus

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// Fixture is an in-process site answering queries from static tables. It
// understands GET, Columns, Filter, And, Or, Negate and Limit headers and
// ignores the rest. Fixtures back demo sites and tests.
type Fixture struct {
	Tables map[string][]map[string]any `yaml:"tables"`
}

// NewFixture wraps in-memory tables.
func NewFixture(tables map[string][]map[string]any) *Fixture {
	return &Fixture{Tables: tables}
}

// LoadFixture reads a fixture YAML file with a top level "tables" mapping.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't read fixture %s", path), "Check the fixture: socket path")
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Fixture %s is not valid YAML", path), "")
	}
	for table, rows := range f.Tables {
		for i, row := range rows {
			f.Tables[table][i] = registry.Normalize(row).(map[string]any)
		}
	}
	return &f, nil
}

type predicate func(row map[string]any) bool

// Query evaluates text against the fixture tables.
func (f *Fixture) Query(ctx context.Context, text string) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		table   string
		columns []string
		stack   []predicate
		limit   = -1
	)

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		switch name {
		case "GET":
			table = strings.TrimSpace(arg)
		case "Columns:":
			columns = strings.Fields(arg)
		case "Filter:":
			p, err := parseFilter(arg)
			if err != nil {
				return nil, err
			}
			stack = append(stack, p)
		case "And:", "Or:":
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || n > len(stack) {
				return nil, fmt.Errorf("invalid %s %q", name, arg)
			}
			if n == 0 {
				continue
			}
			operands := append([]predicate(nil), stack[len(stack)-n:]...)
			stack = append(stack[:len(stack)-n], combine(operands, name == "Or:"))
		case "Negate:":
			if len(stack) == 0 {
				return nil, fmt.Errorf("Negate: with empty filter stack")
			}
			p := stack[len(stack)-1]
			stack[len(stack)-1] = func(row map[string]any) bool { return !p(row) }
		case "Limit:":
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil {
				return nil, fmt.Errorf("invalid Limit: %q", arg)
			}
			limit = n
		}
	}

	rows, ok := f.Tables[table]
	if !ok {
		return nil, fmt.Errorf("table '%s' does not exist", table)
	}
	if len(columns) == 0 {
		columns = allColumns(rows)
	}

	var out [][]any
	for _, row := range rows {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if !combine(stack, false)(row) {
			continue
		}
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		out = append(out, values)
	}
	return out, nil
}

// Close is a no-op.
func (f *Fixture) Close() error { return nil }

func allColumns(rows []map[string]any) []string {
	seen := map[string]bool{}
	var cols []string
	for _, row := range rows {
		for c := range row {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func combine(ps []predicate, or bool) predicate {
	return func(row map[string]any) bool {
		for _, p := range ps {
			if p(row) == or {
				return or
			}
		}
		return !or
	}
}

func parseFilter(arg string) (predicate, error) {
	parts := strings.SplitN(arg, " ", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid Filter: %q", arg)
	}
	column, op := parts[0], parts[1]
	value := ""
	if len(parts) == 3 {
		value = parts[2]
	}

	negate := false
	if strings.HasPrefix(op, "!") && op != "!=" {
		negate, op = true, op[1:]
	} else if op == "!=" {
		negate, op = true, "="
	}

	var match func(v any) bool
	switch op {
	case "=", "<", ">", "<=", ">=":
		match = compareMatcher(op, value)
	case "=~":
		match = func(v any) bool { return strings.EqualFold(registry.ToString(v), value) }
	case "~", "~~":
		expr := value
		if op == "~~" {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex in Filter: %q: %w", arg, err)
		}
		match = func(v any) bool { return re.MatchString(registry.ToString(v)) }
	default:
		return nil, fmt.Errorf("unsupported operator %q in Filter: %q", op, arg)
	}

	return func(row map[string]any) bool {
		return match(row[column]) != negate
	}, nil
}

func compareMatcher(op, value string) func(v any) bool {
	return func(v any) bool {
		if list, ok := v.([]any); ok {
			switch op {
			case "=":
				return value == "" && len(list) == 0
			case ">=":
				for _, e := range list {
					if registry.ToString(e) == value {
						return true
					}
				}
			}
			return false
		}

		var c int
		if n, ok := registry.ToFloat(v); ok {
			want, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return false
			}
			c = registry.CompareValues(n, want)
		} else {
			c = strings.Compare(registry.ToString(v), value)
		}

		switch op {
		case "=":
			return c == 0
		case "<":
			return c < 0
		case ">":
			return c > 0
		case "<=":
			return c <= 0
		default:
			return c >= 0
		}
	}
}
