// Package livestatus speaks the Livestatus query protocol to monitoring
// sites and fans queries out over several sites at once.
package livestatus

import (
	"context"
	"fmt"
	"strings"
)

// Query is a Livestatus GET request.
type Query struct {
	Table   string
	Columns []string
	// Headers are raw header lines such as "Filter: host_name = web01".
	// They may also be a single string with embedded newlines.
	Headers []string
}

// String renders the request without the terminating blank line.
func (q Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s\n", q.Table)
	if len(q.Columns) > 0 {
		fmt.Fprintf(&b, "Columns: %s\n", strings.Join(q.Columns, " "))
	}
	for _, h := range q.Headers {
		h = strings.TrimRight(h, "\n")
		if h == "" {
			continue
		}
		b.WriteString(h)
		b.WriteByte('\n')
	}
	return b.String()
}

// Conn executes queries against one site. Query receives the request text
// including every header and returns the data rows in column order.
type Conn interface {
	Query(ctx context.Context, text string) ([][]any, error)
	Close() error
}

// Encode quotes a value for use in a header line. Livestatus headers end at
// the newline, so newlines are the only characters that need replacing.
func Encode(value string) string {
	return strings.ReplaceAll(value, "\n", "")
}

// FilterEq returns an equality filter header.
func FilterEq(column, value string) string {
	return fmt.Sprintf("Filter: %s = %s", Encode(column), Encode(value))
}
