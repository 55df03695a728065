package livestatus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// headerLen is the size of a "ResponseHeader: fixed16" status line.
const headerLen = 16

// parseResponseHeader decodes "200          42\n" into status and body length.
func parseResponseHeader(h []byte) (status, length int, err error) {
	if len(h) != headerLen || h[headerLen-1] != '\n' {
		return 0, 0, fmt.Errorf("malformed response header %q", h)
	}
	status, err = strconv.Atoi(string(h[0:3]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed status in response header %q", h)
	}
	length, err = strconv.Atoi(strings.TrimSpace(string(h[3 : headerLen-1])))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed length in response header %q", h)
	}
	return status, length, nil
}

// ParseRows decodes a JSON response body into rows. Numbers come back as
// int64 when integral, lists as []any and dicts as map[string]any.
func ParseRows(body []byte) ([][]any, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in Livestatus response")
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("Livestatus response is not a list of rows")
	}

	var rows [][]any
	var bad error
	res.ForEach(func(_, row gjson.Result) bool {
		if !row.IsArray() {
			bad = fmt.Errorf("Livestatus row is not a list: %s", row.Raw)
			return false
		}
		cells := row.Array()
		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = convert(c)
		}
		rows = append(rows, values)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return rows, nil
}

func convert(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
		return registry.Normalize(r.Num)
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = convert(item)
		}
		return out
	}
	out := map[string]any{}
	r.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = convert(v)
		return true
	})
	return out
}
