package builtin

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// Timestamp formats selectable by the ts_format painter option.
const (
	TSMixed = "mixed"
	TSAbs   = "abs"
	TSRel   = "rel"
	TSBoth  = "both"
	TSEpoch = "epoch"
)

// DefaultDateFormat is the default of the ts_date painter option.
const DefaultDateFormat = "%Y-%m-%d"

// mixedCutoff is the age from which mixed mode shows absolute times.
const mixedCutoff = 48 * time.Hour

// ageDirection says which side of now a timestamp is expected on.
type ageDirection int

const (
	agePast ageDirection = iota
	ageFuture
	ageBoth
)

// ager paints timestamps relative to a clock.
type ager struct {
	now func() time.Time
}

// paintAge renders a timestamp according to mode and dateFormat. Times
// younger than recent get the "age recent" class.
func (a ager) paintAge(ts int64, checked bool, recent time.Duration, mode, dateFormat string, dir ageDirection) (string, string) {
	if !checked {
		return "age", "-"
	}

	switch mode {
	case TSEpoch:
		return "", strconv.FormatInt(ts, 10)
	case TSBoth:
		_, abs := a.paintAge(ts, checked, recent, TSAbs, dateFormat, dir)
		class, rel := a.paintAge(ts, checked, recent, TSRel, dateFormat, dir)
		return class, abs + " - " + rel
	}

	now := a.now()
	t := time.Unix(ts, 0)
	age := now.Sub(t)
	if mode == TSAbs || (mode != TSRel && (age >= mixedCutoff || age <= -mixedCutoff)) {
		if dateFormat == "" {
			dateFormat = DefaultDateFormat
		}
		return "age", strftime.Format(dateFormat+" %H:%M:%S", t.Local())
	}

	var warn, suffix string
	switch {
	case dir == ageFuture && age > 0:
		warn = " <b>in the past!</b>"
	case dir == agePast && age < 0:
		warn = " <b>in the future!</b>"
	case dir == ageBoth && age > 0:
		suffix = " ago"
	}

	prefix := ""
	if age < 0 {
		age = -age
		prefix = "in "
	}
	class := "age"
	if age < recent {
		class = "age recent"
	}
	return class, prefix + approxAge(now, age) + suffix + warn
}

// approxAge renders a duration the way humans round it: "3 minutes",
// "now".
func approxAge(now time.Time, d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	return strings.TrimSpace(humanize.RelTime(now.Add(-d), now, "", ""))
}

func (a ager) optionStrings(cell registry.CellInfo) (mode, dateFormat string) {
	mode, _ = cell.Option("ts_format").(string)
	if mode == "" {
		mode = TSMixed
	}
	dateFormat, _ = cell.Option("ts_date").(string)
	return mode, dateFormat
}
