package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testAger() ager {
	return ager{now: func() time.Time { return testNow }}
}

func TestPaintAge(t *testing.T) {
	a := testAger()
	ts := func(d time.Duration) int64 { return testNow.Add(d).Unix() }
	absText := func(d time.Duration) string {
		return testNow.Add(d).Local().Format("2006-01-02 15:04:05")
	}

	tests := []struct {
		name      string
		ts        int64
		checked   bool
		recent    time.Duration
		mode      string
		dir       ageDirection
		wantClass string
		wantText  string
	}{
		{"unchecked", ts(-time.Minute), false, 0, TSMixed, agePast, "age", "-"},
		{"epoch", 1709294100, true, 0, TSEpoch, agePast, "", "1709294100"},
		{"relative", ts(-5 * time.Minute), true, 0, TSRel, agePast, "age", "5 minutes"},
		{"recent", ts(-5 * time.Minute), true, 10 * time.Minute, TSMixed, agePast, "age recent", "5 minutes"},
		{"mixed old is absolute", ts(-72 * time.Hour), true, 0, TSMixed, agePast, "age", absText(-72 * time.Hour)},
		{"absolute", ts(-5 * time.Minute), true, 0, TSAbs, agePast, "age", absText(-5 * time.Minute)},
		{"future warns", ts(5 * time.Minute), true, 0, TSRel, agePast, "age", "in 5 minutes <b>in the future!</b>"},
		{"past warns", ts(-5 * time.Minute), true, 0, TSRel, ageFuture, "age", "5 minutes <b>in the past!</b>"},
		{"both directions", ts(-2 * time.Hour), true, 0, TSRel, ageBoth, "age", "2 hours ago"},
		{"now", ts(0), true, 0, TSRel, agePast, "age", "now"},
		{"both modes", ts(-5 * time.Minute), true, 0, TSBoth, agePast, "age", absText(-5*time.Minute) + " - 5 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, text := a.paintAge(tt.ts, tt.checked, tt.recent, tt.mode, DefaultDateFormat, tt.dir)
			assert.Equal(t, tt.wantClass, class)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestPaintAge_DateFormat(t *testing.T) {
	ts := testNow.Add(-72 * time.Hour)
	_, text := testAger().paintAge(ts.Unix(), true, 0, TSAbs, "%d.%m.%Y", agePast)
	assert.Equal(t, ts.Local().Format("02.01.2006 15:04:05"), text)
}
