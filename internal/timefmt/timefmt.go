// Package timefmt renders profile timestamps and run durations.
package timefmt

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	Day   = 24 * time.Hour
	Month = 30 * Day
	Year  = 365 * Day
)

// Each unit starts at exactly one of itself and the count is floored, so 59s
// is "59 seconds ago" and 60s is "1 minute ago". Years start at 12 months
// (360 days) so the month count never reaches 12.
var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * Day, Format: "1 day %s", DivBy: 1},
	{D: Month, Format: "%d days %s", DivBy: Day},
	{D: 2 * Month, Format: "1 month %s", DivBy: 1},
	{D: 12 * Month, Format: "%d months %s", DivBy: Month},
	{D: 2 * Year, Format: "1 year %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: Year},
}

// Since describes then relative to now, e.g. "3 days ago" or
// "2 hours from now".
func Since(then, now time.Time) string {
	return humanize.CustomRelTime(then, now, "ago", "from now", magnitudes)
}

// Duration formats a run time as m:ss.mmm, or h:mm:ss.mmm from one hour up.
// Sub-millisecond precision is truncated.
func Duration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	ms := d.Milliseconds()
	h := ms / int64(time.Hour/time.Millisecond)
	m := ms / int64(time.Minute/time.Millisecond) % 60
	s := ms / 1000 % 60
	frac := ms % 1000

	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, frac)
	}
	return fmt.Sprintf("%s%d:%02d.%03d", sign, m, s, frac)
}
