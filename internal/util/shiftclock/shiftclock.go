// Package shiftclock does minute arithmetic over "HH:MM" wall-clock strings.
package shiftclock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopfloor-stats/backend/internal/constant"
)

// ParseClock returns the minute of day of an "HH:MM" string. Seconds ("HH:MM:SS") are ignored.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, false
	}
	return h*60 + m, true
}

// Format renders a minute of day as "HH:MM". Values outside a day wrap.
func Format(minutes int) string {
	minutes %= constant.MinutesPerDay
	if minutes < 0 {
		minutes += constant.MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes returns end minus start in minutes. A negative difference is taken to
// have crossed midnight once. Empty or invalid input yields 0.
func DurationMinutes(start, end string) int {
	s, ok := ParseClock(start)
	if !ok {
		return 0
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0
	}
	d := e - s
	if d < 0 {
		d += constant.MinutesPerDay
	}
	return d
}

// Overlaps reports whether [startA, endA) and [startB, endB) intersect. Both intervals start
// on the same day; an end before its start is on the next day, as in DurationMinutes. An
// interval with an empty or invalid bound never overlaps anything.
func Overlaps(startA, endA, startB, endB string) bool {
	sa, ea, ok := span(startA, endA)
	if !ok {
		return false
	}
	sb, eb, ok := span(startB, endB)
	if !ok {
		return false
	}
	return sa < eb && ea > sb
}

func span(start, end string) (int, int, bool) {
	s, ok := ParseClock(start)
	if !ok {
		return 0, 0, false
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0, 0, false
	}
	if e < s {
		e += constant.MinutesPerDay
	}
	return s, e, true
}
