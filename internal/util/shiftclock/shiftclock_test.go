package shiftclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"23:30", "00:15", 45},
		{"08:00", "08:00", 0},
		{"06:00", "14:00", 480},
		{"22:00", "06:00", 480},
		{"", "08:00", 0},
		{"08:00", "", 0},
		{"8h", "09:00", 0},
		{"07:15:00", "07:45:30", 30},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DurationMinutes(c.start, c.end), "%s -> %s", c.start, c.end)
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	clocks := []string{"00:00", "06:00", "07:30", "08:00", "12:00", "14:00", "22:00", "23:59"}
	for _, sa := range clocks {
		for _, ea := range clocks {
			for _, sb := range clocks {
				for _, eb := range clocks {
					assert.Equal(t, Overlaps(sa, ea, sb, eb), Overlaps(sb, eb, sa, ea),
						"A=[%s,%s) B=[%s,%s)", sa, ea, sb, eb)
				}
			}
		}
	}
}

func TestOverlapsSharedEndpoint(t *testing.T) {
	assert.False(t, Overlaps("06:00", "08:00", "08:00", "10:00"))
	assert.False(t, Overlaps("08:00", "10:00", "06:00", "08:00"))
	assert.True(t, Overlaps("06:00", "08:01", "08:00", "10:00"))
}

func TestOverlapsAcrossMidnight(t *testing.T) {
	// Noite: 22:00 to 02:00 the next morning
	assert.True(t, Overlaps("22:00", "02:00", "23:00", "23:30"))
	assert.True(t, Overlaps("23:00", "23:30", "22:00", "02:00"))
	assert.True(t, Overlaps("22:00", "02:00", "23:30", "01:00"))
	assert.False(t, Overlaps("22:00", "02:00", "20:00", "22:00"))
	// same date, early morning: before the night interval began
	assert.False(t, Overlaps("22:00", "02:00", "01:00", "01:30"))
	assert.Equal(t, 240, DurationMinutes("22:00", "02:00"))
}

func TestOverlapsOpenEnded(t *testing.T) {
	assert.False(t, Overlaps("06:00", "", "00:00", "23:59"))
	assert.False(t, Overlaps("00:00", "23:59", "06:00", ""))
}

func TestParseClockAndFormat(t *testing.T) {
	m, ok := ParseClock("13:05")
	assert.True(t, ok)
	assert.Equal(t, 785, m)
	assert.Equal(t, "13:05", Format(m))

	_, ok = ParseClock("24:00")
	assert.False(t, ok)
	_, ok = ParseClock("12:5")
	assert.False(t, ok)

	assert.Equal(t, "00:15", Format(1440+15))
	assert.Equal(t, "23:45", Format(-15))
}
