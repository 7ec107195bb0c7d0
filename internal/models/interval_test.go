package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	iv, err := NewInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, "14:05", c.String())

	for _, raw := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:5", "1:2:3:4"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestIntervalOverlapHalfOpen(t *testing.T) {
	nine := mustInterval(t, "09:00", "10:00")

	assert.False(t, nine.Overlaps(mustInterval(t, "10:00", "11:00")))
	assert.False(t, nine.Overlaps(mustInterval(t, "08:00", "09:00")))
	assert.True(t, nine.Overlaps(mustInterval(t, "09:30", "10:30")))
	assert.True(t, nine.Overlaps(mustInterval(t, "08:30", "09:01")))
	assert.True(t, nine.Overlaps(mustInterval(t, "09:15", "09:45")))
	assert.True(t, nine.Overlaps(mustInterval(t, "08:00", "12:00")))
	assert.True(t, nine.Overlaps(nine))
}

func TestIntervalOverlapSymmetry(t *testing.T) {
	bounds := []string{"08:00", "08:30", "09:00", "09:30", "10:00", "11:00"}
	var all []Interval
	for i := range bounds {
		for j := i + 1; j < len(bounds); j++ {
			all = append(all, mustInterval(t, bounds[i], bounds[j]))
		}
	}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "%s vs %s", a, b)
		}
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, mustInterval(t, "09:00", "09:01").Valid())
	assert.False(t, mustInterval(t, "09:00", "09:00").Valid())
	assert.False(t, mustInterval(t, "10:00", "09:00").Valid())
	assert.Equal(t, 90, mustInterval(t, "09:00", "10:30").Duration())
}
