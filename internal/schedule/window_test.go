package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	k, err := ParseKey("2024-09-01T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-09-01T00:00:00", k.Raw)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), k.Start)

	// Bare date with no time suffix is also valid.
	k, err = ParseKey("2025-02-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), k.Start)
}

func TestParseKey_Invalid(t *testing.T) {
	for _, raw := range []string{"", "sem1", "2024-13-01T00:00:00", "20240901xx"} {
		_, err := ParseKey(raw)
		assert.Error(t, err, "key %q should not parse", raw)
	}
}

func TestWindow_AutumnTerm(t *testing.T) {
	// Every autumn start month closes on January 31 of the next year.
	for month := 9; month <= 12; month++ {
		k, err := ParseKey(time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
		require.NoError(t, err)
		start, end := k.Window()
		assert.Equal(t, k.Start, start)
		assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), end,
			"month %d should end Jan 31 of the following year", month)
	}
}

func TestWindow_SpringTerm(t *testing.T) {
	for month := 1; month <= 6; month++ {
		k, err := ParseKey(time.Date(2025, time.Month(month), 10, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
		require.NoError(t, err)
		_, end := k.Window()
		assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), end,
			"month %d should end June 30 of the same year", month)
	}
}

func TestWindow_SummerStart(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		// Five calendar months ahead, last day of that month.
		{"2024-07-01", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-08-15", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
		// A July 31 start must not skip past December.
		{"2024-07-31", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		k, err := ParseKey(tc.raw)
		require.NoError(t, err)
		_, end := k.Window()
		assert.Equal(t, tc.want, end, "key %s", tc.raw)
	}
}

func TestWindow_Idempotent(t *testing.T) {
	k, err := ParseKey("2024-09-01T00:00:00")
	require.NoError(t, err)
	s1, e1 := k.Window()
	s2, e2 := k.Window()
	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
}

func TestClampAndContains(t *testing.T) {
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	inside := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, Contains(start, end, inside))
	assert.Equal(t, inside, Clamp(start, end, inside))

	before := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	assert.False(t, Contains(start, end, before))
	assert.Equal(t, start, Clamp(start, end, before))

	after := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, end, Clamp(start, end, after))

	// Bounds are inclusive.
	assert.True(t, Contains(start, end, start))
	assert.True(t, Contains(start, end, end))

	// Time-of-day noise is ignored.
	noisy := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	assert.True(t, Contains(start, end, noisy))
}
