package timeutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var karachi = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestNormalize_RFC3339(t *testing.T) {
	got, err := Normalize("2025-03-10T09:05:00+05:00", karachi)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 9, 5, 0, 0, karachi)))
}

func TestNormalize_LocalFormats(t *testing.T) {
	want := time.Date(2025, 3, 10, 9, 5, 0, 0, karachi)

	for _, raw := range []string{
		"2025-03-10T09:05:00",
		"2025-03-10 09:05:00",
		"2025-03-10 09:05",
		"2025/03/10 09:05:00",
	} {
		got, err := Normalize(raw, karachi)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "%s parsed to %v", raw, got)
	}
}

func TestNormalize_Epoch(t *testing.T) {
	want := time.Date(2025, 3, 10, 9, 5, 0, 0, karachi)

	got, err := Normalize(strconv.FormatInt(want.Unix(), 10), karachi)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	got, err = Normalize(strconv.FormatInt(want.UnixMilli(), 10), karachi)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestNormalize_Invalid(t *testing.T) {
	for _, raw := range []string{"", "  ", "not-a-time", "2025-13-40 99:99:99", "-5"} {
		_, err := Normalize(raw, karachi)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "raw=%q", raw)
	}
}

func TestDayOf_UsesLocalZoneNotUTC(t *testing.T) {
	// 20:30 UTC is already the next day in Karachi (+05).
	instant := time.Date(2025, 3, 10, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-11", DayOf(instant, karachi))
	assert.Equal(t, "2025-03-10", DayOf(instant, time.UTC))
}

func TestFormatLocal(t *testing.T) {
	instant := time.Date(2025, 3, 10, 4, 5, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10 09:05:00", FormatLocal(instant, karachi))
}
