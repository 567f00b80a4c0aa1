package calendar_test

import (
	"testing"
	"time"

	"cfq/wod-board/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Keys(t *testing.T) {
	d := calendar.New(2025, time.May, 19)
	assert.Equal(t, "250519", d.Compact())
	assert.Equal(t, "2025-05-19", d.Dashed())
	assert.Equal(t, "2025-05-19", d.String())
}

func TestDate_RoundTrip(t *testing.T) {
	d := calendar.New(2025, time.May, 19)

	fromCompact, err := calendar.ParseCompact(d.Compact())
	require.NoError(t, err)
	fromDashed, err := calendar.ParseDashed(d.Dashed())
	require.NoError(t, err)

	assert.Equal(t, d, fromCompact)
	assert.Equal(t, d, fromDashed)
	assert.Equal(t, fromCompact, fromDashed)
}

func TestParse_EitherFormat(t *testing.T) {
	for _, in := range []string{"250519", "2025-05-19", " 2025-05-19 "} {
		d, err := calendar.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, calendar.Date{Year: 2025, Month: time.May, Day: 19}, d, in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025/05/19", "251332", "25051", "abcdef", "2025-02-30", "2025-05-19T00:00:00Z"} {
		_, err := calendar.Parse(in)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate, in)
	}
}

func TestParseCompact_RejectsSignsAndSpacesInside(t *testing.T) {
	for _, in := range []string{"+10101", "-10101", "2505 9", "25O519"} {
		_, err := calendar.ParseCompact(in)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate, in)
	}
	_, err := calendar.Parse("+10101")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestFromTime_UsesLocationOfInstant(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	// 2025-05-18 20:30 UTC is already 2025-05-19 in Seoul
	instant := time.Date(2025, time.May, 18, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-05-18", calendar.FromTime(instant).Dashed())
	assert.Equal(t, "2025-05-19", calendar.FromTime(instant.In(seoul)).Dashed())
}

func TestDate_MonthRange(t *testing.T) {
	first, last := calendar.New(2024, time.February, 10).MonthRange()
	assert.Equal(t, "2024-02-01", first.Dashed())
	assert.Equal(t, "2024-02-29", last.Dashed())
}

func TestDate_TextMarshalling(t *testing.T) {
	var d calendar.Date
	require.NoError(t, d.UnmarshalText([]byte("250101")))
	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", string(out))
}
