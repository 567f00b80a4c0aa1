package domain_test

import (
	"testing"

	"cfq/wod-board/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoreValue(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"185 lb", 185},
		{"150", 150},
		{"12.5kg", 12.5},
		{"12:34", -754},
		{"1:02:03", -3723},
		{"5+12", 5012},
		{" 5 + 3 ", 5003},
	}
	for _, tc := range cases {
		got := domain.ParseScoreValue(tc.raw)
		require.NotNil(t, got, tc.raw)
		assert.Equal(t, tc.want, *got, tc.raw)
	}
}

func TestParseScoreValue_Unparseable(t *testing.T) {
	for _, raw := range []string{"", "  ", "DNF", "12:75", "1:75:00", "lb 100"} {
		assert.Nil(t, domain.ParseScoreValue(raw), raw)
	}
}

func TestParseScoreValue_OverflowIsUnparseable(t *testing.T) {
	for _, raw := range []string{
		"99999999999999999999+3",
		"3+99999999999999999999",
		"99999999999999999999:00:00",
	} {
		assert.Nil(t, domain.ParseScoreValue(raw), raw)
	}
}

func TestParseScoreValue_FasterTimeRanksHigher(t *testing.T) {
	fast := domain.ParseScoreValue("9:59")
	slow := domain.ParseScoreValue("10:01")
	require.NotNil(t, fast)
	require.NotNil(t, slow)
	assert.Greater(t, *fast, *slow)
}
