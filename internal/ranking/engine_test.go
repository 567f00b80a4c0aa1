package ranking_test

import (
	"testing"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }
func rank(v int) *int           { return &v }

func row(name string, level domain.Level, value float64, remark string) domain.RankingRow {
	return domain.RankingRow{
		ScoreRecord: domain.ScoreRecord{
			ID:         name,
			MemberName: name,
			Level:      level,
			ScoreValue: score(value),
			Remark:     remark,
		},
	}
}

func names(entries []ranking.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.MemberName
	}
	return out
}

func ranks(entries []ranking.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.DisplayRank
	}
	return out
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, ranking.Rank(nil, ranking.AllLevels))
	assert.Empty(t, ranking.Rank([]domain.RankingRow{}, "Rxd"))
}

func TestRank_AllLevels_RemarkWeightBreaksTie(t *testing.T) {
	rows := []domain.RankingRow{
		row("Alice", domain.LevelRxd, 100, ""),
		row("Bob", domain.LevelRxd, 100, "50lb"),
	}

	got := ranking.Rank(rows, ranking.AllLevels)
	assert.Equal(t, []string{"Bob", "Alice"}, names(got))
	assert.Equal(t, []int{1, 2}, ranks(got))
}

func TestRank_AllLevels_HeavierRemarkRanksHigher(t *testing.T) {
	rows := []domain.RankingRow{
		row("Light", domain.LevelScaled, 80, "used 35 lb"),
		row("Heavy", domain.LevelScaled, 80, "used 45 LB"),
	}

	got := ranking.Rank(rows, "")
	assert.Equal(t, []string{"Heavy", "Light"}, names(got))
	assert.Equal(t, []int{1, 2}, ranks(got))
}

func TestRank_AllLevels_TieGroupSkipsRanks(t *testing.T) {
	rows := []domain.RankingRow{
		row("E", domain.LevelRxd, 50, ""),
		row("C", domain.LevelRxd, 90, ""),
		row("A", domain.LevelRxd, 100, ""),
		row("D", domain.LevelRxd, 90, ""),
		row("B", domain.LevelRxd, 90, ""),
	}

	got := ranking.Rank(rows, ranking.AllLevels)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names(got))
	assert.Equal(t, []int{1, 2, 2, 2, 5}, ranks(got))
}

func TestRank_AllLevels_LevelPriority(t *testing.T) {
	rows := []domain.RankingRow{
		row("b", "B", 10, ""),
		row("rxd", domain.LevelRxd, 10, ""),
		row("a", "A", 10, ""),
		row("scaled", domain.LevelScaled, 10, ""),
	}

	got := ranking.Rank(rows, ranking.AllLevels)
	levels := make([]domain.Level, len(got))
	for i, e := range got {
		levels[i] = e.Level
	}
	assert.Equal(t, []domain.Level{domain.LevelRxd, domain.LevelScaled, domain.LevelA, domain.LevelB}, levels)
	// equal scores on different levels never share a rank
	assert.Equal(t, []int{1, 2, 3, 4}, ranks(got))
}

func TestRank_AllLevels_UnknownLevelsLast(t *testing.T) {
	rows := []domain.RankingRow{
		row("masters", "Masters", 500, ""),
		row("teen", "Teen", 400, ""),
		row("c", domain.LevelC, 1, ""),
	}

	got := ranking.Rank(rows, ranking.AllLevels)
	assert.Equal(t, []string{"c", "masters", "teen"}, names(got))
	assert.Equal(t, []int{1, 2, 3}, ranks(got))
}

func TestRank_AllLevels_SuppliedRankOrdersWithinLevel(t *testing.T) {
	first := row("Zed", domain.LevelRxd, 100, "")
	first.Rank = rank(1)
	second := row("Amy", domain.LevelRxd, 90, "")
	second.Rank = rank(2)

	got := ranking.Rank([]domain.RankingRow{second, first}, ranking.AllLevels)
	assert.Equal(t, []string{"Zed", "Amy"}, names(got))
	assert.Equal(t, []int{1, 2}, ranks(got))
}

func TestRank_AllLevels_MissingRankSortsLastWithinLevel(t *testing.T) {
	a := row("A", domain.LevelRxd, 10, "")
	a.Rank = rank(1)
	b := row("B", domain.LevelRxd, 50, "")
	c := row("C", domain.LevelRxd, 90, "")
	c.Rank = rank(2)

	orders := [][]domain.RankingRow{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, in := range orders {
		got := ranking.Rank(in, ranking.AllLevels)
		assert.Equal(t, []string{"A", "C", "B"}, names(got))
	}
}

func TestRank_AllLevels_NameIsFinalTiebreak(t *testing.T) {
	rows := []domain.RankingRow{
		row("Carol", domain.LevelA, 70, "20 lb"),
		row("Bea", domain.LevelA, 70, "20lb"),
	}

	got := ranking.Rank(rows, ranking.AllLevels)
	assert.Equal(t, []string{"Bea", "Carol"}, names(got))
	assert.Equal(t, []int{1, 1}, ranks(got))
}

func TestRank_AllLevels_SkipsUnscoredRows(t *testing.T) {
	unscored := row("Nobody", domain.LevelRxd, 0, "")
	unscored.ScoreValue = nil

	got := ranking.Rank([]domain.RankingRow{unscored, row("Some", domain.LevelRxd, 1, "")}, ranking.AllLevels)
	require.Len(t, got, 1)
	assert.Equal(t, "Some", got[0].MemberName)
}

func TestRank_SingleLevel_UsesSuppliedRankVerbatim(t *testing.T) {
	x := row("Xavier", domain.LevelScaled, 70, "")
	x.Rank = rank(3)
	m := row("Mia", domain.LevelScaled, 70, "")
	m.Rank = rank(3)
	k := row("Kim", domain.LevelScaled, 60, "")
	k.Rank = rank(5)
	other := row("Rita", domain.LevelRxd, 200, "")
	other.Rank = rank(1)

	got := ranking.Rank([]domain.RankingRow{k, x, other, m}, "Scaled")
	assert.Equal(t, []string{"Mia", "Xavier", "Kim"}, names(got))
	assert.Equal(t, []int{3, 3, 5}, ranks(got))
}

func TestRank_SingleLevel_MissingRankSortsLast(t *testing.T) {
	ranked := row("Zoe", domain.LevelB, 10, "")
	ranked.Rank = rank(1)
	unranked := row("Abe", domain.LevelB, 10, "")

	got := ranking.Rank([]domain.RankingRow{unranked, ranked}, "B")
	assert.Equal(t, []string{"Zoe", "Abe"}, names(got))
	assert.Equal(t, []int{1, 0}, ranks(got))
}

func TestRank_Idempotent(t *testing.T) {
	rows := []domain.RankingRow{
		row("A", domain.LevelB, 10, "10 lb"),
		row("B", domain.LevelRxd, 10, ""),
		row("C", domain.LevelRxd, 12, ""),
		row("D", "Other", 3, ""),
		row("E", domain.LevelRxd, 10, ""),
	}
	snapshot := append([]domain.RankingRow(nil), rows...)

	first := ranking.Rank(rows, ranking.AllLevels)
	second := ranking.Rank(rows, ranking.AllLevels)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, rows, "input must not be reordered")
}

func TestEngine_CustomPriority(t *testing.T) {
	e := ranking.NewEngine([]domain.Level{domain.LevelScaled, domain.LevelRxd})
	got := e.Rank([]domain.RankingRow{
		row("rx", domain.LevelRxd, 100, ""),
		row("sc", domain.LevelScaled, 1, ""),
	}, ranking.AllLevels)
	assert.Equal(t, []string{"sc", "rx"}, names(got))
}

func TestLevelsPresent(t *testing.T) {
	rows := []domain.RankingRow{
		row("1", domain.LevelC, 1, ""),
		row("2", "Teen", 1, ""),
		row("3", domain.LevelRxd, 1, ""),
		row("4", domain.LevelC, 1, ""),
		row("5", "", 1, ""),
		row("6", "Masters", 1, ""),
	}
	assert.Equal(t,
		[]domain.Level{domain.LevelRxd, domain.LevelC, "Masters", "Teen"},
		ranking.Default.LevelsPresent(rows),
	)
}

func TestRemarkWeight(t *testing.T) {
	cases := map[string]float64{
		"":                0,
		"no weight":       0,
		"50lb":            50,
		"used 45 lb":      45,
		"DB 22.5 LB each": 22.5,
		"lb 95":           0,
		"35 lb then 45lb": 35,
	}
	for remark, want := range cases {
		assert.Equal(t, want, ranking.RemarkWeight(remark), remark)
	}
}

func TestIsAllLevels(t *testing.T) {
	assert.True(t, ranking.IsAllLevels(""))
	assert.True(t, ranking.IsAllLevels("all"))
	assert.True(t, ranking.IsAllLevels(" ALL "))
	assert.False(t, ranking.IsAllLevels("Rxd"))
}
