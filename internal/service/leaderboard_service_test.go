package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cfq/wod-board/internal/cache"
	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/repository"
	"cfq/wod-board/internal/repository/memory"
	"cfq/wod-board/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boardFixture struct {
	store  *repository.Store
	cache  *cache.Leaderboard
	m      *metrics.Manager
	scores ScoreService
	board  LeaderboardService
	files  *fakeStorage
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	f := &boardFixture{
		store: memory.NewStore(),
		cache: cache.NewLeaderboard(1, time.Minute),
		m:     metrics.NewTestManager(),
		files: newFakeStorage(),
	}
	f.scores = NewScoreService(f.store.Scores, f.store.Workouts, f.cache, f.m, time.UTC)
	f.board = NewLeaderboardService(LeaderboardDeps{
		Scores:   f.store.Scores,
		Workouts: f.store.Workouts,
		Cache:    f.cache,
		Files:    f.files,
		Expiry:   5 * time.Minute,
		Metrics:  f.m,
		Location: time.UTC,
	})
	return f
}

func (f *boardFixture) record(t *testing.T, member string, level domain.Level, raw string) {
	t.Helper()
	_, err := f.scores.Record(context.Background(), "coach", ScoreInput{
		MemberName: member,
		Date:       "2025-05-19",
		Level:      level,
		ScoreRaw:   raw,
	})
	require.NoError(t, err)
}

func TestLeaderboardService_AllLevels(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)

	wods := NewWodService(f.store.Workouts, f.cache, nil, time.UTC)
	w, err := wods.Create(ctx, WodInput{Date: "2025-05-19", Title: "Fran", Categories: cardio})
	require.NoError(t, err)

	f.record(t, "Kim", domain.LevelScaled, "60")
	f.record(t, "Rita", domain.LevelRxd, "50")
	f.record(t, "Mia", domain.LevelScaled, "70")
	f.record(t, "Dnf", domain.LevelRxd, "DNF")

	board, err := f.board.Leaderboard(ctx, "250519", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-19", board.Date)
	assert.Equal(t, "250519", board.DateKey)
	assert.Equal(t, "all", board.Level)
	require.NotNil(t, board.Wod)
	assert.Equal(t, w.ID, board.Wod.ID)
	assert.Equal(t, "Fran", board.Wod.Title)
	assert.Equal(t, []domain.Level{domain.LevelRxd, domain.LevelScaled}, board.Levels)

	var got []string
	for _, e := range board.Entries {
		got = append(got, e.MemberName)
	}
	assert.Equal(t, []string{"Rita", "Mia", "Kim"}, got)
	assert.Equal(t, []int{1, 2, 3}, []int{board.Entries[0].DisplayRank, board.Entries[1].DisplayRank, board.Entries[2].DisplayRank})
}

func TestLeaderboardService_SingleLevelKeepsStoreRank(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)

	f.record(t, "Kim", domain.LevelScaled, "60")
	f.record(t, "Mia", domain.LevelScaled, "70")
	f.record(t, "Xavier", domain.LevelScaled, "70")
	f.record(t, "Rita", domain.LevelRxd, "99")

	board, err := f.board.Leaderboard(ctx, "2025-05-19", "Scaled")
	require.NoError(t, err)
	assert.Nil(t, board.Wod)
	require.Len(t, board.Entries, 3)

	ranks := map[string]int{}
	for _, e := range board.Entries {
		ranks[e.MemberName] = e.DisplayRank
	}
	assert.Equal(t, map[string]int{"Mia": 1, "Xavier": 1, "Kim": 3}, ranks)
	assert.Equal(t, "Kim", board.Entries[2].MemberName)

	// every level present is listed even on a filtered board
	assert.Equal(t, []domain.Level{domain.LevelRxd, domain.LevelScaled}, board.Levels)
}

func TestLeaderboardService_CacheAndInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)

	f.record(t, "Kim", domain.LevelRxd, "60")

	first, err := f.board.Leaderboard(ctx, "2025-05-19", "all")
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	_, err = f.board.Leaderboard(ctx, "2025-05-19", "ALL")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.CounterLeaderboardCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.CounterLeaderboardCache.WithLabelValues("hit")))

	f.record(t, "Lee", domain.LevelRxd, "80")

	fresh, err := f.board.Leaderboard(ctx, "2025-05-19", "all")
	require.NoError(t, err)
	require.Len(t, fresh.Entries, 2)
	assert.Equal(t, "Lee", fresh.Entries[0].MemberName)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.CounterLeaderboardCache.WithLabelValues("miss")))
}

// lateScores records one more score right after the ranking rows were read,
// the way a concurrent POST /scores would.
type lateScores struct {
	repository.ScoreRepository
	late func()
}

func (r *lateScores) RankingByDate(ctx context.Context, date string) ([]domain.RankingRow, error) {
	rows, err := r.ScoreRepository.RankingByDate(ctx, date)
	if r.late != nil {
		late := r.late
		r.late = nil
		late()
	}
	return rows, err
}

func TestLeaderboardService_ScoreDuringRebuildIsNotHiddenByCache(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)

	f.record(t, "Kim", domain.LevelRxd, "60")

	scores := &lateScores{ScoreRepository: f.store.Scores}
	scores.late = func() { f.record(t, "Lee", domain.LevelRxd, "80") }
	board := NewLeaderboardService(LeaderboardDeps{
		Scores:   scores,
		Workouts: f.store.Workouts,
		Cache:    f.cache,
		Location: time.UTC,
	})

	stale, err := board.Leaderboard(ctx, "2025-05-19", "all")
	require.NoError(t, err)
	assert.Len(t, stale.Entries, 1)

	fresh, err := board.Leaderboard(ctx, "2025-05-19", "all")
	require.NoError(t, err)
	require.Len(t, fresh.Entries, 2)
	assert.Equal(t, "Lee", fresh.Entries[0].MemberName)
}

func TestLeaderboardService_InvalidDate(t *testing.T) {
	f := newBoardFixture(t)
	_, err := f.board.Leaderboard(context.Background(), "yesterday", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLeaderboardService_Export(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t)

	f.record(t, "Kim", domain.LevelRxd, "60")
	f.record(t, "Lee", domain.LevelB, "80")

	exp, err := f.board.Export(ctx, "2025-05-19")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(exp.Key, "leaderboards/2025-05-19/"))
	assert.True(t, strings.HasSuffix(exp.Key, ".json"))
	assert.Contains(t, exp.URL, "expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp.ExpiresAt, time.Minute)

	body, ok := f.files.objects[exp.Key]
	require.True(t, ok)
	assert.Equal(t, "application/json", f.files.types[exp.Key])

	var decoded Leaderboard
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "all", decoded.Level)
	assert.Len(t, decoded.Entries, 2)
}

func TestLeaderboardService_ExportFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	disabled := NewLeaderboardService(LeaderboardDeps{Scores: store.Scores, Workouts: store.Workouts})
	_, err := disabled.Export(ctx, "2025-05-19")
	assert.ErrorIs(t, err, storage.ErrStorageDisabled)

	files := newFakeStorage()
	files.putErr = errors.New("bucket gone")
	broken := NewLeaderboardService(LeaderboardDeps{Scores: store.Scores, Workouts: store.Workouts, Files: files})
	_, err = broken.Export(ctx, "2025-05-19")
	assert.EqualError(t, err, "bucket gone")
	assert.Empty(t, files.deleted)
}

func TestLeaderboardService_ExportRemovesObjectWhenSigningFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	files := newFakeStorage()
	files.signErr = errors.New("no credentials")
	board := NewLeaderboardService(LeaderboardDeps{Scores: store.Scores, Workouts: store.Workouts, Files: files})

	_, err := board.Export(ctx, "2025-05-19")
	assert.EqualError(t, err, "no credentials")
	require.Len(t, files.deleted, 1)
	assert.True(t, strings.HasPrefix(files.deleted[0], "leaderboards/2025-05-19/"))
	assert.Empty(t, files.objects)
}
