package service

import (
	"context"
	"testing"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreService_RecordDerivesValueAndLinksWod(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	inv := &recordingInvalidator{}
	m := metrics.NewTestManager()
	wods := NewWodService(store.Workouts, nil, nil, time.UTC)
	svc := NewScoreService(store.Scores, store.Workouts, inv, m, time.UTC)

	w, err := wods.Create(ctx, WodInput{Date: "2025-05-19", Title: "Fran", Categories: cardio})
	require.NoError(t, err)

	rec, err := svc.Record(ctx, "coach", ScoreInput{
		MemberName: " Kim ",
		Date:       "250519",
		Level:      domain.LevelRxd,
		ScoreRaw:   "5:30",
		Remark:     "PR",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim", rec.MemberName)
	assert.Equal(t, "2025-05-19", rec.WodDate)
	assert.Equal(t, w.ID, rec.WodID)
	require.NotNil(t, rec.ScoreValue)
	assert.Equal(t, -330.0, *rec.ScoreValue)
	assert.Equal(t, "coach", rec.RecordedBy)
	assert.Equal(t, []string{"2025-05-19"}, inv.dates)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterScoresRecorded.WithLabelValues("Rxd", "true")))

	unranked, err := svc.Record(ctx, "coach", ScoreInput{
		MemberName: "Lee",
		Date:       "2025-05-19",
		Level:      domain.LevelScaled,
		ScoreRaw:   "DNF",
	})
	require.NoError(t, err)
	assert.Nil(t, unranked.ScoreValue)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterScoresRecorded.WithLabelValues("Scaled", "false")))

	all, err := svc.ListByDate(ctx, "2025-05-19")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScoreService_RecordOverrideAndNoWod(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewScoreService(store.Scores, store.Workouts, nil, nil, time.UTC)

	v := 42.0
	rec, err := svc.Record(ctx, "", ScoreInput{
		MemberName: "Kim",
		Date:       "2025-05-20",
		Level:      domain.LevelA,
		ScoreRaw:   "forty-two",
		ScoreValue: &v,
	})
	require.NoError(t, err)
	assert.Empty(t, rec.WodID)
	assert.Equal(t, 42.0, *rec.ScoreValue)
}

func TestScoreService_RecordRejects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	wods := NewWodService(store.Workouts, nil, nil, time.UTC)
	svc := NewScoreService(store.Scores, store.Workouts, nil, nil, time.UTC)

	w, err := wods.Create(ctx, WodInput{Date: "2025-05-19", Title: "Fran", Categories: cardio})
	require.NoError(t, err)

	valid := ScoreInput{MemberName: "Kim", Date: "2025-05-19", Level: domain.LevelRxd, ScoreRaw: "100"}

	for name, mutate := range map[string]func(*ScoreInput){
		"no member":     func(in *ScoreInput) { in.MemberName = "  " },
		"unknown level": func(in *ScoreInput) { in.Level = "Elite" },
		"no score":      func(in *ScoreInput) { in.ScoreRaw = "" },
		"bad date":      func(in *ScoreInput) { in.Date = "2025-13-01" },
		"wod elsewhere": func(in *ScoreInput) { in.WodID = w.ID; in.Date = "2025-05-20" },
	} {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.Record(ctx, "coach", in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	in := valid
	in.WodID = "missing"
	_, err = svc.Record(ctx, "coach", in)
	assert.ErrorIs(t, err, ErrWodNotFound)

	all, err := svc.ListByDate(ctx, "2025-05-19")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestScoreService_MemberDates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewScoreService(store.Scores, store.Workouts, nil, nil, time.UTC)

	for _, date := range []string{"2025-05-19", "2025-05-19", "2025-05-02", "2025-06-01"} {
		_, err := svc.Record(ctx, "", ScoreInput{MemberName: "Kim", Date: date, Level: domain.LevelB, ScoreRaw: "10"})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, "", ScoreInput{MemberName: "Lee", Date: "2025-05-03", Level: domain.LevelB, ScoreRaw: "10"})
	require.NoError(t, err)

	dates, err := svc.MemberDates(ctx, "Kim", "2025-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-05-02", "2025-05-19"}, dates)
}

func TestScoreService_RecordLogsScoreLevelField(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	store := memory.NewStore()
	svc := NewScoreService(store.Scores, store.Workouts, nil, nil, time.UTC)
	_, err := svc.Record(context.Background(), "coach", ScoreInput{
		MemberName: "Kim",
		Date:       "2025-05-19",
		Level:      domain.LevelScaled,
		ScoreRaw:   "100",
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "score recorded", entry.Message)
	assert.Equal(t, domain.LevelScaled, entry.Data["score_level"])
	assert.NotContains(t, entry.Data, "level")
}
