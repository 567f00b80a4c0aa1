package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/repository"

	log "github.com/sirupsen/logrus"
)

// ScoreInput is one logged result. ScoreValue overrides the value derived
// from ScoreRaw when set.
type ScoreInput struct {
	MemberName string
	Date       string
	WodID      string
	Level      domain.Level
	ScoreRaw   string
	ScoreValue *float64
	Remark     string
}

type ScoreService interface {
	Record(ctx context.Context, recordedBy string, in ScoreInput) (*domain.ScoreRecord, error)
	ListByDate(ctx context.Context, date string) ([]domain.ScoreRecord, error)
	// MemberDates lists the dates of month (YYYY-MM) on which memberName logged a score.
	MemberDates(ctx context.Context, memberName, month string) ([]string, error)
}

type scoreService struct {
	scores   repository.ScoreRepository
	workouts repository.WorkoutRepository
	cache    CacheInvalidator
	metrics  *metrics.Manager
	loc      *time.Location
}

func NewScoreService(
	scores repository.ScoreRepository,
	workouts repository.WorkoutRepository,
	cache CacheInvalidator,
	m *metrics.Manager,
	loc *time.Location,
) ScoreService {
	if loc == nil {
		loc = time.Local
	}
	return &scoreService{
		scores:   scores,
		workouts: workouts,
		cache:    cache,
		metrics:  m,
		loc:      loc,
	}
}

func (s *scoreService) Record(ctx context.Context, recordedBy string, in ScoreInput) (*domain.ScoreRecord, error) {
	member := strings.TrimSpace(in.MemberName)
	if member == "" {
		return nil, invalid("member name is required")
	}
	if !in.Level.IsKnown() {
		return nil, invalid("unknown level %q", in.Level)
	}
	raw := strings.TrimSpace(in.ScoreRaw)
	if raw == "" {
		return nil, invalid("score is required")
	}
	d, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	wodID, err := s.resolveWod(ctx, d.Dashed(), strings.TrimSpace(in.WodID))
	if err != nil {
		return nil, err
	}

	value := in.ScoreValue
	if value == nil {
		value = domain.ParseScoreValue(raw)
	}

	record := &domain.ScoreRecord{
		MemberName: member,
		WodDate:    d.Dashed(),
		WodID:      wodID,
		Level:      in.Level,
		ScoreRaw:   raw,
		ScoreValue: value,
		Remark:     strings.TrimSpace(in.Remark),
		RecordedBy: recordedBy,
	}
	if _, err := s.scores.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create score: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(record.WodDate)
	}
	if s.metrics != nil {
		s.metrics.CounterScoresRecorded.WithLabelValues(string(record.Level), strconv.FormatBool(record.Ranked())).Inc()
	}

	log.WithFields(log.Fields{
		"score_id":    record.ID,
		"date":        record.WodDate,
		"score_level": record.Level,
		"ranked":      record.Ranked(),
	}).Info("score recorded")
	return record, nil
}

// resolveWod checks an explicit workout id against the date, or links the
// workout currently shown for the date. A day without a workout is allowed.
func (s *scoreService) resolveWod(ctx context.Context, date, wodID string) (string, error) {
	if wodID != "" {
		w, err := s.workouts.GetByID(ctx, wodID)
		if err != nil {
			return "", mapWodErr(err)
		}
		if w.Date != date {
			return "", invalid("wod %s is dated %s, not %s", wodID, w.Date, date)
		}
		return w.ID, nil
	}

	w, err := s.workouts.GetLatestByDate(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return w.ID, nil
}

func (s *scoreService) ListByDate(ctx context.Context, date string) ([]domain.ScoreRecord, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return s.scores.ListByDate(ctx, d.Dashed(), false)
}

func (s *scoreService) MemberDates(ctx context.Context, memberName, month string) ([]string, error) {
	first, last, err := monthRange(month, s.loc)
	if err != nil {
		return nil, err
	}
	return s.scores.DatesByMember(ctx, memberName, first.Dashed(), last.Dashed())
}
