package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cfq/wod-board/internal/calendar"
	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/repository"

	log "github.com/sirupsen/logrus"
)

// WodInput is the editable part of a workout. Date accepts YYYY-MM-DD or YYMMDD.
type WodInput struct {
	Date        string
	Title       string
	Categories  []string
	Description string
	Level       string
}

// CacheInvalidator drops cached boards of a date.
type CacheInvalidator interface {
	Invalidate(date string)
}

type WodService interface {
	Create(ctx context.Context, in WodInput) (*domain.Workout, error)
	Update(ctx context.Context, id string, in WodInput) (*domain.Workout, error)
	// UpdateByDate edits the workout currently shown for date. An empty
	// in.Date keeps the workout on that date.
	UpdateByDate(ctx context.Context, date string, in WodInput) (*domain.Workout, error)
	GetByDate(ctx context.Context, date string) (*domain.Workout, error)
	Today(ctx context.Context) (*domain.Workout, error)
	List(ctx context.Context, date string) ([]domain.Workout, error)
	Titles(ctx context.Context) (map[string]string, error)
	// Calendar lists the dates of month (YYYY-MM) that have a workout.
	Calendar(ctx context.Context, month string) ([]string, error)
}

type wodService struct {
	repo    repository.WorkoutRepository
	cache   CacheInvalidator
	metrics *metrics.Manager
	loc     *time.Location
}

func NewWodService(repo repository.WorkoutRepository, cache CacheInvalidator, m *metrics.Manager, loc *time.Location) WodService {
	if loc == nil {
		loc = time.Local
	}
	return &wodService{
		repo:    repo,
		cache:   cache,
		metrics: m,
		loc:     loc,
	}
}

func (s *wodService) Create(ctx context.Context, in WodInput) (*domain.Workout, error) {
	w, err := buildWorkout(in, "")
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create wod: %w", err)
	}
	s.saved(w.Date)

	log.WithFields(log.Fields{"wod_id": w.ID, "date": w.Date}).Info("wod created")
	return w, nil
}

func (s *wodService) Update(ctx context.Context, id string, in WodInput) (*domain.Workout, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapWodErr(err)
	}
	return s.update(ctx, existing, in)
}

func (s *wodService) UpdateByDate(ctx context.Context, date string, in WodInput) (*domain.Workout, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetLatestByDate(ctx, d.Dashed())
	if err != nil {
		return nil, mapWodErr(err)
	}
	return s.update(ctx, existing, in)
}

func (s *wodService) update(ctx context.Context, existing *domain.Workout, in WodInput) (*domain.Workout, error) {
	w, err := buildWorkout(in, existing.Date)
	if err != nil {
		return nil, err
	}
	w.ID = existing.ID
	w.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, mapWodErr(err)
	}
	s.saved(existing.Date)
	if w.Date != existing.Date {
		s.saved(w.Date)
	}

	log.WithFields(log.Fields{"wod_id": w.ID, "date": w.Date}).Info("wod updated")
	return w, nil
}

func (s *wodService) GetByDate(ctx context.Context, date string) (*domain.Workout, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	w, err := s.repo.GetLatestByDate(ctx, d.Dashed())
	if err != nil {
		return nil, mapWodErr(err)
	}
	return w, nil
}

func (s *wodService) Today(ctx context.Context) (*domain.Workout, error) {
	return s.GetByDate(ctx, calendar.Today(s.loc).Dashed())
}

func (s *wodService) List(ctx context.Context, date string) ([]domain.Workout, error) {
	filter := repository.WorkoutFilter{}
	if strings.TrimSpace(date) != "" {
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		filter.Date = d.Dashed()
	}
	return s.repo.List(ctx, filter)
}

func (s *wodService) Titles(ctx context.Context) (map[string]string, error) {
	return s.repo.Titles(ctx)
}

func (s *wodService) Calendar(ctx context.Context, month string) ([]string, error) {
	first, last, err := monthRange(month, s.loc)
	if err != nil {
		return nil, err
	}

	workouts, err := s.repo.List(ctx, repository.WorkoutFilter{From: first.Dashed(), To: last.Dashed()})
	if err != nil {
		return nil, err
	}

	dates := []string{}
	for _, w := range workouts {
		if len(dates) == 0 || dates[len(dates)-1] != w.Date {
			dates = append(dates, w.Date)
		}
	}
	return dates, nil
}

func (s *wodService) saved(date string) {
	if s.cache != nil {
		s.cache.Invalidate(date)
	}
	if s.metrics != nil {
		s.metrics.CounterWodsSaved.Inc()
	}
}

// buildWorkout validates in. fallbackDate is used when in.Date is empty.
func buildWorkout(in WodInput, fallbackDate string) (*domain.Workout, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = fallbackDate
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	categories, err := domain.CanonicalCategories(in.Categories)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return &domain.Workout{
		Date:        d.Dashed(),
		Title:       title,
		Categories:  categories,
		Description: strings.TrimSpace(in.Description),
		Level:       strings.TrimSpace(in.Level),
	}, nil
}

func parseDate(s string) (calendar.Date, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return d, nil
}

// monthRange parses YYYY-MM; an empty month means the current one.
func monthRange(month string, loc *time.Location) (calendar.Date, calendar.Date, error) {
	var d calendar.Date
	if strings.TrimSpace(month) == "" {
		d = calendar.Today(loc)
	} else {
		var err error
		if d, err = calendar.ParseMonth(month); err != nil {
			return calendar.Date{}, calendar.Date{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	first, last := d.MonthRange()
	return first, last, nil
}

func mapWodErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return ErrWodNotFound
	}
	return err
}
