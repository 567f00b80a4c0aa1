package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cfq/wod-board/internal/cache"
	"cfq/wod-board/internal/calendar"
	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/ranking"
	"cfq/wod-board/internal/repository"
	"cfq/wod-board/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type WodHeader struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Leaderboard is one day's board for a level filter.
type Leaderboard struct {
	Date    string          `json:"date"`
	DateKey string          `json:"dateKey"` // YYMMDD
	Level   string          `json:"level"`
	Wod     *WodHeader      `json:"wod"`
	Levels  []domain.Level  `json:"levels"`
	Entries []ranking.Entry `json:"entries"`
}

type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context, date, level string) (*Leaderboard, error)
	Today(ctx context.Context, level string) (*Leaderboard, error)
	// Export stores the all-levels board of date and returns a download link.
	Export(ctx context.Context, date string) (*Export, error)
}

type leaderboardService struct {
	scores   repository.ScoreRepository
	workouts repository.WorkoutRepository
	engine   *ranking.Engine
	cache    *cache.Leaderboard
	files    storage.FileStorage
	expiry   time.Duration
	metrics  *metrics.Manager
	loc      *time.Location
}

type LeaderboardDeps struct {
	Scores   repository.ScoreRepository
	Workouts repository.WorkoutRepository
	Engine   *ranking.Engine
	Cache    *cache.Leaderboard  // nil disables caching
	Files    storage.FileStorage // nil disables exports
	Expiry   time.Duration
	Metrics  *metrics.Manager
	Location *time.Location
}

func NewLeaderboardService(deps LeaderboardDeps) LeaderboardService {
	if deps.Engine == nil {
		deps.Engine = ranking.Default
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Expiry <= 0 {
		deps.Expiry = storage.DefaultPresignedURLExpiry
	}
	return &leaderboardService{
		scores:   deps.Scores,
		workouts: deps.Workouts,
		engine:   deps.Engine,
		cache:    deps.Cache,
		files:    deps.Files,
		expiry:   deps.Expiry,
		metrics:  deps.Metrics,
		loc:      deps.Location,
	}
}

func (s *leaderboardService) Today(ctx context.Context, level string) (*Leaderboard, error) {
	return s.Leaderboard(ctx, calendar.Today(s.loc).Dashed(), level)
}

func (s *leaderboardService) Leaderboard(ctx context.Context, date, level string) (*Leaderboard, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	level = normalizeLevelFilter(level)

	var cached Leaderboard
	slot, hit := s.cache.Lookup(d.Dashed(), level, &cached)
	if hit {
		s.cacheResult("hit")
		return &cached, nil
	}
	s.cacheResult("miss")

	board, err := s.build(ctx, d, level)
	if err != nil {
		return nil, err
	}
	s.cache.SetAt(slot, board)
	return board, nil
}

func (s *leaderboardService) build(ctx context.Context, d calendar.Date, level string) (*Leaderboard, error) {
	rows, err := s.scores.RankingByDate(ctx, d.Dashed())
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}

	board := &Leaderboard{
		Date:    d.Dashed(),
		DateKey: d.Compact(),
		Level:   level,
		Levels:  s.engine.LevelsPresent(rows),
		Entries: s.engine.Rank(rows, level),
	}

	w, err := s.workouts.GetLatestByDate(ctx, d.Dashed())
	switch {
	case err == nil:
		board.Wod = &WodHeader{ID: w.ID, Title: w.Title}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("load wod header: %w", err)
	}

	return board, nil
}

func (s *leaderboardService) Export(ctx context.Context, date string) (*Export, error) {
	if s.files == nil {
		return nil, storage.ErrStorageDisabled
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	board, err := s.build(ctx, d, ranking.AllLevels)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("leaderboards/%s/%s.json", d.Dashed(), uuid.NewString())
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, err
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.expiry)
	if err != nil {
		// nobody can reach the object without a link
		if delErr := s.files.DeleteObject(ctx, key); delErr != nil {
			log.WithFields(log.Fields{"key": key}).Warnf("remove unlinked export: %s", delErr)
		}
		return nil, err
	}

	log.WithFields(log.Fields{"date": d.Dashed(), "key": key, "entries": len(board.Entries)}).Info("leaderboard exported")
	return &Export{Key: key, URL: url, ExpiresAt: time.Now().Add(s.expiry)}, nil
}

func (s *leaderboardService) cacheResult(result string) {
	if s.metrics != nil && s.cache != nil {
		s.metrics.CounterLeaderboardCache.WithLabelValues(result).Inc()
	}
}

func normalizeLevelFilter(level string) string {
	if ranking.IsAllLevels(level) {
		return ranking.AllLevels
	}
	return strings.TrimSpace(level)
}
