// Package memory keeps every repository in process memory. It backs the
// "memory" database driver used for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"

	"github.com/google/uuid"
)

// NewStore returns a Store whose repositories share nothing but the workout
// titles needed by the ranking view.
func NewStore() *repository.Store {
	workouts := NewWorkoutRepository()
	return &repository.Store{
		Workouts:        workouts,
		Scores:          NewScoreRepository(workouts),
		Users:           NewUserRepository(),
		PersonalRecords: NewPersonalRecordRepository(),
	}
}

type WorkoutRepository struct {
	mu       sync.RWMutex
	workouts []domain.Workout
	seq      int
}

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{}
}

func (r *WorkoutRepository) Create(_ context.Context, workout *domain.Workout) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// strictly increasing timestamps keep "latest wins" well defined for fast inserts
	r.seq++
	now := time.Now().UTC().Add(time.Duration(r.seq))
	workout.ID = uuid.NewString()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.workouts = append(r.workouts, cloneWorkout(*workout))
	return workout.ID, nil
}

func (r *WorkoutRepository) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.workouts {
		if w.ID == id {
			out := cloneWorkout(w)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *WorkoutRepository) GetLatestByDate(_ context.Context, date string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Workout
	for i := range r.workouts {
		w := &r.workouts[i]
		if w.Date != date {
			continue
		}
		if latest == nil || !w.CreatedAt.Before(latest.CreatedAt) {
			latest = w
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	out := cloneWorkout(*latest)
	return &out, nil
}

func (r *WorkoutRepository) List(_ context.Context, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Workout{}
	for _, w := range r.workouts {
		switch {
		case filter.Date != "":
			if w.Date != filter.Date {
				continue
			}
		default:
			if filter.From != "" && w.Date < filter.From {
				continue
			}
			if filter.To != "" && w.Date > filter.To {
				continue
			}
		}
		out = append(out, cloneWorkout(w))
	}

	slices.SortStableFunc(out, func(a, b domain.Workout) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *WorkoutRepository) Update(_ context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.workouts {
		if r.workouts[i].ID != workout.ID {
			continue
		}
		workout.CreatedAt = r.workouts[i].CreatedAt
		workout.UpdatedAt = time.Now().UTC()
		r.workouts[i] = cloneWorkout(*workout)
		return nil
	}
	return repository.ErrNotFound
}

func (r *WorkoutRepository) Titles(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make(map[string]string, len(r.workouts))
	for _, w := range r.workouts {
		titles[w.ID] = w.Title
	}
	return titles, nil
}

func cloneWorkout(w domain.Workout) domain.Workout {
	w.Categories = slices.Clone(w.Categories)
	return w
}

type ScoreRepository struct {
	mu       sync.RWMutex
	scores   []domain.ScoreRecord
	workouts *WorkoutRepository
}

func NewScoreRepository(workouts *WorkoutRepository) *ScoreRepository {
	return &ScoreRepository{workouts: workouts}
}

func (r *ScoreRepository) Create(_ context.Context, score *domain.ScoreRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	score.ID = uuid.NewString()
	score.CreatedAt = time.Now().UTC()
	r.scores = append(r.scores, *score)
	return score.ID, nil
}

func (r *ScoreRepository) ListByDate(_ context.Context, date string, rankedOnly bool) ([]domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.ScoreRecord{}
	for _, s := range r.scores {
		if s.WodDate != date || (rankedOnly && s.ScoreValue == nil) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// RankingByDate mirrors the SQL ranking view: RANK() over (date, level)
// ordered by score value descending.
func (r *ScoreRepository) RankingByDate(ctx context.Context, date string) ([]domain.RankingRow, error) {
	scores, err := r.ListByDate(ctx, date, true)
	if err != nil {
		return nil, err
	}

	var titles map[string]string
	if r.workouts != nil {
		if titles, err = r.workouts.Titles(ctx); err != nil {
			return nil, err
		}
	}

	rows := make([]domain.RankingRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, domain.RankingRow{ScoreRecord: s, WodTitle: titles[s.WodID]})
	}

	slices.SortStableFunc(rows, func(a, b domain.RankingRow) int {
		if c := strings.Compare(string(a.Level), string(b.Level)); c != 0 {
			return c
		}
		return cmp.Compare(*b.ScoreValue, *a.ScoreValue)
	})

	for i := range rows {
		rank := 1
		if i > 0 && rows[i-1].Level == rows[i].Level {
			rank = *rows[i-1].Rank
			if *rows[i-1].ScoreValue != *rows[i].ScoreValue {
				rank = positionInLevel(rows, i)
			}
		}
		rows[i].Rank = &rank
	}
	return rows, nil
}

func (r *ScoreRepository) DatesByMember(_ context.Context, memberName, from, to string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	dates := []string{}
	for _, s := range r.scores {
		if s.MemberName != memberName || s.WodDate < from || s.WodDate > to || seen[s.WodDate] {
			continue
		}
		seen[s.WodDate] = true
		dates = append(dates, s.WodDate)
	}
	slices.Sort(dates)
	return dates, nil
}

func positionInLevel(rows []domain.RankingRow, i int) int {
	pos := 1
	for j := i - 1; j >= 0 && rows[j].Level == rows[i].Level; j-- {
		pos++
	}
	return pos
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return "", repository.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type PersonalRecordRepository struct {
	mu      sync.RWMutex
	records map[string]domain.PersonalRecord
}

func NewPersonalRecordRepository() *PersonalRecordRepository {
	return &PersonalRecordRepository{records: make(map[string]domain.PersonalRecord)}
}

func (r *PersonalRecordRepository) Upsert(_ context.Context, record *domain.PersonalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := record.UserID + "|" + string(record.Kind) + "|" + record.Lift
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = uuid.NewString()
	}
	record.UpdatedAt = time.Now().UTC()
	r.records[key] = *record
	return nil
}

func (r *PersonalRecordRepository) ListByUser(_ context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.PersonalRecord{}
	for _, p := range r.records {
		if p.UserID != userID || (kind != "" && p.Kind != kind) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.PersonalRecord) int {
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.Lift, b.Lift)
	})
	return out, nil
}
