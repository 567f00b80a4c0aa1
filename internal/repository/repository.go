package repository

import (
	"context"

	"cfq/wod-board/internal/domain"
)

var (
	ErrNotFound     = RepositoryError("not found")
	ErrInvalidID    = RepositoryError("invalid id")
	ErrDuplicate    = RepositoryError("duplicate entry")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// WorkoutFilter narrows List. Dates are dashed keys; empty fields are ignored.
// Date wins over the From/To range when set.
type WorkoutFilter struct {
	Date string
	From string
	To   string
}

// WorkoutRepository stores daily workouts. Several rows may share a date; the
// most recently created one is the workout of that day.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	GetLatestByDate(ctx context.Context, date string) (*domain.Workout, error)
	// List returns workouts ordered by date, then creation time.
	List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	// Titles maps workout id to title.
	Titles(ctx context.Context) (map[string]string, error)
}

// ScoreRepository stores score records. Records are insert-only.
type ScoreRepository interface {
	Create(ctx context.Context, score *domain.ScoreRecord) (string, error)
	// ListByDate returns the day's records in insertion order. rankedOnly drops
	// records without a score value.
	ListByDate(ctx context.Context, date string, rankedOnly bool) ([]domain.ScoreRecord, error)
	// RankingByDate returns the ranking view for a day: ranked records joined
	// with their workout title and the per-level competition rank.
	RankingByDate(ctx context.Context, date string) ([]domain.RankingRow, error)
	// DatesByMember lists the distinct dates in [from, to] on which memberName
	// has a record, ascending.
	DatesByMember(ctx context.Context, memberName, from, to string) ([]string, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// PersonalRecordRepository keeps one record per (user, kind, lift).
type PersonalRecordRepository interface {
	Upsert(ctx context.Context, record *domain.PersonalRecord) error
	// ListByUser returns the user's records; an empty kind returns all kinds.
	ListByUser(ctx context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error)
}

// Store bundles the repositories of one driver.
type Store struct {
	Workouts        WorkoutRepository
	Scores          ScoreRepository
	Users           UserRepository
	PersonalRecords PersonalRecordRepository
}
