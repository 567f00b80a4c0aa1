package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workoutColumns = `id, to_char(date, 'YYYY-MM-DD'), title, type, description, level, created_at, updated_at`

type WorkoutRepository struct {
	pool *pgxpool.Pool
}

func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{pool: pool}
}

func (r *WorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	if workout.Date == "" || workout.Title == "" {
		return "", errors.New("workout requires date and title")
	}

	categories, err := encodeCategories(workout.Categories)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	const query = `INSERT INTO wods (id, date, title, type, description, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	if _, err := r.pool.Exec(ctx, query, id, workout.Date, workout.Title, categories, workout.Description, workout.Level, now); err != nil {
		return "", fmt.Errorf("insert wod: %w", err)
	}

	workout.ID = id
	workout.CreatedAt = now
	workout.UpdatedAt = now
	return id, nil
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	row := r.pool.QueryRow(ctx, `SELECT `+workoutColumns+` FROM wods WHERE id = $1`, id)
	return scanWorkout(row)
}

func (r *WorkoutRepository) GetLatestByDate(ctx context.Context, date string) (*domain.Workout, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM wods WHERE date = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, date)
	return scanWorkout(row)
}

func (r *WorkoutRepository) List(ctx context.Context, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case filter.Date != "":
		args = append(args, filter.Date)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	default:
		if filter.From != "" {
			args = append(args, filter.From)
			where = append(where, fmt.Sprintf("date >= $%d", len(args)))
		}
		if filter.To != "" {
			args = append(args, filter.To)
			where = append(where, fmt.Sprintf("date <= $%d", len(args)))
		}
	}

	query := `SELECT ` + workoutColumns + ` FROM wods`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wods: %w", err)
	}
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

func (r *WorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if _, err := uuid.Parse(workout.ID); err != nil {
		return repository.ErrInvalidID
	}
	categories, err := encodeCategories(workout.Categories)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	const query = `UPDATE wods SET date = $2, title = $3, type = $4, description = $5, level = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, workout.ID, workout.Date, workout.Title, categories, workout.Description, workout.Level, now)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUpdateFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = now
	return nil
}

func (r *WorkoutRepository) Titles(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title FROM wods`)
	if err != nil {
		return nil, fmt.Errorf("list wod titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var (
		w   domain.Workout
		raw []byte
	)
	err := row.Scan(&w.ID, &w.Date, &w.Title, &raw, &w.Description, &w.Level, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	w.Categories = decodeCategories(raw)
	return &w, nil
}

// decodeCategories reads the type column. Legacy rows hold a JSON string
// instead of an array; both go through the normalizer.
func decodeCategories(raw []byte) []string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.NormalizeCategories(raw)
	}
	return domain.NormalizeCategories(v)
}

func encodeCategories(categories []string) ([]byte, error) {
	if categories == nil {
		categories = []string{}
	}
	return json.Marshal(categories)
}
