package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cfq/wod-board/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const scoreColumns = `id, member_name, to_char(wod_date, 'YYYY-MM-DD'), COALESCE(wod_id, ''), level,
	score_raw, score_value, remark, recorded_by, created_at`

type ScoreRepository struct {
	pool *pgxpool.Pool
}

func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

func (r *ScoreRepository) Create(ctx context.Context, score *domain.ScoreRecord) (string, error) {
	if score.MemberName == "" || score.WodDate == "" {
		return "", errors.New("score requires member name and wod date")
	}

	var wodID *string
	if score.WodID != "" {
		wodID = &score.WodID
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	const query = `INSERT INTO records
		(id, member_name, wod_date, wod_id, level, score_raw, score_value, remark, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		id, score.MemberName, score.WodDate, wodID, string(score.Level),
		score.ScoreRaw, score.ScoreValue, score.Remark, score.RecordedBy, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	score.ID = id
	score.CreatedAt = now
	return id, nil
}

func (r *ScoreRepository) ListByDate(ctx context.Context, date string, rankedOnly bool) ([]domain.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM records WHERE wod_date = $1`
	if rankedOnly {
		query += ` AND score_value IS NOT NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	scores := []domain.ScoreRecord{}
	for rows.Next() {
		var s domain.ScoreRecord
		if err := rows.Scan(scoreDest(&s)...); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// RankingByDate reads ranking_view, which holds only ranked rows and computes
// the per-level rank with RANK() over the date and level partition.
func (r *ScoreRepository) RankingByDate(ctx context.Context, date string) ([]domain.RankingRow, error) {
	query := `SELECT ` + scoreColumns + `, wod_title, rank FROM ranking_view
		WHERE wod_date = $1 ORDER BY level, rank, member_name`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query ranking view: %w", err)
	}
	defer rows.Close()

	ranking := []domain.RankingRow{}
	for rows.Next() {
		var (
			row  domain.RankingRow
			rank *int64
		)
		dest := append(scoreDest(&row.ScoreRecord), &row.WodTitle, &rank)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if rank != nil {
			v := int(*rank)
			row.Rank = &v
		}
		ranking = append(ranking, row)
	}
	return ranking, rows.Err()
}

func (r *ScoreRepository) DatesByMember(ctx context.Context, memberName, from, to string) ([]string, error) {
	const query = `SELECT DISTINCT to_char(wod_date, 'YYYY-MM-DD') AS d FROM records
		WHERE member_name = $1 AND wod_date BETWEEN $2 AND $3 ORDER BY d`
	rows, err := r.pool.Query(ctx, query, memberName, from, to)
	if err != nil {
		return nil, fmt.Errorf("list member dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scoreDest(s *domain.ScoreRecord) []any {
	return []any{
		&s.ID, &s.MemberName, &s.WodDate, &s.WodID, &s.Level,
		&s.ScoreRaw, &s.ScoreValue, &s.Remark, &s.RecordedBy, &s.CreatedAt,
	}
}
