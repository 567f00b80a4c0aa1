package postgres

import (
	"context"
	"fmt"
	"time"

	"cfq/wod-board/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PersonalRecordRepository struct {
	pool *pgxpool.Pool
}

func NewPersonalRecordRepository(pool *pgxpool.Pool) *PersonalRecordRepository {
	return &PersonalRecordRepository{pool: pool}
}

func (r *PersonalRecordRepository) Upsert(ctx context.Context, record *domain.PersonalRecord) error {
	now := time.Now().UTC()
	const query = `INSERT INTO personal_records (id, user_id, kind, lift, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, kind, lift) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, updated_at`
	err := r.pool.QueryRow(ctx, query,
		uuid.NewString(), record.UserID, string(record.Kind), record.Lift, record.Value, now,
	).Scan(&record.ID, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert personal record: %w", err)
	}
	return nil
}

func (r *PersonalRecordRepository) ListByUser(ctx context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error) {
	query := `SELECT id, user_id, kind, lift, value, updated_at FROM personal_records WHERE user_id = $1`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, lift`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list personal records: %w", err)
	}
	defer rows.Close()

	records := []domain.PersonalRecord{}
	for rows.Next() {
		var p domain.PersonalRecord
		if err := rows.Scan(&p.ID, &p.UserID, &p.Kind, &p.Lift, &p.Value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
