package service

import (
	"context"
	"fmt"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/repository"
)

type RecordInput struct {
	Kind  domain.RecordKind
	Lift  string
	Value float64
}

type PersonalRecordService interface {
	// Save upserts every entry after validating all of them.
	Save(ctx context.Context, userID string, entries []RecordInput) ([]domain.PersonalRecord, error)
	List(ctx context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error)
}

type personalRecordService struct {
	repo repository.PersonalRecordRepository
}

func NewPersonalRecordService(repo repository.PersonalRecordRepository) PersonalRecordService {
	return &personalRecordService{repo: repo}
}

func (s *personalRecordService) Save(ctx context.Context, userID string, entries []RecordInput) ([]domain.PersonalRecord, error) {
	if len(entries) == 0 {
		return nil, invalid("no records to save")
	}
	for _, e := range entries {
		if !e.Kind.IsValid() {
			return nil, invalid("unknown record kind %q", e.Kind)
		}
		if !domain.IsKnownLift(e.Lift) {
			return nil, invalid("unknown lift %q", e.Lift)
		}
		if e.Value <= 0 {
			return nil, invalid("%s %s must be positive", e.Lift, e.Kind)
		}
	}

	saved := make([]domain.PersonalRecord, 0, len(entries))
	for _, e := range entries {
		record := &domain.PersonalRecord{UserID: userID, Kind: e.Kind, Lift: e.Lift, Value: e.Value}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("save %s %s: %w", e.Lift, e.Kind, err)
		}
		saved = append(saved, *record)
	}
	return saved, nil
}

func (s *personalRecordService) List(ctx context.Context, userID string, kind domain.RecordKind) ([]domain.PersonalRecord, error) {
	if kind != "" && !kind.IsValid() {
		return nil, invalid("unknown record kind %q", kind)
	}
	return s.repo.ListByUser(ctx, userID, kind)
}
