package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rmspulse/internal/dataprocessing"
	"rmspulse/internal/store"
	"rmspulse/pkg/contracts/domain"
)

// ActivityRepository is the persistence surface the activity service needs.
type ActivityRepository interface {
	Insert(ctx context.Context, rec domain.StoredRecord) (int64, error)
	SaveBatch(ctx context.Context, records []domain.StoredRecord) (store.BatchResult, error)
	ListSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error)
	Get(ctx context.Context, id int64) (domain.StoredRecord, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// ActivityService persists ETL activity records. Request-shape validation
// happens in the transport layer; the service only enforces what storage
// requires.
type ActivityService struct {
	repo   ActivityRepository
	logger *slog.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(repo ActivityRepository, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityService{
		repo:   repo,
		logger: logger,
	}
}

// Upload parses the full ETL column set from a workbook and bulk-loads it.
// Duplicate start times never fail the batch.
func (s *ActivityService) Upload(ctx context.Context, filePath, sheetName string) (store.BatchResult, error) {
	records, err := dataprocessing.ParseStoredRecords(filePath, sheetName, s.logger)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrSheetNotFound) {
			return store.BatchResult{}, ErrSheetNotFound
		}
		return store.BatchResult{}, fmt.Errorf("failed to parse workbook: %w", err)
	}

	result, err := s.repo.SaveBatch(ctx, records)
	if err != nil {
		return result, fmt.Errorf("failed to store records: %w", err)
	}

	s.logger.InfoContext(ctx, "uploaded activity records",
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("duplicates", result.Duplicates))

	return result, nil
}

// Add validates and stores one record, returning it with its assigned id.
func (s *ActivityService) Add(ctx context.Context, rec domain.StoredRecord) (domain.StoredRecord, error) {
	if rec.StartTime == nil {
		return domain.StoredRecord{}, ErrMissingStartTime
	}

	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateStartTime) {
			return domain.StoredRecord{}, ErrDuplicateRecord
		}
		return domain.StoredRecord{}, fmt.Errorf("failed to store record: %w", err)
	}

	rec.ID = id
	return rec, nil
}

// ListSince returns records whose start time falls inside the trailing
// window of the given number of days.
func (s *ActivityService) ListSince(ctx context.Context, days int) ([]domain.StoredRecord, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	records, err := s.repo.ListSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Get returns one record by id.
func (s *ActivityService) Get(ctx context.Context, id int64) (domain.StoredRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.StoredRecord{}, ErrRecordNotFound
		}
		return domain.StoredRecord{}, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}

// Delete removes one record by id.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Count returns the total number of stored records.
func (s *ActivityService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
