package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/nuntium/internal/interfaces"
	"github.com/ternarybob/nuntium/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ReportStorage implements interfaces.ReportStorage on BadgerDB. The
// store is append-only: SaveReport inserts, nothing updates in place.
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new report storage service
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

// SaveReport persists a report under its ID.
func (s *ReportStorage) SaveReport(ctx context.Context, report *models.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report must have an ID")
	}

	if err := s.db.Store().Insert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	s.logger.Debug().
		Str("report_id", report.ID).
		Str("content_hash", report.ContentHash).
		Bool("ai_filled", report.IsAIFilled).
		Msg("Report saved")
	return nil
}

// LoadLatestReport returns the most recently created report.
func (s *ReportStorage) LoadLatestReport(ctx context.Context) (*models.Report, error) {
	reports, err := s.ListReports(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, interfaces.ErrNoReports
	}
	return reports[0], nil
}

// ListReports returns reports newest first, up to limit.
func (s *ReportStorage) ListReports(ctx context.Context, limit int) ([]*models.Report, error) {
	var reports []models.Report

	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	result := make([]*models.Report, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result, nil
}

// CountReports returns the number of stored reports.
func (s *ReportStorage) CountReports(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Report{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return int(count), nil
}
