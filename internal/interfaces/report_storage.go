package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/nuntium/internal/models"
)

// ErrNoReports indicates the store holds no reports yet.
var ErrNoReports = errors.New("no reports stored")

// ReportStorage persists assembled reports. The store is append-only:
// reports are never updated in place.
type ReportStorage interface {
	// SaveReport persists a report under its ID.
	SaveReport(ctx context.Context, report *models.Report) error

	// LoadLatestReport returns the most recently created report, or
	// ErrNoReports.
	LoadLatestReport(ctx context.Context) (*models.Report, error)

	// ListReports returns reports newest first, up to limit.
	ListReports(ctx context.Context, limit int) ([]*models.Report, error)

	// CountReports returns the number of stored reports.
	CountReports(ctx context.Context) (int, error)
}
