package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"disaster-report-service/internal/geo"
	"disaster-report-service/internal/model"
	"disaster-report-service/internal/repository"
)

// ReportStore is the persistence surface the services need from the report
// repository. Kept as an interface so lifecycle rules can be tested
// without a database.
type ReportStore interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id uint) (*model.Report, error)
	List(ctx context.Context, filter repository.ReportFilter) ([]model.Report, error)
	WithinRadius(ctx context.Context, lat, lng, radiusKm float64, statuses []model.ReportStatus) ([]repository.ReportDistance, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	UpdateLocation(ctx context.Context, id uint, point geo.Point) (int64, error)
	ReviewIfPending(ctx context.Context, id uint, status model.ReportStatus, reviewerID uint, note *string, now time.Time) (int64, error)
	AutoApprovePending(ctx context.Context, cutoff, now time.Time, note string) (int64, error)
	SetHandlingStatus(ctx context.Context, id uint, status model.HandlingStatus) (int64, error)
	DeleteCascade(ctx context.Context, id uint) error
	LogStatusChange(ctx context.Context, logEntry *model.ReportStatusLog) error
}

type DisputeStore interface {
	Create(ctx context.Context, dispute *model.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error)
	ListByReportID(ctx context.Context, reportID uint) ([]model.Dispute, error)
	ListAll(ctx context.Context) ([]model.Dispute, error)
	CountByReportID(ctx context.Context, reportID uint) (int64, error)
	SummariesByReportIDs(ctx context.Context, ids []uint) (map[uint]repository.DisputeSummary, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
