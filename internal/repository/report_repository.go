package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"disaster-report-service/internal/geo"
	"disaster-report-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type ReportFilter struct {
	Statuses   []model.ReportStatus
	IncludeAll bool
	Limit      int
	Offset     int
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).
		Preload("Reviewer").
		First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest-submission-first. Without IncludeAll or an
// explicit status filter only APPROVED rows come back; the moderation
// handlers are the only callers allowed to widen that.
func (r *ReportRepository) List(ctx context.Context, filter ReportFilter) ([]model.Report, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})

	switch {
	case len(filter.Statuses) > 0:
		query = query.Where("status IN ?", filter.Statuses)
	case !filter.IncludeAll:
		query = query.Where("status = ?", model.ReportStatusApproved)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var reports []model.Report
	if err := query.
		Order("submitted_at DESC").
		Preload("Reviewer").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

type ReportDistance struct {
	model.Report
	DistanceKm float64 `json:"distance_km"`
}

// WithinRadius runs the radius search in the database so the GIST index is
// used and no rows outside the circle ever reach the application. The
// geography cast makes ST_DWithin and ST_Distance compute on the spheroid;
// a planar approximation is off by too much at province scale.
func (r *ReportRepository) WithinRadius(ctx context.Context, lat, lng, radiusKm float64, statuses []model.ReportStatus) ([]ReportDistance, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Select(
			"reports.*, ST_Distance(location::geography, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography) / 1000.0 AS distance_km",
			lng, lat,
		).
		Where(
			"ST_DWithin(location::geography, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)",
			lng, lat, radiusKm*1000,
		)

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var rows []ReportDistance
	if err := query.Order("distance_km ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFields overwrites the given scalar columns only. Returns the rows
// affected so the caller can detect a missing id.
func (r *ReportRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// UpdateLocation overwrites the spatial column and nothing else.
func (r *ReportRepository) UpdateLocation(ctx context.Context, id uint, point geo.Point) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("location", point)
	return res.RowsAffected, res.Error
}

// ReviewIfPending applies a manual moderation decision guarded by the
// status predicate. A concurrent sweep or second reviewer loses the race
// and observes zero rows affected; the database's conditional update is
// the only concurrency control.
func (r *ReportRepository) ReviewIfPending(ctx context.Context, id uint, status model.ReportStatus, reviewerID uint, note *string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"reviewed_at":    now,
			"reviewed_by_id": reviewerID,
			"review_note":    note,
			"auto_approved":  false,
		})
	return res.RowsAffected, res.Error
}

// AutoApprovePending transitions every report still PENDING past the
// cutoff in one bulk conditional update. Re-running it is harmless: rows
// already transitioned no longer match the predicate.
func (r *ReportRepository) AutoApprovePending(ctx context.Context, cutoff, now time.Time, note string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("status = ? AND submitted_at <= ?", model.ReportStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":         model.ReportStatusApproved,
			"auto_approved":  true,
			"reviewed_at":    now,
			"reviewed_by_id": nil,
			"review_note":    note,
		})
	return res.RowsAffected, res.Error
}

func (r *ReportRepository) SetHandlingStatus(ctx context.Context, id uint, status model.HandlingStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("handling_status", status)
	return res.RowsAffected, res.Error
}

// DeleteCascade removes the report and every dispute referencing it in a
// single transaction, disputes first, so the foreign-key invariant holds
// at every point a concurrent reader may observe.
func (r *ReportRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&model.Dispute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&model.ReportStatusLog{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Report{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ReportRepository) LogStatusChange(ctx context.Context, logEntry *model.ReportStatusLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}
