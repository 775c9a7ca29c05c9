package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"disaster-report-service/internal/model"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) Create(ctx context.Context, dispute *model.Dispute) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error) {
	var dispute model.Dispute
	if err := r.db.WithContext(ctx).First(&dispute, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *DisputeRepository) ListByReportID(ctx context.Context, reportID uint) ([]model.Dispute, error) {
	var disputes []model.Dispute
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&disputes).Error; err != nil {
		return nil, err
	}
	return disputes, nil
}

func (r *DisputeRepository) ListAll(ctx context.Context) ([]model.Dispute, error) {
	var disputes []model.Dispute
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Preload("Report").
		Find(&disputes).Error; err != nil {
		return nil, err
	}
	return disputes, nil
}

func (r *DisputeRepository) CountByReportID(ctx context.Context, reportID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Dispute{}).
		Where("report_id = ?", reportID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type DisputeSummary struct {
	Count      int64
	LatestAt   time.Time
	LastReason string
}

// SummariesByReportIDs computes the per-report trust signal for a page of
// reports in one query instead of one count per row.
func (r *DisputeRepository) SummariesByReportIDs(ctx context.Context, ids []uint) (map[uint]DisputeSummary, error) {
	result := make(map[uint]DisputeSummary)
	if len(ids) == 0 {
		return result, nil
	}

	var disputes []model.Dispute
	if err := r.db.WithContext(ctx).
		Model(&model.Dispute{}).
		Where("report_id IN ?", ids).
		Order("report_id, created_at DESC").
		Find(&disputes).Error; err != nil {
		return nil, err
	}

	for _, dispute := range disputes {
		entry := result[dispute.ReportID]
		if entry.Count == 0 {
			entry.LatestAt = dispute.CreatedAt
			entry.LastReason = dispute.Reason
		}
		entry.Count++
		result[dispute.ReportID] = entry
	}

	return result, nil
}

func (r *DisputeRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Dispute{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
