package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"disaster-report-service/internal/model"
)

type DisputeService struct {
	disputes DisputeStore
	reports  ReportStore
	now      func() time.Time
}

func NewDisputeService(disputes DisputeStore, reports ReportStore, loc *time.Location) *DisputeService {
	return &DisputeService{
		disputes: disputes,
		reports:  reports,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

type SubmitDisputeInput struct {
	Reason       string
	ReporterName string
	Contact      string
}

// Submit records an "invalid report" flag against an existing report. It
// never touches the report's own status.
func (s *DisputeService) Submit(ctx context.Context, reportID uint, input SubmitDisputeInput) (*model.Dispute, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	dispute := &model.Dispute{
		ReportID:     reportID,
		Reason:       reason,
		ReporterName: strings.TrimSpace(input.ReporterName),
		Contact:      strings.TrimSpace(input.Contact),
		CreatedAt:    s.now(),
	}

	if err := s.disputes.Create(ctx, dispute); err != nil {
		// The report may have been deleted while this submission was in
		// flight; the broken foreign key is reported as a missing target.
		if _, getErr := s.reports.GetByID(ctx, reportID); errors.Is(getErr, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	return dispute, nil
}

func (s *DisputeService) ListForReport(ctx context.Context, reportID uint) ([]model.Dispute, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}
	disputes, err := s.disputes.ListByReportID(ctx, reportID)
	return disputes, storeErr(err)
}

func (s *DisputeService) ListAll(ctx context.Context) ([]model.Dispute, error) {
	disputes, err := s.disputes.ListAll(ctx)
	return disputes, storeErr(err)
}

// Grouped returns the moderation view: disputes bucketed per report,
// reports with the most recent dispute first. The grouping is re-derived
// from the rows on every call, never stored.
func (s *DisputeService) Grouped(ctx context.Context) ([]model.DisputeGroup, error) {
	disputes, err := s.disputes.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return GroupByReport(disputes), nil
}

func (s *DisputeService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.disputes.Delete(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GroupByReport buckets disputes by their report and sorts the buckets by
// latest dispute instant, descending. Pure over its input.
func GroupByReport(disputes []model.Dispute) []model.DisputeGroup {
	index := make(map[uint]int)
	groups := make([]model.DisputeGroup, 0)

	for _, dispute := range disputes {
		pos, ok := index[dispute.ReportID]
		if !ok {
			pos = len(groups)
			index[dispute.ReportID] = pos
			groups = append(groups, model.DisputeGroup{ReportID: dispute.ReportID})
		}
		group := &groups[pos]
		if group.Report == nil && dispute.Report != nil {
			group.Report = dispute.Report
		}
		if dispute.CreatedAt.After(group.LatestDispute) {
			group.LatestDispute = dispute.CreatedAt
		}
		stripped := dispute
		stripped.Report = nil
		group.Disputes = append(group.Disputes, stripped)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LatestDispute.After(groups[j].LatestDispute)
	})
	return groups
}
