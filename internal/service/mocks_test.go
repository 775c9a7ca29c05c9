package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"disaster-report-service/internal/geo"
	"disaster-report-service/internal/model"
	"disaster-report-service/internal/repository"
)

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) Create(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportStore) GetByID(ctx context.Context, id uint) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportStore) List(ctx context.Context, filter repository.ReportFilter) ([]model.Report, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockReportStore) WithinRadius(ctx context.Context, lat, lng, radiusKm float64, statuses []model.ReportStatus) ([]repository.ReportDistance, error) {
	args := m.Called(ctx, lat, lng, radiusKm, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ReportDistance), args.Error(1)
}

func (m *MockReportStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) UpdateLocation(ctx context.Context, id uint, point geo.Point) (int64, error) {
	args := m.Called(ctx, id, point)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) ReviewIfPending(ctx context.Context, id uint, status model.ReportStatus, reviewerID uint, note *string, now time.Time) (int64, error) {
	args := m.Called(ctx, id, status, reviewerID, note, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) AutoApprovePending(ctx context.Context, cutoff, now time.Time, note string) (int64, error) {
	args := m.Called(ctx, cutoff, now, note)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) SetHandlingStatus(ctx context.Context, id uint, status model.HandlingStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportStore) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReportStore) LogStatusChange(ctx context.Context, logEntry *model.ReportStatusLog) error {
	args := m.Called(ctx, logEntry)
	return args.Error(0)
}

type MockDisputeStore struct {
	mock.Mock
}

func (m *MockDisputeStore) Create(ctx context.Context, dispute *model.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *MockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dispute), args.Error(1)
}

func (m *MockDisputeStore) ListByReportID(ctx context.Context, reportID uint) ([]model.Dispute, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dispute), args.Error(1)
}

func (m *MockDisputeStore) ListAll(ctx context.Context) ([]model.Dispute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dispute), args.Error(1)
}

func (m *MockDisputeStore) CountByReportID(ctx context.Context, reportID uint) (int64, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDisputeStore) SummariesByReportIDs(ctx context.Context, ids []uint) (map[uint]repository.DisputeSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]repository.DisputeSummary), args.Error(1)
}

func (m *MockDisputeStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
