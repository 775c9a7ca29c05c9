package service

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"disaster-report-service/internal/geocode"
	"disaster-report-service/internal/model"
	"disaster-report-service/internal/repository"
)

var testZone = time.FixedZone("WIB", 7*3600)

func newTestReportService(reports *MockReportStore, disputes *MockDisputeStore, now time.Time) *ReportService {
	svc := NewReportService(reports, disputes, geocode.Noop{}, zerolog.Nop(), testZone, 3, 3)
	svc.now = func() time.Time { return now }
	return svc
}

func validCreateInput() CreateReportInput {
	return CreateReportInput{
		ReporterName: "Budi Santoso",
		Contact:      "081234567890",
		Village:      "Lampuuk",
		AssetName:    "Jembatan Desa",
		DamageType:   "Banjir",
		Severity:     model.ReportSeveritySedang,
		Description:  "Jembatan putus diterjang banjir",
		Photos:       []string{"uploads/a.jpg", "uploads/b.jpg"},
		Lat:          5.5483,
		Lng:          95.3238,
	}
}

func TestCreateReport_SetsPendingDefaults(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, disputes, now)

	reports.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Report) bool {
		return r.Status == model.ReportStatusPending &&
			r.HandlingStatus == model.HandlingStatusNotHandled &&
			!r.AutoApproved &&
			r.ReviewedAt == nil &&
			r.SubmittedAt.Equal(now)
	})).Return(nil)

	record, err := svc.Create(context.Background(), validCreateInput())

	assert.NoError(t, err)
	assert.Equal(t, model.ReportStatusPending, record.Report.Status)
	assert.InDelta(t, 5.5483, record.Coordinate.Lat, 1e-9)
	assert.InDelta(t, 95.3238, record.Coordinate.Lng, 1e-9)
	reports.AssertExpectations(t)
}

func TestCreateReport_MissingFieldNamesField(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	input := validCreateInput()
	input.DamageType = "   "

	_, err := svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "damage_type")
}

func TestCreateReport_InvalidSeverity(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	input := validCreateInput()
	input.Severity = "PARAH"

	_, err := svc.Create(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "severity")
}

func TestCreateReport_OutOfRangeCoordinates(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	for _, tc := range []struct{ lat, lng float64 }{
		{91, 0},
		{0, 181},
		{-90.5, 95},
	} {
		input := validCreateInput()
		input.Lat = tc.lat
		input.Lng = tc.lng

		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestReview_InvalidDecision(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	_, err := svc.Review(context.Background(), model.Principal{UserID: 7}, 1, model.ReportStatusPending, "")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReview_AlreadyTerminal(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, disputes, now)

	reviewer := uint(9)
	reports.On("ReviewIfPending", mock.Anything, uint(3), model.ReportStatusApproved, uint(7), (*string)(nil), now).
		Return(int64(0), nil)
	reports.On("GetByID", mock.Anything, uint(3)).
		Return(&model.Report{ID: 3, Status: model.ReportStatusApproved, ReviewedByID: &reviewer}, nil)

	_, err := svc.Review(context.Background(), model.Principal{UserID: 7}, 3, model.ReportStatusApproved, "")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	reports.AssertNotCalled(t, "LogStatusChange", mock.Anything, mock.Anything)
}

func TestReview_NotFound(t *testing.T) {
	reports := new(MockReportStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, new(MockDisputeStore), now)

	reports.On("ReviewIfPending", mock.Anything, uint(42), model.ReportStatusRejected, uint(7), mock.Anything, now).
		Return(int64(0), nil)
	reports.On("GetByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Review(context.Background(), model.Principal{UserID: 7}, 42, model.ReportStatusRejected, "foto tidak jelas")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReview_Success(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, disputes, now)

	note := "terverifikasi di lokasi"
	reports.On("ReviewIfPending", mock.Anything, uint(5), model.ReportStatusApproved, uint(7), &note, now).
		Return(int64(1), nil)
	reports.On("LogStatusChange", mock.Anything, mock.MatchedBy(func(l *model.ReportStatusLog) bool {
		return l.ReportID == 5 &&
			l.NewStatus == model.ReportStatusApproved &&
			l.OldStatus != nil && *l.OldStatus == model.ReportStatusPending &&
			l.ChangedBy != nil && *l.ChangedBy == 7
	})).Return(nil)

	reviewer := uint(7)
	reports.On("GetByID", mock.Anything, uint(5)).Return(&model.Report{
		ID:           5,
		Status:       model.ReportStatusApproved,
		ReviewedAt:   &now,
		ReviewedByID: &reviewer,
	}, nil)
	disputes.On("SummariesByReportIDs", mock.Anything, []uint{5}).
		Return(map[uint]repository.DisputeSummary{}, nil)

	record, err := svc.Review(context.Background(), model.Principal{UserID: 7}, 5, model.ReportStatusApproved, note)

	assert.NoError(t, err)
	assert.Equal(t, model.ReportStatusApproved, record.Report.Status)
	reports.AssertExpectations(t)
}

func TestAutoApproveSweep_UsesGraceCutoff(t *testing.T) {
	reports := new(MockReportStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, new(MockDisputeStore), now)

	cutoff := now.AddDate(0, 0, -3)
	reports.On("AutoApprovePending", mock.Anything, cutoff, now, autoApproveNote).
		Return(int64(2), nil)

	count := svc.AutoApproveSweep(context.Background())

	assert.Equal(t, int64(2), count)
	reports.AssertExpectations(t)
}

func TestAutoApproveSweep_StoreFaultReturnsZero(t *testing.T) {
	reports := new(MockReportStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, new(MockDisputeStore), now)

	reports.On("AutoApprovePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("connection refused"))

	count := svc.AutoApproveSweep(context.Background())

	assert.Equal(t, int64(0), count)
}

func TestListPublic_SweepsThenListsApprovedOnly(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, disputes, now)

	reports.On("AutoApprovePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(1), nil)
	reports.On("List", mock.Anything, repository.ReportFilter{Limit: 20}).
		Return([]model.Report{
			{ID: 2, Status: model.ReportStatusApproved},
			{ID: 1, Status: model.ReportStatusApproved},
		}, nil)
	disputes.On("SummariesByReportIDs", mock.Anything, []uint{2, 1}).
		Return(map[uint]repository.DisputeSummary{
			2: {Count: 4, LatestAt: now},
			1: {Count: 3, LatestAt: now},
		}, nil)

	records, err := svc.ListPublic(context.Background(), 20, 0)

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(4), records[0].DisputeCount)
	assert.True(t, records[0].NeedsReverification, "above threshold")
	assert.False(t, records[1].NeedsReverification, "at threshold, not above")
	reports.AssertExpectations(t)
}

func TestUpdate_LatWithoutLng(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	lat := 5.5
	_, err := svc.Update(context.Background(), 1, UpdateReportInput{Lat: &lat})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_NothingToUpdate(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	_, err := svc.Update(context.Background(), 1, UpdateReportInput{})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_PartialFailureAfterLocationWrite(t *testing.T) {
	reports := new(MockReportStore)
	svc := newTestReportService(reports, new(MockDisputeStore), time.Now())

	reports.On("UpdateLocation", mock.Anything, uint(4), mock.Anything).
		Return(int64(1), nil)
	reports.On("UpdateFields", mock.Anything, uint(4), mock.Anything).
		Return(int64(0), errors.New("connection reset"))

	lat, lng := 5.55, 95.32
	desc := "updated description"
	_, err := svc.Update(context.Background(), 4, UpdateReportInput{
		Lat:         &lat,
		Lng:         &lng,
		Description: &desc,
	})

	assert.ErrorIs(t, err, ErrPartialUpdate)
}

func TestUpdate_LocationOnlyNotFound(t *testing.T) {
	reports := new(MockReportStore)
	svc := newTestReportService(reports, new(MockDisputeStore), time.Now())

	reports.On("UpdateLocation", mock.Anything, uint(99), mock.Anything).
		Return(int64(0), nil)

	lat, lng := 5.55, 95.32
	_, err := svc.Update(context.Background(), 99, UpdateReportInput{Lat: &lat, Lng: &lng})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNearby_RejectsNonPositiveRadius(t *testing.T) {
	svc := newTestReportService(new(MockReportStore), new(MockDisputeStore), time.Now())

	_, err := svc.Nearby(context.Background(), 5.5483, 95.3238, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Nearby(context.Background(), 5.5483, 95.3238, -2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNearby_OrdersByStoreDistance(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, testZone)
	svc := newTestReportService(reports, disputes, now)

	reports.On("AutoApprovePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), nil)
	reports.On("WithinRadius", mock.Anything, 5.5483, 95.3238, 5.0, []model.ReportStatus{model.ReportStatusApproved}).
		Return([]repository.ReportDistance{
			{Report: model.Report{ID: 1, Status: model.ReportStatusApproved}, DistanceKm: 0.8},
			{Report: model.Report{ID: 2, Status: model.ReportStatusApproved}, DistanceKm: 4.2},
		}, nil)
	disputes.On("SummariesByReportIDs", mock.Anything, []uint{1, 2}).
		Return(map[uint]repository.DisputeSummary{}, nil)

	results, err := svc.Nearby(context.Background(), 5.5483, 95.3238, 5)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, uint(1), results[0].Record.Report.ID)
	assert.Less(t, results[0].DistanceKm, results[1].DistanceKm)
}

func TestSetHandlingStatus(t *testing.T) {
	reports := new(MockReportStore)
	svc := newTestReportService(reports, new(MockDisputeStore), time.Now())

	reports.On("SetHandlingStatus", mock.Anything, uint(1), model.HandlingStatusHandled).
		Return(int64(1), nil)

	assert.NoError(t, svc.SetHandlingStatus(context.Background(), 1, model.HandlingStatusHandled))

	err := svc.SetHandlingStatus(context.Background(), 1, "DONE")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetHandlingStatus_NotFound(t *testing.T) {
	reports := new(MockReportStore)
	svc := newTestReportService(reports, new(MockDisputeStore), time.Now())

	reports.On("SetHandlingStatus", mock.Anything, uint(404), model.HandlingStatusHandled).
		Return(int64(0), nil)

	err := svc.SetHandlingStatus(context.Background(), 404, model.HandlingStatusHandled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	reports := new(MockReportStore)
	svc := newTestReportService(reports, new(MockDisputeStore), time.Now())

	reports.On("DeleteCascade", mock.Anything, uint(404)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ConnectionFaultIsUnavailable(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	svc := newTestReportService(reports, disputes, time.Date(2024, 5, 10, 14, 0, 0, 0, testZone))

	connErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	reports.On("GetByID", mock.Anything, uint(7)).Return(nil, connErr)

	_, err := svc.Get(context.Background(), 7)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestGet_RowFaultStaysOpaque(t *testing.T) {
	reports := new(MockReportStore)
	disputes := new(MockDisputeStore)
	svc := newTestReportService(reports, disputes, time.Date(2024, 5, 10, 14, 0, 0, 0, testZone))

	rowErr := errors.New("invalid input syntax")
	reports.On("GetByID", mock.Anything, uint(7)).Return(nil, rowErr)

	_, err := svc.Get(context.Background(), 7)

	assert.ErrorIs(t, err, rowErr)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}
