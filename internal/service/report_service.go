package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"disaster-report-service/internal/geo"
	"disaster-report-service/internal/geocode"
	"disaster-report-service/internal/model"
	"disaster-report-service/internal/repository"
)

const autoApproveNote = "auto-approved: no admin action within grace period"

type ReportService struct {
	reports          ReportStore
	disputes         DisputeStore
	geocoder         geocode.Resolver
	log              zerolog.Logger
	graceDays        int
	disputeThreshold int
	now              func() time.Time
}

func NewReportService(
	reports ReportStore,
	disputes DisputeStore,
	geocoder geocode.Resolver,
	log zerolog.Logger,
	loc *time.Location,
	graceDays int,
	disputeThreshold int,
) *ReportService {
	return &ReportService{
		reports:          reports,
		disputes:         disputes,
		geocoder:         geocoder,
		log:              log,
		graceDays:        graceDays,
		disputeThreshold: disputeThreshold,
		now:              func() time.Time { return time.Now().In(loc) },
	}
}

type CreateReportInput struct {
	ReporterName string
	Contact      string
	Village      string
	AssetName    string
	DamageType   string
	Severity     model.ReportSeverity
	Description  string
	Photos       []string
	Lat          float64
	Lng          float64
}

func (s *ReportService) Create(ctx context.Context, input CreateReportInput) (*model.ReportRecord, error) {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"reporter_name", input.ReporterName},
		{"contact", input.Contact},
		{"asset_name", input.AssetName},
		{"damage_type", input.DamageType},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, field.name)
		}
	}
	if !input.Severity.Valid() {
		return nil, fmt.Errorf("%w: severity must be one of RINGAN, SEDANG, BERAT", ErrInvalidInput)
	}
	if input.Photos == nil {
		return nil, fmt.Errorf("%w: photos is required", ErrInvalidInput)
	}

	point, err := geo.NewPoint(input.Lat, input.Lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	village := strings.TrimSpace(input.Village)
	if village == "" {
		village = s.reverseLookup(ctx, input.Lat, input.Lng)
	}

	report := &model.Report{
		ReporterName:   strings.TrimSpace(input.ReporterName),
		Contact:        strings.TrimSpace(input.Contact),
		Village:        village,
		AssetName:      strings.TrimSpace(input.AssetName),
		DamageType:     strings.TrimSpace(input.DamageType),
		Severity:       input.Severity,
		Description:    input.Description,
		Photos:         input.Photos,
		Location:       point,
		Status:         model.ReportStatusPending,
		HandlingStatus: model.HandlingStatusNotHandled,
		SubmittedAt:    s.now(),
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, storeErr(err)
	}

	record := s.buildRecord(*report, repository.DisputeSummary{})
	return &record, nil
}

// reverseLookup fills the village label best-effort. The geocoder is an
// external service; any failure just leaves the label empty.
func (s *ReportService) reverseLookup(ctx context.Context, lat, lng float64) string {
	label, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		s.log.Debug().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocoding failed")
		return ""
	}
	return label
}

func (s *ReportService) Get(ctx context.Context, id uint) (*model.ReportRecord, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	summaries, err := s.disputes.SummariesByReportIDs(ctx, []uint{report.ID})
	if err != nil {
		return nil, storeErr(err)
	}

	record := s.buildRecord(*report, summaries[report.ID])
	return &record, nil
}

// ListPublic is the citizen-facing listing: the auto-approve sweep runs
// first, then only APPROVED reports come back, newest submission first.
func (s *ReportService) ListPublic(ctx context.Context, limit, offset int) ([]model.ReportRecord, error) {
	s.AutoApproveSweep(ctx)

	reports, err := s.reports.List(ctx, repository.ReportFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, storeErr(err)
	}
	return s.buildRecords(ctx, reports)
}

type ListReportsOptions struct {
	Statuses   []model.ReportStatus
	IncludeAll bool
	Limit      int
	Offset     int
}

// ListModeration widens visibility to any status. Only the admin routes
// reach this path.
func (s *ReportService) ListModeration(ctx context.Context, opts ListReportsOptions) ([]model.ReportRecord, error) {
	reports, err := s.reports.List(ctx, repository.ReportFilter{
		Statuses:   opts.Statuses,
		IncludeAll: opts.IncludeAll,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return s.buildRecords(ctx, reports)
}

// Nearby returns approved reports within radiusKm of the center, closest
// first. Distance is computed on the spheroid by the store.
func (s *ReportService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]model.NearbyReport, error) {
	if _, err := geo.NewPoint(lat, lng); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius_km must be greater than zero", ErrInvalidInput)
	}

	s.AutoApproveSweep(ctx)

	rows, err := s.reports.WithinRadius(ctx, lat, lng, radiusKm, []model.ReportStatus{model.ReportStatusApproved})
	if err != nil {
		return nil, storeErr(err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Report.ID)
	}
	summaries, err := s.disputes.SummariesByReportIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}

	results := make([]model.NearbyReport, 0, len(rows))
	for _, row := range rows {
		results = append(results, model.NearbyReport{
			Record:     s.buildRecord(row.Report, summaries[row.Report.ID]),
			DistanceKm: row.DistanceKm,
		})
	}
	return results, nil
}

type UpdateReportInput struct {
	ReporterName *string
	Contact      *string
	Village      *string
	AssetName    *string
	DamageType   *string
	Severity     *model.ReportSeverity
	Description  *string
	Photos       []string
	Lat          *float64
	Lng          *float64
}

// Update applies a location change and/or descriptive-field changes. These
// are two separate writes against the store; if the second fails after the
// first succeeded the caller gets ErrPartialUpdate and can retry the
// remaining half, both halves being idempotent.
func (s *ReportService) Update(ctx context.Context, id uint, input UpdateReportInput) (*model.ReportRecord, error) {
	if (input.Lat == nil) != (input.Lng == nil) {
		return nil, fmt.Errorf("%w: lat and lng must be provided together", ErrInvalidInput)
	}

	fields, err := updateFieldMap(input)
	if err != nil {
		return nil, err
	}
	if input.Lat == nil && len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	locationApplied := false
	if input.Lat != nil {
		point, err := geo.NewPoint(*input.Lat, *input.Lng)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		rows, err := s.reports.UpdateLocation(ctx, id, point)
		if err != nil {
			return nil, storeErr(err)
		}
		if rows == 0 {
			return nil, ErrNotFound
		}
		locationApplied = true
	}

	if len(fields) > 0 {
		rows, err := s.reports.UpdateFields(ctx, id, fields)
		if err != nil {
			if locationApplied {
				return nil, fmt.Errorf("%w: location updated, descriptive fields were not: %v", ErrPartialUpdate, err)
			}
			return nil, storeErr(err)
		}
		if rows == 0 && !locationApplied {
			return nil, ErrNotFound
		}
	}

	return s.Get(ctx, id)
}

func updateFieldMap(input UpdateReportInput) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	setRequired := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, column)
		}
		fields[column] = trimmed
		return nil
	}

	if err := setRequired("reporter_name", input.ReporterName); err != nil {
		return nil, err
	}
	if err := setRequired("contact", input.Contact); err != nil {
		return nil, err
	}
	if err := setRequired("asset_name", input.AssetName); err != nil {
		return nil, err
	}
	if err := setRequired("damage_type", input.DamageType); err != nil {
		return nil, err
	}
	if input.Village != nil {
		fields["village"] = strings.TrimSpace(*input.Village)
	}
	if input.Severity != nil {
		if !input.Severity.Valid() {
			return nil, fmt.Errorf("%w: severity must be one of RINGAN, SEDANG, BERAT", ErrInvalidInput)
		}
		fields["severity"] = *input.Severity
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Photos != nil {
		fields["photos"] = pq.StringArray(input.Photos)
	}
	return fields, nil
}

// Review applies a manual moderation decision. The store-side status
// predicate is the arbiter when this races the sweep: exactly one wins,
// the loser observes zero rows and surfaces ErrInvalidTransition.
func (s *ReportService) Review(ctx context.Context, principal model.Principal, id uint, decision model.ReportStatus, note string) (*model.ReportRecord, error) {
	if decision != model.ReportStatusApproved && decision != model.ReportStatusRejected {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", ErrInvalidInput)
	}

	var notePtr *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		notePtr = &trimmed
	}

	rows, err := s.reports.ReviewIfPending(ctx, id, decision, principal.UserID, notePtr, s.now())
	if err != nil {
		return nil, storeErr(err)
	}
	if rows == 0 {
		if _, err := s.reports.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, storeErr(err)
		}
		return nil, ErrInvalidTransition
	}

	oldStatus := model.ReportStatusPending
	if err := s.reports.LogStatusChange(ctx, &model.ReportStatusLog{
		ReportID:  id,
		OldStatus: &oldStatus,
		NewStatus: decision,
		Note:      note,
		ChangedBy: &principal.UserID,
	}); err != nil {
		return nil, storeErr(err)
	}

	return s.Get(ctx, id)
}

func (s *ReportService) SetHandlingStatus(ctx context.Context, id uint, status model.HandlingStatus) error {
	if status != model.HandlingStatusNotHandled && status != model.HandlingStatusHandled {
		return fmt.Errorf("%w: handling_status must be NOT_HANDLED or HANDLED", ErrInvalidInput)
	}
	rows, err := s.reports.SetHandlingStatus(ctx, id, status)
	if err != nil {
		return storeErr(err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReportService) Delete(ctx context.Context, id uint) error {
	if err := s.reports.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storeErr(err)
	}
	return nil
}

// AutoApproveSweep transitions every report still PENDING past the grace
// cutoff. It runs opportunistically on public read paths, so a store fault
// is reported as zero rows and logged rather than failing the read that
// triggered it; the next read retries.
func (s *ReportService) AutoApproveSweep(ctx context.Context) int64 {
	now := s.now()
	cutoff := now.AddDate(0, 0, -s.graceDays)
	rows, err := s.reports.AutoApprovePending(ctx, cutoff, now, autoApproveNote)
	if err != nil {
		s.log.Warn().Err(err).Msg("auto-approve sweep failed")
		return 0
	}
	if rows > 0 {
		s.log.Info().Int64("count", rows).Msg("auto-approved pending reports")
	}
	return rows
}

func (s *ReportService) buildRecords(ctx context.Context, reports []model.Report) ([]model.ReportRecord, error) {
	ids := make([]uint, 0, len(reports))
	for _, report := range reports {
		ids = append(ids, report.ID)
	}
	summaries, err := s.disputes.SummariesByReportIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}

	records := make([]model.ReportRecord, 0, len(reports))
	for _, report := range reports {
		records = append(records, s.buildRecord(report, summaries[report.ID]))
	}
	return records, nil
}

func (s *ReportService) buildRecord(report model.Report, summary repository.DisputeSummary) model.ReportRecord {
	record := model.ReportRecord{
		Report:              report,
		Coordinate:          geo.Coordinate{Lat: report.Location.Lat, Lng: report.Location.Lng},
		DisputeCount:        summary.Count,
		NeedsReverification: summary.Count > int64(s.disputeThreshold),
	}
	if summary.Count > 0 {
		latest := summary.LatestAt
		record.LastDisputeAt = &latest
	}
	if report.Reviewer != nil {
		record.Reviewer = &model.ReviewerBrief{
			ID:   report.Reviewer.ID,
			Name: report.Reviewer.Name,
		}
	}
	return record
}
