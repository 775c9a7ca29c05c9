package model

import (
	"time"

	"disaster-report-service/internal/geo"
)

type ReviewerBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ReportRecord is the read model handed to the HTTP layer: the report with
// its location decoded to lat/lng and the dispute trust signal computed at
// read time.
type ReportRecord struct {
	Report              Report         `json:"report"`
	Coordinate          geo.Coordinate `json:"coordinate"`
	Reviewer            *ReviewerBrief `json:"reviewer"`
	DisputeCount        int64          `json:"dispute_count"`
	LastDisputeAt       *time.Time     `json:"last_dispute_at"`
	NeedsReverification bool           `json:"needs_reverification"`
}

// NearbyReport pairs a record with its great-circle distance from the
// query center, as computed by the store.
type NearbyReport struct {
	Record     ReportRecord `json:"record"`
	DistanceKm float64      `json:"distance_km"`
}

// DisputeGroup is the moderation view of all disputes against one report,
// re-derived from the dispute rows on every read.
type DisputeGroup struct {
	ReportID      uint      `json:"report_id"`
	Report        *Report   `json:"report"`
	Disputes      []Dispute `json:"disputes"`
	LatestDispute time.Time `json:"latest_dispute_at"`
}
