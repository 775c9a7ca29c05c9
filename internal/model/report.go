package model

import (
	"time"

	"github.com/lib/pq"

	"disaster-report-service/internal/geo"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "PENDING"
	ReportStatusApproved ReportStatus = "APPROVED"
	ReportStatusRejected ReportStatus = "REJECTED"
)

type HandlingStatus string

const (
	HandlingStatusNotHandled HandlingStatus = "NOT_HANDLED"
	HandlingStatusHandled    HandlingStatus = "HANDLED"
)

type ReportSeverity string

const (
	ReportSeverityRingan ReportSeverity = "RINGAN"
	ReportSeveritySedang ReportSeverity = "SEDANG"
	ReportSeverityBerat  ReportSeverity = "BERAT"
)

func (s ReportSeverity) Valid() bool {
	switch s {
	case ReportSeverityRingan, ReportSeveritySedang, ReportSeverityBerat:
		return true
	}
	return false
}

type Report struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ReporterName string         `gorm:"type:varchar(255);not null" json:"reporter_name"`
	Contact      string         `gorm:"type:varchar(64);not null" json:"contact"`
	Village      string         `gorm:"type:varchar(255)" json:"village"`
	AssetName    string         `gorm:"type:varchar(255);not null" json:"asset_name"`
	DamageType   string         `gorm:"type:varchar(128);not null" json:"damage_type"`
	Severity     ReportSeverity `gorm:"type:report_severity;not null" json:"severity"`
	Description  string         `gorm:"type:text" json:"description"`
	Photos       pq.StringArray `gorm:"type:text[]" json:"photos"`
	Location     geo.Point      `gorm:"type:geometry(Point,4326);not null" json:"location"`

	Status         ReportStatus   `gorm:"type:report_status;not null;default:'PENDING'" json:"status"`
	HandlingStatus HandlingStatus `gorm:"type:handling_status;not null;default:'NOT_HANDLED'" json:"handling_status"`
	SubmittedAt    time.Time      `gorm:"not null" json:"submitted_at"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	ReviewedByID   *uint          `json:"reviewed_by_id"`
	ReviewNote     *string        `gorm:"type:text" json:"review_note"`
	AutoApproved   bool           `gorm:"not null;default:false" json:"auto_approved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Reviewer *User `gorm:"foreignKey:ReviewedByID" json:"reviewer,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
