package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatusLog records each manual moderation transition. Auto-approvals
// carry their provenance on the report row itself (auto_approved flag plus
// the fixed review note), so the sweep does not write here.
type ReportStatusLog struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ReportID  uint          `gorm:"not null" json:"report_id"`
	OldStatus *ReportStatus `gorm:"type:report_status" json:"old_status"`
	NewStatus ReportStatus  `gorm:"type:report_status;not null" json:"new_status"`
	Note      string        `gorm:"type:text" json:"note"`
	ChangedBy *uint         `json:"changed_by"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (ReportStatusLog) TableName() string {
	return "report_status_log"
}

func (l *ReportStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
