package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dispute is a third-party claim that a published report is wrong. Rows are
// written once and never updated; they disappear only when the parent
// report is deleted or an administrator removes them.
type Dispute struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ReportID     uint      `gorm:"not null" json:"report_id"`
	Reason       string    `gorm:"type:text;not null" json:"reason"`
	ReporterName string    `gorm:"type:varchar(255)" json:"reporter_name"`
	Contact      string    `gorm:"type:varchar(64)" json:"contact"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Report *Report `gorm:"foreignKey:ReportID" json:"report,omitempty"`
}

func (Dispute) TableName() string {
	return "report_disputes"
}

func (d *Dispute) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
