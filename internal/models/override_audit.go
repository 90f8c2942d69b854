package models

import (
	"time"
)

// Records every override mutation applied through the admin pipeline
type OverrideAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  string    `gorm:"index;not null" json:"client_id"`
	Override  bool      `gorm:"not null" json:"override"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (OverrideAudit) TableName() string {
	return "override_audits"
}
