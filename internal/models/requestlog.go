package models

import (
	"time"
)

// Represents one admission decision, batched into Postgres for analytics
type RequestLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Timestamp       time.Time `gorm:"index" json:"timestamp"`
	IdentifierClass string    `gorm:"index" json:"identifier_class"` // "token" or "address"
	Tier            string    `gorm:"index" json:"tier"`
	Outcome         string    `gorm:"index" json:"outcome"` // admitted, denied, bypassed, no_identity, failed
	Method          string    `json:"method"`
	Path            string    `json:"path"`
	StatusCode      int       `gorm:"index" json:"status_code"`
	ResponseTimeMs  int       `json:"response_time_ms"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}
