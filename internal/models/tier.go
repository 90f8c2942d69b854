package models

type RateLimitTier struct {
	Name        string `gorm:"primaryKey" json:"name"`
	Prefix      string `gorm:"index" json:"prefix"` // identifier prefix; empty marks the base tier
	WindowMS    int    `gorm:"not null" json:"window_ms"`
	MaxRequests int    `gorm:"not null" json:"max_requests"`
	Position    int    `gorm:"not null;default:0" json:"position"` // match order, ascending
}

func (RateLimitTier) TableName() string {
	return "rate_limit_tiers"
}
