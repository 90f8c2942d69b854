package repository

import (
	"context"

	"admission-gateway/internal/models"
	"admission-gateway/internal/storage"
)

type OverrideAuditRepository struct {
	db *storage.Postgres
}

func NewOverrideAuditRepository(db *storage.Postgres) *OverrideAuditRepository {
	return &OverrideAuditRepository{db: db}
}

// Inserts one audit row per applied override
func (r *OverrideAuditRepository) Create(ctx context.Context, audit *models.OverrideAudit) error {
	return r.db.DB.WithContext(ctx).Create(audit).Error
}

// Retrieves the most recent audit rows, newest first
func (r *OverrideAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.OverrideAudit, error) {
	var audits []models.OverrideAudit
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error

	return audits, err
}
