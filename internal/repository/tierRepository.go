package repository

import (
	"context"

	"admission-gateway/internal/models"
	"admission-gateway/internal/storage"
	"gorm.io/gorm"
)

type TierRepository struct {
	db *storage.Postgres
}

func NewTierRepository(db *storage.Postgres) *TierRepository {
	return &TierRepository{db: db}
}

// Retrieves all tiers in match order
func (r *TierRepository) List(ctx context.Context) ([]models.RateLimitTier, error) {
	var tiers []models.RateLimitTier
	err := r.db.DB.WithContext(ctx).
		Order("position ASC").
		Find(&tiers).Error

	return tiers, err
}

// Inserts the given tiers only when the table is empty
func (r *TierRepository) SeedIfEmpty(ctx context.Context, tiers []models.RateLimitTier) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RateLimitTier{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&tiers).Error
	})
}
