package service

import (
	"context"
	"log"

	"admission-gateway/internal/models"
	"admission-gateway/internal/override"
	"admission-gateway/internal/repository"
)

type OverrideService struct {
	store override.Store
	audit *repository.OverrideAuditRepository // nil when no database is wired
}

func NewOverrideService(store override.Store, audit *repository.OverrideAuditRepository) *OverrideService {
	return &OverrideService{
		store: store,
		audit: audit,
	}
}

// Applies an override flag and records an audit row when a database is wired
func (s *OverrideService) Apply(ctx context.Context, clientID string, enabled bool, requestID string) error {
	if err := s.store.Set(ctx, clientID, enabled); err != nil {
		return err
	}

	if s.audit != nil {
		row := &models.OverrideAudit{
			ClientID:  clientID,
			Override:  enabled,
			RequestID: requestID,
		}
		if err := s.audit.Create(ctx, row); err != nil {
			// The flag is already set; the audit trail is best effort.
			log.Printf("Failed to record override audit for %s: %v", clientID, err)
		}
	}

	return nil
}

// Lists every recorded flag
func (s *OverrideService) List(ctx context.Context) (map[string]bool, error) {
	return s.store.All(ctx)
}

// Lists recent audit rows, empty without a database
func (s *OverrideService) RecentAudits(ctx context.Context, limit int) ([]models.OverrideAudit, error) {
	if s.audit == nil {
		return nil, nil
	}

	return s.audit.ListRecent(ctx, limit)
}
