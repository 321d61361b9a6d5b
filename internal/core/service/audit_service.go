package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feirahub/marketplace-api/internal/api/metrics"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists one event per call.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		metrics.AuditErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("audit insert: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("role", event.Role.String()).
		Msg("audit event recorded")
	return nil
}
