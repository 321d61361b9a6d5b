package ports

import (
	"context"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
	// ListByEmail returns the most recent events for one email, newest first.
	ListByEmail(ctx context.Context, role domain.Role, email string, limit int) ([]*domain.AuthEvent, error)
}

// AuditService processes one audit event; called by the dispatcher workers.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// AuditRecorder is the fire-and-forget side the account service sees.
// Recording must never block or fail a login.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
