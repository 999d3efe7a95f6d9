package ports

import (
	"context"

	"github.com/fortask/user-service/internal/core/domain"
)

// AuditRepository persists lifecycle events to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.UserEvent) error
}

// AuditService records a single lifecycle event.
type AuditService interface {
	Record(ctx context.Context, event domain.UserEvent) error
}

// AuditSink accepts events for asynchronous recording. Publish never blocks
// the caller on persistence.
type AuditSink interface {
	Publish(event domain.UserEvent)
}

// IdempotencyStore remembers which user an Idempotency-Key produced.
type IdempotencyStore interface {
	// Reserve claims key for id. When the key is already held it returns
	// false and the id stored by the first caller.
	Reserve(ctx context.Context, key, id string) (ok bool, existingID string, err error)
	Release(ctx context.Context, key string) error
}
