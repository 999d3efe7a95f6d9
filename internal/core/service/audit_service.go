package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that writes to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record validates and persists a single lifecycle event.
func (s *auditService) Record(ctx context.Context, event domain.UserEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("record event: %w: missing user id", domain.ErrInvalidPayload)
	}
	switch event.Kind {
	case domain.EventCreated, domain.EventLogin, domain.EventUpdated, domain.EventDeleted:
	default:
		return fmt.Errorf("record event: %w: unknown kind %q", domain.ErrInvalidPayload, event.Kind)
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("user_id", event.UserID).
		Str("kind", string(event.Kind)).
		Str("actor", event.Actor).
		Msg("audit event recorded")

	return nil
}
