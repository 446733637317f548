package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/workbridge/engagements/internal/model"
)

// NotificationService is the recipient-facing read model over the
// append-only notification feed.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) List(ctx context.Context, principal model.Principal) ([]model.Notification, error) {
	return s.store.ListByRecipient(ctx, principal.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	updated, err := s.store.MarkRead(ctx, id, principal.UserID)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, id, principal.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return nil
}
