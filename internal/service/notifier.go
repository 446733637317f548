package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/workbridge/engagements/internal/model"
)

// Notifier is the best-effort user alert sink. Emit is called after the
// primary transaction has been applied; a failed emit never affects the
// outcome of the operation that triggered it.
type Notifier interface {
	Emit(ctx context.Context, recipientID uuid.UUID, title, message, notificationType string, data datatypes.JSON)
}

type storeNotifier struct {
	store NotificationStore
	log   zerolog.Logger
}

func NewNotifier(store NotificationStore, log zerolog.Logger) Notifier {
	return &storeNotifier{store: store, log: log}
}

func (n *storeNotifier) Emit(ctx context.Context, recipientID uuid.UUID, title, message, notificationType string, data datatypes.JSON) {
	notification := &model.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Type:        notificationType,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := n.store.Create(ctx, notification); err != nil {
		n.log.Warn().Err(err).
			Str("recipient_id", recipientID.String()).
			Str("type", notificationType).
			Msg("dropping notification")
	}
}
