package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO notifications (id, recipient_id, title, message, type, data, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, notification.ID, notification.RecipientID, notification.Title,
		notification.Message, notification.Type, notification.Data,
		notification.IsRead, notification.CreatedAt).Error
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, recipient_id, title, message, type, data, is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
	`, recipientID).Scan(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE notifications SET is_read = TRUE WHERE id = ? AND recipient_id = ?
	`, id, recipientID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM notifications WHERE id = ? AND recipient_id = ?
	`, id, recipientID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
