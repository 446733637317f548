package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// GetOrCreate returns the user's verification record, inserting an
// all-unverified one on first query. The unique index on user_id makes
// the insert race-safe.
func (r *VerificationRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.VerificationRecord, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO verification_records (user_id)
		VALUES (?)
		ON CONFLICT (user_id) DO NOTHING
	`, userID).Error
	if err != nil {
		return nil, err
	}

	var record model.VerificationRecord
	err = r.db.WithContext(ctx).Raw(`
		SELECT id, user_id, id_verification, email_verified, phone_verified,
			portfolio_verified, background_check, updated_at
		FROM verification_records
		WHERE user_id = ?
	`, userID).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}
