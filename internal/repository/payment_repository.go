package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, milestone_id, meeting_id, client_id, freelancer_id,
			amount, status, hold_ref, description, released_at, created_at
		FROM payments
		WHERE id = ?
	`, id).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO payments (id, project_id, milestone_id, meeting_id, client_id,
			freelancer_id, amount, status, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, payment.ID, payment.ProjectID, payment.MilestoneID, payment.MeetingID,
		payment.ClientID, payment.FreelancerID, payment.Amount,
		string(payment.Status), payment.Description, payment.CreatedAt).Error
}

func (r *PaymentRepository) MarkEscrowed(ctx context.Context, id uuid.UUID, holdRef string) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE payments SET status = 'ESCROWED', hold_ref = ?
		WHERE id = ? AND status = 'PENDING'
	`, holdRef, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE payments SET status = 'FAILED' WHERE id = ? AND status = 'PENDING'
	`, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release settles the payment and approves its milestone in one
// transaction. Both updates are status-guarded; when either guard
// misses the whole transaction rolls back, so a concurrent caller can
// never observe a half-settled pair.
func (r *PaymentRepository) Release(ctx context.Context, paymentID, milestoneID uuid.UUID, description string, releasedAt time.Time) (bool, error) {
	return r.settle(ctx, settlement{
		paymentID:   paymentID,
		milestoneID: milestoneID,
		description: description,
		paymentSQL: `
			UPDATE payments
			SET status = 'RELEASED', released_at = ?, description = ?
			WHERE id = ? AND status = 'ESCROWED'
		`,
		paymentArgs:     []interface{}{releasedAt, description, paymentID},
		milestoneStatus: "APPROVED",
	})
}

func (r *PaymentRepository) Refund(ctx context.Context, paymentID, milestoneID uuid.UUID, description string) (bool, error) {
	return r.settle(ctx, settlement{
		paymentID:   paymentID,
		milestoneID: milestoneID,
		description: description,
		paymentSQL: `
			UPDATE payments
			SET status = 'REFUNDED', description = ?
			WHERE id = ? AND status = 'ESCROWED'
		`,
		paymentArgs:     []interface{}{description, paymentID},
		milestoneStatus: "REJECTED",
	})
}

type settlement struct {
	paymentID       uuid.UUID
	milestoneID     uuid.UUID
	description     string
	paymentSQL      string
	paymentArgs     []interface{}
	milestoneStatus string
}

func (r *PaymentRepository) settle(ctx context.Context, s settlement) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(s.paymentSQL, s.paymentArgs...)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNoTransition
		}

		result = tx.Exec(`
			UPDATE milestones SET status = ? WHERE id = ? AND status = 'COMPLETED'
		`, s.milestoneStatus, s.milestoneID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNoTransition
		}
		return nil
	})
	if errors.Is(err, errNoTransition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
