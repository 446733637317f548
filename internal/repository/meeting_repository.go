package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
)

// errNoTransition marks a guarded update whose status predicate did not
// match any row; callers translate it to a false result.
var errNoTransition = errors.New("no matching row for transition")

type MeetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, freelancer_id, type, scheduled_at, duration_minutes,
			status, client_decision, notes, created_at
		FROM meetings
		WHERE id = ?
	`, id).Scan(&meeting).Error
	if err != nil {
		return nil, err
	}
	if meeting.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &meeting, nil
}

func (r *MeetingRepository) MarkAwaitingDecision(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE meetings
		SET status = 'AWAITING_CLIENT_DECISION', client_decision = 'PENDING'
		WHERE id = ? AND status = 'CONFIRMED'
	`, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResolveAccept applies the terminal accepted transition and inserts the
// project in one transaction, so neither is ever observed without the
// other.
func (r *MeetingRepository) ResolveAccept(ctx context.Context, meetingID uuid.UUID, project *model.Project) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE meetings
			SET status = 'COMPLETED', client_decision = 'ACCEPTED'
			WHERE id = ? AND status = 'AWAITING_CLIENT_DECISION'
		`, meetingID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNoTransition
		}

		return tx.Exec(`
			INSERT INTO projects (id, meeting_id, client_id, freelancer_id, title,
				description, total_amount, status, start_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, project.ID, project.MeetingID, project.ClientID, project.FreelancerID,
			project.Title, project.Description, project.TotalAmount,
			string(project.Status), project.StartDate, project.CreatedAt).Error
	})
	if errors.Is(err, errNoTransition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MeetingRepository) ResolveReject(ctx context.Context, meetingID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE meetings
		SET status = 'CANCELLED', client_decision = 'REJECTED'
		WHERE id = ? AND status = 'AWAITING_CLIENT_DECISION'
	`, meetingID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *MeetingRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	result := r.db.WithContext(ctx).Exec(`UPDATE meetings SET notes = ? WHERE id = ?`, notes, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MeetingRepository) ListUpcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Meeting, error) {
	var meetings []model.Meeting
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, freelancer_id, type, scheduled_at, duration_minutes,
			status, client_decision, notes, created_at
		FROM meetings
		WHERE (client_id = ? OR freelancer_id = ?)
			AND scheduled_at >= ? AND scheduled_at < ?
			AND status IN ('PENDING', 'CONFIRMED')
		ORDER BY scheduled_at ASC
	`, userID, userID, from, to).Scan(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}
