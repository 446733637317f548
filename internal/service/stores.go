package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workbridge/engagements/internal/model"
)

// Store interfaces consumed by the engine. The gorm implementations
// live in internal/repository; guarded mutations report whether the
// status guard matched so concurrent callers serialize on the row.

type MeetingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Meeting, error)
	MarkAwaitingDecision(ctx context.Context, id uuid.UUID) (bool, error)
	// ResolveAccept flips the meeting to its terminal accepted state and
	// creates the project in the same transaction.
	ResolveAccept(ctx context.Context, meetingID uuid.UUID, project *model.Project) (bool, error)
	ResolveReject(ctx context.Context, meetingID uuid.UUID) (bool, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	ListUpcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Meeting, error)
}

type ProjectStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListFor(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Project, error)
}

type MilestoneStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Milestone, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to model.MilestoneStatus) (bool, error)
	SumAmounts(ctx context.Context, projectID uuid.UUID) (float64, error)
}

type PaymentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	Create(ctx context.Context, payment *model.Payment) error
	MarkEscrowed(ctx context.Context, id uuid.UUID, holdRef string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
	// Release moves the payment to RELEASED and the milestone to APPROVED
	// in one transaction; false means one of the status guards did not
	// match and nothing was written.
	Release(ctx context.Context, paymentID, milestoneID uuid.UUID, description string, releasedAt time.Time) (bool, error)
	Refund(ctx context.Context, paymentID, milestoneID uuid.UUID, description string) (bool, error)
}

type VerificationStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.VerificationRecord, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
}

// PaymentGateway is the capture collaborator. All calls are idempotent
// per hold reference on the provider side.
type PaymentGateway interface {
	Authorize(ctx context.Context, amount float64, payerRef string) (string, error)
	Capture(ctx context.Context, holdRef string) (string, error)
	Refund(ctx context.Context, holdRef string) (string, error)
}
