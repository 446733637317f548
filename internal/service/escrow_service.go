package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
	"github.com/workbridge/engagements/internal/workflow"
)

// ReceiptGenerator renders the release receipt for a settled payment.
type ReceiptGenerator interface {
	Generate(payment model.Payment, project *model.Project) ([]byte, error)
}

type EscrowService struct {
	payments      PaymentStore
	milestones    MilestoneStore
	projects      ProjectStore
	meetings      MeetingStore
	gateway       PaymentGateway
	notifier      Notifier
	receipts      ReceiptGenerator
	payFlow       workflow.Transitions[model.PaymentStatus]
	milestoneFlow workflow.Transitions[model.MilestoneStatus]
	now           func() time.Time
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

func NewEscrowService(
	payments PaymentStore,
	milestones MilestoneStore,
	projects ProjectStore,
	meetings MeetingStore,
	gateway PaymentGateway,
	notifier Notifier,
	receipts ReceiptGenerator,
) *EscrowService {
	return &EscrowService{
		payments:      payments,
		milestones:    milestones,
		projects:      projects,
		meetings:      meetings,
		gateway:       gateway,
		notifier:      notifier,
		receipts:      receipts,
		payFlow:       workflow.Payments(),
		milestoneFlow: workflow.Milestones(),
		now:           time.Now,
	}
}

// FundMilestone creates the payment record and asks the gateway to hold
// the client's funds. A gateway failure marks the payment FAILED and is
// surfaced; the engine never retries.
func (s *EscrowService) FundMilestone(ctx context.Context, principal model.Principal, milestoneID uuid.UUID, amount float64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	milestone, err := s.milestones.Get(ctx, milestoneID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
		}
		return nil, err
	}
	project, err := s.projects.Get(ctx, milestone.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != principal.UserID && project.FreelancerID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	// Milestone amounts may not outgrow the agreed project budget.
	total, err := s.milestones.SumAmounts(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if total > project.TotalAmount {
		return nil, fmt.Errorf("%w: milestone amounts %.2f exceed project budget %.2f", ErrInvalidInput, total, project.TotalAmount)
	}

	payment := &model.Payment{
		ID:           uuid.New(),
		ProjectID:    &project.ID,
		MilestoneID:  &milestone.ID,
		ClientID:     project.ClientID,
		FreelancerID: project.FreelancerID,
		Amount:       amount,
		Status:       model.PaymentStatusPending,
		Description:  fmt.Sprintf("Escrow for milestone %q", milestone.Title),
		CreatedAt:    s.now().UTC(),
	}
	return s.fund(ctx, payment, project.FreelancerID)
}

// FundMeeting holds funds for an ad-hoc meeting payment with no
// milestone attached.
func (s *EscrowService) FundMeeting(ctx context.Context, principal model.Principal, meetingID uuid.UUID, amount float64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	meeting, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: meeting %s", ErrNotFound, meetingID)
		}
		return nil, err
	}
	if !meeting.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}

	payment := &model.Payment{
		ID:           uuid.New(),
		MeetingID:    &meeting.ID,
		ClientID:     meeting.ClientID,
		FreelancerID: meeting.FreelancerID,
		Amount:       amount,
		Status:       model.PaymentStatusPending,
		Description:  "Meeting payment",
		CreatedAt:    s.now().UTC(),
	}
	return s.fund(ctx, payment, meeting.FreelancerID)
}

func (s *EscrowService) fund(ctx context.Context, payment *model.Payment, freelancerID uuid.UUID) (*model.Payment, error) {
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	holdRef, err := s.gateway.Authorize(ctx, payment.Amount, payment.ClientID.String())
	if err != nil {
		if _, markErr := s.payments.MarkFailed(ctx, payment.ID); markErr != nil {
			return nil, markErr
		}
		payment.Status = model.PaymentStatusFailed
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	escrowed, err := s.payments.MarkEscrowed(ctx, payment.ID, holdRef)
	if err != nil {
		return nil, err
	}
	if !escrowed {
		return nil, fmt.Errorf("%w: payment is no longer pending", ErrPreconditionFailed)
	}
	payment.Status = model.PaymentStatusEscrowed
	payment.HoldRef = &holdRef

	s.notifier.Emit(ctx, freelancerID,
		"Escrow funded",
		fmt.Sprintf("%.2f has been placed in escrow.", payment.Amount),
		model.NotificationTypeEscrowFunded, nil)
	return payment, nil
}

// ReleaseEscrow captures the held funds and settles the milestone. The
// capture happens first; only after it succeeds are the payment and
// milestone flipped, in one transaction. A concurrent caller losing the
// status guard gets ErrPreconditionFailed and nothing is written twice.
func (s *EscrowService) ReleaseEscrow(ctx context.Context, principal model.Principal, paymentID, milestoneID uuid.UUID, feedback string) (*model.Payment, error) {
	payment, milestone, err := s.settlementPair(ctx, principal, paymentID, milestoneID,
		model.PaymentStatusReleased, model.MilestoneStatusApproved)
	if err != nil {
		return nil, err
	}

	if _, err := s.gateway.Capture(ctx, *payment.HoldRef); err != nil {
		return nil, fmt.Errorf("%w: capture: %v", ErrGateway, err)
	}

	description := payment.Description
	if feedback != "" {
		description = fmt.Sprintf("%s\nClient feedback: %s", description, feedback)
	}
	releasedAt := s.now().UTC()

	released, err := s.payments.Release(ctx, payment.ID, milestone.ID, description, releasedAt)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, fmt.Errorf("%w: payment already settled", ErrPreconditionFailed)
	}

	payment.Status = model.PaymentStatusReleased
	payment.ReleasedAt = &releasedAt
	payment.Description = description

	s.notifier.Emit(ctx, payment.FreelancerID,
		"Payment released",
		fmt.Sprintf("%.2f was released for milestone %q.", payment.Amount, milestone.Title),
		model.NotificationTypePaymentReleased, nil)
	return payment, nil
}

// RejectMilestone is the symmetric path: the client declines the
// completed work, the hold is refunded and the milestone closed as
// rejected.
func (s *EscrowService) RejectMilestone(ctx context.Context, principal model.Principal, paymentID, milestoneID uuid.UUID, feedback string) (*model.Payment, error) {
	payment, milestone, err := s.settlementPair(ctx, principal, paymentID, milestoneID,
		model.PaymentStatusRefunded, model.MilestoneStatusRejected)
	if err != nil {
		return nil, err
	}

	if _, err := s.gateway.Refund(ctx, *payment.HoldRef); err != nil {
		return nil, fmt.Errorf("%w: refund: %v", ErrGateway, err)
	}

	description := payment.Description
	if feedback != "" {
		description = fmt.Sprintf("%s\nClient feedback: %s", description, feedback)
	}

	refunded, err := s.payments.Refund(ctx, payment.ID, milestone.ID, description)
	if err != nil {
		return nil, err
	}
	if !refunded {
		return nil, fmt.Errorf("%w: payment already settled", ErrPreconditionFailed)
	}

	payment.Status = model.PaymentStatusRefunded
	payment.Description = description

	s.notifier.Emit(ctx, payment.FreelancerID,
		"Milestone rejected",
		fmt.Sprintf("The client rejected milestone %q; the escrowed %.2f was refunded.", milestone.Title, payment.Amount),
		model.NotificationTypeMilestoneRejected, nil)
	return payment, nil
}

// settlementPair loads and validates the payment/milestone pair every
// settlement verdict starts from: the caller must be the escrow's
// client, the payment ESCROWED and the milestone COMPLETED.
func (s *EscrowService) settlementPair(ctx context.Context, principal model.Principal, paymentID, milestoneID uuid.UUID, payTo model.PaymentStatus, milestoneTo model.MilestoneStatus) (*model.Payment, *model.Milestone, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
		}
		return nil, nil, err
	}
	if !principal.IsClient() || payment.ClientID != principal.UserID {
		return nil, nil, ErrPermissionDenied
	}
	if !s.payFlow.Can(payment.Status, payTo) {
		return nil, nil, fmt.Errorf("%w: payment is %s, not ESCROWED", ErrPreconditionFailed, payment.Status)
	}
	if payment.MilestoneID == nil || *payment.MilestoneID != milestoneID {
		return nil, nil, fmt.Errorf("%w: payment does not fund milestone %s", ErrInvalidInput, milestoneID)
	}
	if payment.HoldRef == nil {
		return nil, nil, fmt.Errorf("escrowed payment %s has no hold reference", paymentID)
	}

	milestone, err := s.milestones.Get(ctx, milestoneID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
		}
		return nil, nil, err
	}
	if !s.milestoneFlow.Can(milestone.Status, milestoneTo) {
		return nil, nil, fmt.Errorf("%w: milestone is %s, not COMPLETED", ErrPreconditionFailed, milestone.Status)
	}
	return payment, milestone, nil
}

// Receipt renders a PDF receipt for a released payment.
func (s *EscrowService) Receipt(ctx context.Context, principal model.Principal, paymentID uuid.UUID) (*ReceiptResult, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
		}
		return nil, err
	}
	if payment.ClientID != principal.UserID && payment.FreelancerID != principal.UserID {
		return nil, ErrPermissionDenied
	}
	if payment.Status != model.PaymentStatusReleased {
		return nil, fmt.Errorf("%w: receipt is only available for released payments", ErrPreconditionFailed)
	}

	var project *model.Project
	if payment.ProjectID != nil {
		project, err = s.projects.Get(ctx, *payment.ProjectID)
		if err != nil {
			return nil, err
		}
	}

	content, err := s.receipts.Generate(*payment, project)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", payment.ID),
		Content:  content,
	}, nil
}
