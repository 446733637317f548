package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/config"
	"github.com/workbridge/engagements/internal/model"
	"github.com/workbridge/engagements/internal/workflow"
)

// Routing hints returned to the transport layer after a discovery call
// completes: the client goes to the decision prompt, the freelancer
// back to their meeting list.
const (
	RedirectDecisionPrompt = "decision-prompt"
	RedirectMeetingList    = "meetings"
)

const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"
)

type MeetingService struct {
	meetings  MeetingStore
	notifier  Notifier
	lifecycle workflow.Transitions[model.MeetingStatus]
	leeway    time.Duration
	now       func() time.Time
}

type CompleteDiscoveryResult struct {
	Meeting  *model.Meeting
	Redirect string
}

type ProjectDetails struct {
	Title       string
	Description string
	TotalAmount float64
}

type ResolveDecisionInput struct {
	Decision string
	Details  *ProjectDetails
}

func NewMeetingService(meetings MeetingStore, notifier Notifier, cfg *config.Config) *MeetingService {
	return &MeetingService{
		meetings:  meetings,
		notifier:  notifier,
		lifecycle: workflow.Meetings(),
		leeway:    cfg.Meetings.CompletionLeeway,
		now:       time.Now,
	}
}

// CompleteDiscovery ends a discovery call and hands the meeting to the
// client for a decision. Allowed from the leeway window before the
// scheduled end; re-entry after success is a state conflict.
func (s *MeetingService) CompleteDiscovery(ctx context.Context, meetingID uuid.UUID, principal model.Principal) (*CompleteDiscoveryResult, error) {
	meeting, err := s.get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Type != model.MeetingTypeDiscovery {
		return nil, fmt.Errorf("%w: meeting %s is not a discovery call", ErrInvalidInput, meetingID)
	}
	if !meeting.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}
	if !s.lifecycle.Can(meeting.Status, model.MeetingStatusAwaitingDecision) {
		return nil, fmt.Errorf("%w: meeting is %s", ErrConflict, meeting.Status)
	}

	earliest := meeting.ScheduledEnd().Add(-s.leeway)
	if s.now().Before(earliest) {
		return nil, fmt.Errorf("%w: completion opens at %s", ErrTooEarly, earliest.Format(time.RFC3339))
	}

	updated, err := s.meetings.MarkAwaitingDecision(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: meeting already completed", ErrConflict)
	}

	meeting.Status = model.MeetingStatusAwaitingDecision
	pending := model.DecisionPending
	meeting.ClientDecision = &pending

	redirect := RedirectMeetingList
	if principal.UserID == meeting.ClientID {
		redirect = RedirectDecisionPrompt
	}
	return &CompleteDiscoveryResult{Meeting: meeting, Redirect: redirect}, nil
}

// ResolveDecision records the client's verdict on a completed discovery
// call. ACCEPT creates the project atomically with the meeting's
// terminal transition; REJECT cancels the meeting and creates nothing.
func (s *MeetingService) ResolveDecision(ctx context.Context, meetingID uuid.UUID, principal model.Principal, input ResolveDecisionInput) (*model.Project, error) {
	meeting, err := s.get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != model.MeetingStatusAwaitingDecision {
		return nil, fmt.Errorf("%w: meeting is %s, not awaiting a decision", ErrConflict, meeting.Status)
	}
	if principal.UserID != meeting.ClientID {
		return nil, ErrPermissionDenied
	}

	switch strings.ToUpper(strings.TrimSpace(input.Decision)) {
	case DecisionAccept:
		return s.accept(ctx, meeting, input.Details)
	case DecisionReject:
		return nil, s.reject(ctx, meeting)
	default:
		return nil, fmt.Errorf("%w: decision must be ACCEPT or REJECT", ErrInvalidInput)
	}
}

func (s *MeetingService) accept(ctx context.Context, meeting *model.Meeting, details *ProjectDetails) (*model.Project, error) {
	if details == nil {
		return nil, fmt.Errorf("%w: project details are required to accept", ErrInvalidInput)
	}
	if strings.TrimSpace(details.Title) == "" {
		return nil, fmt.Errorf("%w: project title is required", ErrInvalidInput)
	}
	if details.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	}

	now := s.now().UTC()
	meetingID := meeting.ID
	project := &model.Project{
		ID:           uuid.New(),
		MeetingID:    &meetingID,
		ClientID:     meeting.ClientID,
		FreelancerID: meeting.FreelancerID,
		Title:        strings.TrimSpace(details.Title),
		Description:  details.Description,
		TotalAmount:  details.TotalAmount,
		Status:       model.ProjectStatusActive,
		StartDate:    now,
		CreatedAt:    now,
	}

	accepted, err := s.meetings.ResolveAccept(ctx, meeting.ID, project)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("%w: meeting already decided", ErrConflict)
	}

	s.notifier.Emit(ctx, meeting.FreelancerID,
		"Project accepted",
		fmt.Sprintf("The client accepted your discovery call. Project %q has started.", project.Title),
		model.NotificationTypeProjectStarted, nil)
	return project, nil
}

func (s *MeetingService) reject(ctx context.Context, meeting *model.Meeting) error {
	rejected, err := s.meetings.ResolveReject(ctx, meeting.ID)
	if err != nil {
		return err
	}
	if !rejected {
		return fmt.Errorf("%w: meeting already decided", ErrConflict)
	}

	s.notifier.Emit(ctx, meeting.FreelancerID,
		"Discovery call declined",
		"The client decided not to continue after your discovery call.",
		model.NotificationTypeDecisionRejected, nil)
	return nil
}

// AnnotateNotes replaces the shared free-text notes on a meeting.
// Either participant may write them.
func (s *MeetingService) AnnotateNotes(ctx context.Context, meetingID uuid.UUID, principal model.Principal, notes string) error {
	meeting, err := s.get(ctx, meetingID)
	if err != nil {
		return err
	}
	if !meeting.IsParticipant(principal.UserID) {
		return ErrPermissionDenied
	}
	return s.meetings.UpdateNotes(ctx, meetingID, notes)
}

// ListUpcoming is the read path for external reminder schedulers; the
// engine itself owns no timers.
func (s *MeetingService) ListUpcoming(ctx context.Context, principal model.Principal, within time.Duration) ([]model.Meeting, error) {
	if within <= 0 {
		within = 24 * time.Hour
	}
	from := s.now().UTC()
	return s.meetings.ListUpcoming(ctx, principal.UserID, from, from.Add(within))
}

func (s *MeetingService) get(ctx context.Context, meetingID uuid.UUID) (*model.Meeting, error) {
	meeting, err := s.meetings.Get(ctx, meetingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: meeting %s", ErrNotFound, meetingID)
		}
		return nil, err
	}
	return meeting, nil
}
