package workflow

import "github.com/workbridge/engagements/internal/model"

// Transitions holds the allowed status graph for one entity kind.
type Transitions[S comparable] struct {
	allowed map[S][]S
}

func (t Transitions[S]) Can(from, to S) bool {
	for _, next := range t.allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t Transitions[S]) Next(from S) []S {
	return t.allowed[from]
}

// Meetings returns the meeting lifecycle graph. Discovery calls detour
// through AWAITING_CLIENT_DECISION before reaching a terminal state;
// any non-terminal meeting can be cancelled.
func Meetings() Transitions[model.MeetingStatus] {
	return Transitions[model.MeetingStatus]{allowed: map[model.MeetingStatus][]model.MeetingStatus{
		model.MeetingStatusPending:          {model.MeetingStatusConfirmed, model.MeetingStatusCancelled},
		model.MeetingStatusConfirmed:        {model.MeetingStatusCompleted, model.MeetingStatusAwaitingDecision, model.MeetingStatusCancelled},
		model.MeetingStatusAwaitingDecision: {model.MeetingStatusCompleted, model.MeetingStatusCancelled},
		model.MeetingStatusCompleted:        {},
		model.MeetingStatusCancelled:        {},
	}}
}

func Milestones() Transitions[model.MilestoneStatus] {
	return Transitions[model.MilestoneStatus]{allowed: map[model.MilestoneStatus][]model.MilestoneStatus{
		model.MilestoneStatusPending:    {model.MilestoneStatusInProgress},
		model.MilestoneStatusInProgress: {model.MilestoneStatusCompleted},
		model.MilestoneStatusCompleted:  {model.MilestoneStatusApproved, model.MilestoneStatusRejected},
		model.MilestoneStatusApproved:   {},
		model.MilestoneStatusRejected:   {},
	}}
}

func Payments() Transitions[model.PaymentStatus] {
	return Transitions[model.PaymentStatus]{allowed: map[model.PaymentStatus][]model.PaymentStatus{
		model.PaymentStatusPending:  {model.PaymentStatusEscrowed, model.PaymentStatusFailed},
		model.PaymentStatusEscrowed: {model.PaymentStatusReleased, model.PaymentStatusRefunded},
		model.PaymentStatusReleased: {},
		model.PaymentStatusRefunded: {},
		model.PaymentStatusFailed:   {},
	}}
}
