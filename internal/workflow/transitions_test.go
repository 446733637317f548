package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workbridge/engagements/internal/model"
)

func TestMeetingGraph(t *testing.T) {
	meetings := Meetings()

	assert.True(t, meetings.Can(model.MeetingStatusConfirmed, model.MeetingStatusAwaitingDecision))
	assert.True(t, meetings.Can(model.MeetingStatusAwaitingDecision, model.MeetingStatusCompleted))
	assert.True(t, meetings.Can(model.MeetingStatusAwaitingDecision, model.MeetingStatusCancelled))

	assert.False(t, meetings.Can(model.MeetingStatusPending, model.MeetingStatusAwaitingDecision))
	assert.False(t, meetings.Can(model.MeetingStatusCompleted, model.MeetingStatusCancelled))
	assert.False(t, meetings.Can(model.MeetingStatusCancelled, model.MeetingStatusConfirmed))
	assert.Empty(t, meetings.Next(model.MeetingStatusCompleted))
}

func TestMilestoneGraphIsLinearUntilVerdict(t *testing.T) {
	milestones := Milestones()

	assert.Equal(t, []model.MilestoneStatus{model.MilestoneStatusInProgress}, milestones.Next(model.MilestoneStatusPending))
	assert.Equal(t, []model.MilestoneStatus{model.MilestoneStatusCompleted}, milestones.Next(model.MilestoneStatusInProgress))
	assert.ElementsMatch(t,
		[]model.MilestoneStatus{model.MilestoneStatusApproved, model.MilestoneStatusRejected},
		milestones.Next(model.MilestoneStatusCompleted))

	assert.False(t, milestones.Can(model.MilestoneStatusPending, model.MilestoneStatusCompleted))
	assert.False(t, milestones.Can(model.MilestoneStatusApproved, model.MilestoneStatusRejected))
	assert.False(t, milestones.Can(model.MilestoneStatusRejected, model.MilestoneStatusInProgress))
}

func TestPaymentGraphTerminalStates(t *testing.T) {
	payments := Payments()

	assert.True(t, payments.Can(model.PaymentStatusPending, model.PaymentStatusEscrowed))
	assert.True(t, payments.Can(model.PaymentStatusEscrowed, model.PaymentStatusReleased))
	assert.True(t, payments.Can(model.PaymentStatusEscrowed, model.PaymentStatusRefunded))

	// Money never moves twice out of the same hold.
	for _, terminal := range []model.PaymentStatus{
		model.PaymentStatusReleased,
		model.PaymentStatusRefunded,
		model.PaymentStatusFailed,
	} {
		assert.Empty(t, payments.Next(terminal), "status %s", terminal)
	}
	assert.False(t, payments.Can(model.PaymentStatusPending, model.PaymentStatusReleased))
}
