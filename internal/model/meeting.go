package model

import (
	"time"

	"github.com/google/uuid"
)

type MeetingType string

const (
	MeetingTypeDiscovery MeetingType = "DISCOVERY"
	MeetingTypeProject   MeetingType = "PROJECT"
)

type MeetingStatus string

const (
	MeetingStatusPending          MeetingStatus = "PENDING"
	MeetingStatusConfirmed        MeetingStatus = "CONFIRMED"
	MeetingStatusAwaitingDecision MeetingStatus = "AWAITING_CLIENT_DECISION"
	MeetingStatusCompleted        MeetingStatus = "COMPLETED"
	MeetingStatusCancelled        MeetingStatus = "CANCELLED"
)

type ClientDecision string

const (
	DecisionPending  ClientDecision = "PENDING"
	DecisionAccepted ClientDecision = "ACCEPTED"
	DecisionRejected ClientDecision = "REJECTED"
)

type Meeting struct {
	ID              uuid.UUID
	ClientID        uuid.UUID
	FreelancerID    uuid.UUID
	Type            MeetingType
	ScheduledAt     time.Time
	DurationMinutes int
	Status          MeetingStatus
	ClientDecision  *ClientDecision // set only once the discovery call awaits a decision
	Notes           string
	CreatedAt       time.Time
}

// ScheduledEnd is the wall-clock instant the call is booked to finish.
func (m Meeting) ScheduledEnd() time.Time {
	return m.ScheduledAt.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

func (m Meeting) IsParticipant(userID uuid.UUID) bool {
	return m.ClientID == userID || m.FreelancerID == userID
}
