package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "PENDING"
	MilestoneStatusInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneStatusCompleted  MilestoneStatus = "COMPLETED"
	MilestoneStatusApproved   MilestoneStatus = "APPROVED"
	MilestoneStatusRejected   MilestoneStatus = "REJECTED"
)

type Project struct {
	ID           uuid.UUID
	MeetingID    *uuid.UUID // discovery call this project grew out of
	ClientID     uuid.UUID
	FreelancerID uuid.UUID
	Title        string
	Description  string
	TotalAmount  float64
	Status       ProjectStatus
	StartDate    time.Time
	CreatedAt    time.Time
	Milestones   []Milestone
	Payments     []Payment
}

type Milestone struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Amount      float64
	Status      MilestoneStatus
	DueDate     *time.Time
	CreatedAt   time.Time
}

// ProjectSummary is the ledger read model: a project annotated with
// metrics derived purely from its milestones and payments.
type ProjectSummary struct {
	Project     Project
	Progress    float64
	TotalEarned float64
	TotalPaid   float64
}

// Summarize computes the derived metrics. Progress is the share of
// approved milestones, zero when the project has none.
func Summarize(p Project) ProjectSummary {
	summary := ProjectSummary{Project: p}

	approved := 0
	for _, m := range p.Milestones {
		if m.Status == MilestoneStatusApproved {
			approved++
			summary.TotalEarned += m.Amount
		}
	}
	if len(p.Milestones) > 0 {
		summary.Progress = float64(approved) / float64(len(p.Milestones)) * 100
	}

	for _, payment := range p.Payments {
		if payment.Status == PaymentStatusReleased {
			summary.TotalPaid += payment.Amount
		}
	}
	return summary
}
