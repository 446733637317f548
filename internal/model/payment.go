package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusEscrowed PaymentStatus = "ESCROWED"
	PaymentStatusReleased PaymentStatus = "RELEASED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

type Payment struct {
	ID           uuid.UUID
	ProjectID    *uuid.UUID
	MilestoneID  *uuid.UUID // nil for ad-hoc meeting payments
	MeetingID    *uuid.UUID
	ClientID     uuid.UUID
	FreelancerID uuid.UUID
	Amount       float64
	Status       PaymentStatus
	HoldRef      *string // gateway hold reference once funds are escrowed
	Description  string
	ReleasedAt   *time.Time
	CreatedAt    time.Time
}
