package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationTypeProjectStarted    = "project_started"
	NotificationTypeDecisionRejected  = "decision_rejected"
	NotificationTypeEscrowFunded      = "escrow_funded"
	NotificationTypePaymentReleased   = "payment_released"
	NotificationTypeMilestoneRejected = "milestone_rejected"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Title       string
	Message     string
	Type        string
	Data        datatypes.JSON
	IsRead      bool
	CreatedAt   time.Time
}
