package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationState is the tri-state result of a manual check.
type VerificationState string

const (
	VerificationUnverified VerificationState = "UNVERIFIED"
	VerificationPending    VerificationState = "PENDING"
	VerificationVerified   VerificationState = "VERIFIED"
)

type TrustLevel string

const (
	TrustUnverified        TrustLevel = "UNVERIFIED"
	TrustPartiallyVerified TrustLevel = "PARTIALLY_VERIFIED"
	TrustVerified          TrustLevel = "VERIFIED"
	TrustHighlyTrusted     TrustLevel = "HIGHLY_TRUSTED"
)

type VerificationRecord struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	IDVerification    VerificationState
	EmailVerified     bool
	PhoneVerified     bool
	PortfolioVerified bool
	BackgroundCheck   VerificationState
	UpdatedAt         time.Time
}

// Score counts the verified signals. It is a pure derivation over the
// stored record; the trust level is never persisted separately.
func (r VerificationRecord) Score() int {
	score := 0
	if r.IDVerification == VerificationVerified {
		score++
	}
	if r.EmailVerified {
		score++
	}
	if r.PhoneVerified {
		score++
	}
	if r.PortfolioVerified {
		score++
	}
	if r.BackgroundCheck == VerificationVerified {
		score++
	}
	return score
}

func (r VerificationRecord) TrustLevel() TrustLevel {
	switch score := r.Score(); {
	case score >= 4:
		return TrustHighlyTrusted
	case score == 3:
		return TrustVerified
	case score == 2:
		return TrustPartiallyVerified
	default:
		return TrustUnverified
	}
}

func (r VerificationRecord) IsFullyVerified() bool {
	return r.Score() == 5
}
