package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/workbridge/engagements/internal/model"
)

type VerificationService struct {
	records VerificationStore
}

// VerificationStatus pairs the stored signals with their derived trust
// tier; nothing here is cached, the tier is recomputed on every read.
type VerificationStatus struct {
	Record        model.VerificationRecord
	Score         int
	TrustLevel    model.TrustLevel
	FullyVerified bool
}

func NewVerificationService(records VerificationStore) *VerificationService {
	return &VerificationService{records: records}
}

// GetStatus returns the caller's verification standing, creating an
// all-unverified record on first query.
func (s *VerificationService) GetStatus(ctx context.Context, userID uuid.UUID) (*VerificationStatus, error) {
	record, err := s.records.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &VerificationStatus{
		Record:        *record,
		Score:         record.Score(),
		TrustLevel:    record.TrustLevel(),
		FullyVerified: record.IsFullyVerified(),
	}, nil
}
