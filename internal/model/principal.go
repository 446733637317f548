package model

import "github.com/google/uuid"

type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
)

// Principal is the authenticated caller resolved from the access token.
// Every engine operation receives it explicitly; nothing reads identity
// from ambient state.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Name   string
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

func (p Principal) IsFreelancer() bool {
	return p.Role == RoleFreelancer
}
