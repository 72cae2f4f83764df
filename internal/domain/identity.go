package domain

import "github.com/google/uuid"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the already-authenticated caller as supplied by the upstream
// gateway. UserID is nil for anonymous callers.
type Identity struct {
	UserID *uuid.UUID
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
