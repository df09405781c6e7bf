package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of caller roles the engine recognises.
type Role string

const (
	RoleTutor Role = "TUTOR"
	RoleTutee Role = "TUTEE"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleTutor, RoleTutee, RoleAdmin:
		return true
	}
	return false
}

// JWTClaims is the already-authenticated identity triple attached to every call.
// Token issuance happens in the identity service; this API only validates.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}
