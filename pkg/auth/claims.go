package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller handed to every service operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsStaff reports whether the actor may adjudicate claims and manage items.
func (a Actor) IsStaff() bool {
	return a.Role == enums.UserRoleStaff
}

// Valid reports whether the actor carries an identity and a known role.
func (a Actor) Valid() bool {
	return a.UserID != uuid.Nil && a.Role.IsValid()
}

// Actor converts verified token claims into the call-scoped actor.
func (c AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}
