package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT issued to clients by the
// identity service. This service only verifies and reads it.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
