package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/pizzaro/pizzaro-backend/pkg/enums"
)

// AccessTokenPayload is the caller-supplied data minted into a token.
type AccessTokenPayload struct {
	UserID string
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the JWT claim set carried by every access token.
type AccessTokenClaims struct {
	UserID string     `json:"uid"`
	Email  string     `json:"email,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
