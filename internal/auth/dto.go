package auth

import "github.com/pizzaro/pizzaro-backend/pkg/enums"

// RequestOTPInput carries the email asking for a one-time login code. The
// client IP feeds the per-IP rate limit and may be empty.
type RequestOTPInput struct {
	Email    string
	ClientIP string
}

// VerifyOTPInput carries the email and the code it received.
type VerifyOTPInput struct {
	Email string
	Code  string
}

// AdminLoginInput carries admin panel credentials.
type AdminLoginInput struct {
	Username string
	Password string
}

// LoginResult is the transport shape returned by every successful login.
type LoginResult struct {
	Token  string     `json:"token"`
	Role   enums.Role `json:"role"`
	UserID string     `json:"userId"`
	Email  string     `json:"email,omitempty"`
}
