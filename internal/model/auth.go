package model

import "time"

// AuthRequest types
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthResponse types
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenClaims represents verified access token claims
type TokenClaims struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
