package model

import "time"

// AuthClaims is the identity resolved from a provider-issued bearer token.
type AuthClaims struct {
	UserID    string    `json:"sub"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"exp"`
	// Token is the raw bearer credential, kept so the session can sign out upstream.
	Token string `json:"-"`
}
