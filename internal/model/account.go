package model

import "time"

type SocialAccount struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Platform         string    `json:"platform"`
	PlatformUserID   string    `json:"platform_user_id"`
	PlatformUsername string    `json:"platform_username"`
	TokenReferenceID *string   `json:"-"`
	IsConnected      bool      `json:"is_connected"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AccountStatus is the client-visible view of a connected account.
type AccountStatus struct {
	Platform         string    `json:"platform"`
	PlatformUsername string    `json:"platform_username"`
	IsConnected      bool      `json:"is_connected"`
	CreatedAt        time.Time `json:"created_at"`
}

// StoredTokens is the secret material kept in the vault, never in social_accounts.
type StoredTokens struct {
	UserID           string     `json:"user_id"`
	Platform         string     `json:"platform"`
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	PlatformUserID   string     `json:"platform_user_id"`
	PlatformUsername string     `json:"platform_username,omitempty"`
}
