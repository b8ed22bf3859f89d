package model

import "time"

type GenerateContentRequest struct {
	Prompt   string `json:"prompt"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Industry string `json:"industry"`
}

type OAuthData struct {
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token"`
	TokenExpiresAt   *time.Time `json:"token_expires_at"`
	Platform         string     `json:"platform"`
	PlatformUserID   string     `json:"platform_user_id"`
	PlatformUsername string     `json:"platform_username"`
}

type SocialAuthRequest struct {
	Action    string     `json:"action"`
	Platform  string     `json:"platform"`
	OAuthData *OAuthData `json:"oauth_data"`
}

type CreatePostRequest struct {
	Content       string     `json:"content"`
	Platform      string     `json:"platform"`
	Hashtags      []string   `json:"hashtags"`
	ImageURL      string     `json:"image_url"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	// Mode is "draft" or "schedule".
	Mode string `json:"mode"`
}

type SchedulePostRequest struct {
	ScheduledTime *time.Time `json:"scheduled_time"`
}

type SessionActivityRequest struct {
	Signal string `json:"signal"`
}

type SessionLogoutRequest struct {
	// Confirmed nil means no confirmation step was shown.
	Confirmed  *bool `json:"confirmed"`
	RememberMe bool  `json:"remember_me"`
}

type PreferencesRequest struct {
	Values map[string]string `json:"values"`
}
