package model

import "time"

type Profile struct {
	UserID               string     `json:"user_id"`
	SubscriptionTier     string     `json:"subscription_tier"`
	PostsUsedThisMonth   int        `json:"posts_used_this_month"`
	StripeCustomerID     *string    `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus   *string    `json:"subscription_status,omitempty"`
	SubscriptionEndDate  *time.Time `json:"subscription_end_date,omitempty"`
	FullName             string     `json:"full_name"`
	AvatarURL            string     `json:"avatar_url"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Usage is the quota snapshot returned to clients. Limit is nil for unbounded tiers.
type Usage struct {
	Used  int    `json:"used"`
	Limit *int   `json:"limit"`
	Tier  string `json:"tier"`
}

type ProfileView struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Tier      string `json:"tier"`
	Used      int    `json:"used"`
	Limit     *int   `json:"limit"`
	Remaining *int   `json:"remaining"`
}
