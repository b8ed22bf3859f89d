package service

import (
	"context"
	"errors"
	"net/http"

	"social-scheduler/internal/content"
	"social-scheduler/internal/model"
	"social-scheduler/pkg/apierror"
)

type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// View reports the caller's tier and quota. Limit and Remaining are nil for unbounded tiers.
func (s *ProfileService) View(ctx context.Context, userID string) (model.ProfileView, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, model.ErrProfileNotFound) {
		return model.ProfileView{}, apierror.New(apierror.CodeNotFound, "profile not found", "", http.StatusNotFound)
	}
	if err != nil {
		return model.ProfileView{}, err
	}

	limit := content.MonthlyLimit(profile.SubscriptionTier)
	view := model.ProfileView{
		UserID:    profile.UserID,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		Tier:      profile.SubscriptionTier,
		Used:      profile.PostsUsedThisMonth,
		Limit:     content.LimitPtr(limit),
	}
	if limit != content.Unlimited {
		remaining := max(limit-profile.PostsUsedThisMonth, 0)
		view.Remaining = &remaining
	}
	return view, nil
}
