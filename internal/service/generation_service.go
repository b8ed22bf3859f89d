package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"social-scheduler/internal/ai"
	"social-scheduler/internal/content"
	"social-scheduler/internal/event"
	"social-scheduler/internal/model"
	"social-scheduler/internal/util"
	"social-scheduler/pkg/apierror"
)

const maxTopicRunes = 2000

type GenerationService struct {
	profiles    ProfileStore
	generations GenerationLog
	generator   ai.Generator
	bus         event.Bus
}

func NewGenerationService(profiles ProfileStore, generations GenerationLog, generator ai.Generator, bus event.Bus) *GenerationService {
	return &GenerationService{
		profiles:    profiles,
		generations: generations,
		generator:   generator,
		bus:         bus,
	}
}

func quotaExceeded() error {
	return apierror.New(apierror.CodeQuotaExceeded, "Usage limit reached. Upgrade your plan to generate more content.", "", http.StatusTooManyRequests)
}

// Generate validates the request, reserves one unit of the caller's monthly
// quota, asks the provider for copy and decorates it with hashtags.
// The reserved unit is handed back when the provider fails.
func (s *GenerationService) Generate(ctx context.Context, userID string, req model.GenerateContentRequest) (model.GenerationResult, error) {
	topic := util.SanitizeText(req.Prompt, maxTopicRunes)
	rawPlatform := strings.TrimSpace(req.Platform)
	rawTone := strings.TrimSpace(req.Tone)
	if topic == "" || rawPlatform == "" || rawTone == "" {
		return model.GenerationResult{}, apierror.BadRequest("Missing required fields: prompt, platform, tone", "")
	}

	platform, ok := content.ParsePlatform(rawPlatform)
	if !ok {
		return model.GenerationResult{}, apierror.BadRequest("Unsupported platform", rawPlatform)
	}
	tone, ok := content.ParseTone(rawTone)
	if !ok {
		return model.GenerationResult{}, apierror.BadRequest("Unsupported tone", rawTone)
	}
	industry, ok := content.ParseIndustry(req.Industry)
	if !ok {
		return model.GenerationResult{}, apierror.BadRequest("Unsupported industry", req.Industry)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		slog.Error("generation profile lookup failed", "user_id", userID, "error", err)
		return model.GenerationResult{}, apierror.Internal("Failed to fetch user profile")
	}

	limit := content.MonthlyLimit(profile.SubscriptionTier)
	if limit != content.Unlimited && profile.PostsUsedThisMonth >= limit {
		return model.GenerationResult{}, quotaExceeded()
	}

	used, err := s.profiles.ReserveGeneration(ctx, userID, limit)
	if errors.Is(err, model.ErrQuotaExceeded) {
		return model.GenerationResult{}, quotaExceeded()
	}
	if err != nil {
		slog.Error("generation quota reservation failed", "user_id", userID, "error", err)
		return model.GenerationResult{}, apierror.Internal("Failed to update usage")
	}

	prompt := content.BuildPrompt(topic, platform, tone, industry)
	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.release(ctx, userID)
		slog.Error("generation provider failed", "user_id", userID, "platform", string(platform), "error", err)
		if errors.Is(err, ai.ErrEmptyOutput) {
			return model.GenerationResult{}, apierror.Upstream("No content generated by AI")
		}
		return model.GenerationResult{}, apierror.Upstream("Failed to generate content with AI")
	}

	hashtags := content.Hashtags(platform, industry)

	record := model.Generation{
		UserID:           userID,
		Prompt:           topic,
		GeneratedContent: generated,
		Platform:         string(platform),
		Tone:             string(tone),
		Industry:         string(industry),
		Hashtags:         hashtags,
	}
	if err := s.generations.Create(ctx, record); err != nil {
		slog.Warn("generation record not stored", "user_id", userID, "platform", string(platform), "error", err)
	}

	result := model.GenerationResult{
		Content:        generated,
		Hashtags:       hashtags,
		CharacterCount: content.CharacterCount(generated),
		CharacterLimit: platform.CharacterLimit(),
		Usage: model.Usage{
			Used:  used,
			Limit: content.LimitPtr(limit),
			Tier:  profile.SubscriptionTier,
		},
	}

	if s.bus != nil {
		s.bus.Publish(event.Event{
			Type:    event.TypeGenerationCompleted,
			ActorID: userID,
			Payload: map[string]any{
				"platform":       string(platform),
				"characterCount": result.CharacterCount,
				"usage":          result.Usage,
			},
		})
	}

	return result, nil
}

// release runs even when the request context is already cancelled.
func (s *GenerationService) release(ctx context.Context, userID string) {
	if err := s.profiles.ReleaseGeneration(context.WithoutCancel(ctx), userID); err != nil {
		slog.Error("generation quota release failed", "user_id", userID, "error", err)
	}
}

func (s *GenerationService) History(ctx context.Context, userID string, limit int) (model.GenerationListData, error) {
	items, err := s.generations.ListRecent(ctx, userID, limit)
	if err != nil {
		return model.GenerationListData{}, err
	}
	return model.GenerationListData{Generations: items}, nil
}
