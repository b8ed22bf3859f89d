package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"social-scheduler/internal/content"
	"social-scheduler/internal/event"
	"social-scheduler/internal/model"
	"social-scheduler/internal/vault"
	"social-scheduler/pkg/apierror"
)

const (
	ActionStoreTokens       = "store_tokens"
	ActionGetAccountStatus  = "get_account_status"
	ActionDisconnectAccount = "disconnect_account"
)

// AccountService brokers OAuth credentials. Raw tokens go to the secret store
// and only a reference to them is written next to the account metadata.
type AccountService struct {
	accounts AccountStore
	secrets  vault.SecretStore
	bus      event.Bus
}

func NewAccountService(accounts AccountStore, secrets vault.SecretStore, bus event.Bus) *AccountService {
	return &AccountService{accounts: accounts, secrets: secrets, bus: bus}
}

// Handle dispatches one social-media-auth action and returns its response body.
func (s *AccountService) Handle(ctx context.Context, userID string, req model.SocialAuthRequest) (any, error) {
	switch strings.TrimSpace(req.Action) {
	case ActionStoreTokens:
		if err := s.StoreTokens(ctx, userID, req.OAuthData); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "message": "Social account connected securely"}, nil
	case ActionGetAccountStatus:
		status, err := s.Status(ctx, userID, req.Platform)
		if err != nil {
			return nil, err
		}
		return map[string]any{"account": status}, nil
	case ActionDisconnectAccount:
		if err := s.Disconnect(ctx, userID, req.Platform); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "message": "Account disconnected successfully"}, nil
	default:
		return nil, apierror.BadRequest("Invalid action", req.Action)
	}
}

func (s *AccountService) StoreTokens(ctx context.Context, userID string, data *model.OAuthData) error {
	if data == nil || strings.TrimSpace(data.AccessToken) == "" || strings.TrimSpace(data.PlatformUserID) == "" {
		return apierror.BadRequest("Missing required fields: access_token, platform, platform_user_id", "")
	}
	platform, ok := content.ParsePlatform(data.Platform)
	if !ok {
		return apierror.BadRequest("Unsupported platform", data.Platform)
	}

	ref := uuid.NewString()
	tokens := model.StoredTokens{
		UserID:           userID,
		Platform:         string(platform),
		AccessToken:      data.AccessToken,
		RefreshToken:     data.RefreshToken,
		ExpiresAt:        data.TokenExpiresAt,
		PlatformUserID:   strings.TrimSpace(data.PlatformUserID),
		PlatformUsername: strings.TrimSpace(data.PlatformUsername),
	}

	if err := s.secrets.Put(ctx, ref, tokens); err != nil {
		slog.Error("token secret not stored", "user_id", userID, "platform", string(platform), "error", err)
		return storeFailed()
	}

	previous, err := s.accounts.Upsert(ctx, model.SocialAccount{
		UserID:           userID,
		Platform:         string(platform),
		PlatformUserID:   tokens.PlatformUserID,
		PlatformUsername: tokens.PlatformUsername,
		TokenReferenceID: &ref,
		IsConnected:      true,
	})
	if err != nil {
		slog.Error("account metadata not stored", "user_id", userID, "platform", string(platform), "error", err)
		if delErr := s.secrets.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			slog.Warn("orphaned token secret", "user_id", userID, "platform", string(platform), "error", delErr)
		}
		return storeFailed()
	}

	if previous != nil && *previous != ref {
		if err := s.secrets.Delete(ctx, *previous); err != nil && !errors.Is(err, model.ErrSecretNotFound) {
			slog.Warn("replaced token secret not removed", "user_id", userID, "platform", string(platform), "error", err)
		}
	}

	s.publish(event.TypeAccountConnected, userID, string(platform), tokens.PlatformUsername)
	return nil
}

// Status returns nil when the user never connected the platform.
func (s *AccountService) Status(ctx context.Context, userID string, platform string) (*model.AccountStatus, error) {
	account, err := s.accounts.GetByPlatform(ctx, userID, normalizePlatform(platform))
	if errors.Is(err, model.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.Error("account status lookup failed", "user_id", userID, "platform", platform, "error", err)
		return nil, apierror.Internal("Failed to fetch account status")
	}

	status := toAccountStatus(account)
	return &status, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]model.AccountStatus, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.AccountStatus, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountStatus(account))
	}
	return out, nil
}

func (s *AccountService) Disconnect(ctx context.Context, userID string, platform string) error {
	platform = normalizePlatform(platform)

	account, err := s.accounts.GetByPlatform(ctx, userID, platform)
	if err != nil {
		if !errors.Is(err, model.ErrAccountNotFound) {
			slog.Error("account lookup failed", "user_id", userID, "platform", platform, "error", err)
		}
		return apierror.New(apierror.CodeNotFound, "Account not found", platform, http.StatusNotFound)
	}

	if account.TokenReferenceID != nil {
		if err := s.secrets.Delete(ctx, *account.TokenReferenceID); err != nil && !errors.Is(err, model.ErrSecretNotFound) {
			slog.Error("token secret not removed", "user_id", userID, "platform", platform, "error", err)
			return disconnectFailed()
		}
	}

	if err := s.accounts.Disconnect(ctx, userID, platform); err != nil {
		slog.Error("account not disconnected", "user_id", userID, "platform", platform, "error", err)
		return disconnectFailed()
	}

	s.publish(event.TypeAccountDisconnected, userID, platform, account.PlatformUsername)
	return nil
}

func (s *AccountService) publish(eventType event.Type, userID string, platform string, username string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type:    eventType,
		ActorID: userID,
		Payload: map[string]string{"platform": platform, "platform_username": username},
	})
}

func toAccountStatus(account model.SocialAccount) model.AccountStatus {
	return model.AccountStatus{
		Platform:         account.Platform,
		PlatformUsername: account.PlatformUsername,
		IsConnected:      account.IsConnected,
		CreatedAt:        account.CreatedAt,
	}
}

func normalizePlatform(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func storeFailed() error {
	return apierror.Internal("Failed to store account information")
}

func disconnectFailed() error {
	return apierror.Internal("Failed to disconnect account")
}
