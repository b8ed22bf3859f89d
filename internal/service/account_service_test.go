package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-scheduler/internal/event"
	"social-scheduler/internal/model"
	"social-scheduler/internal/vault"
)

func TestAccountService_StoreTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	expires := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	oauth := &model.OAuthData{
		AccessToken:      "live-access",
		RefreshToken:     "live-refresh",
		TokenExpiresAt:   &expires,
		Platform:         "LinkedIn",
		PlatformUserID:   "li-42",
		PlatformUsername: "acme",
	}

	t.Run("seals tokens and stores only the reference", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		secrets := vault.NewMemoryStore()
		bus := event.NewBus()
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()
		svc := NewAccountService(accounts, secrets, bus)

		var stored model.SocialAccount
		accounts.On("Upsert", ctx, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(model.SocialAccount)
		}).Return(nil, nil).Once()

		body, err := svc.Handle(ctx, "user-1", model.SocialAuthRequest{Action: ActionStoreTokens, OAuthData: oauth})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"success": true, "message": "Social account connected securely"}, body)

		require.NotNil(t, stored.TokenReferenceID)
		assert.Equal(t, "linkedin", stored.Platform)
		assert.Equal(t, "li-42", stored.PlatformUserID)
		assert.True(t, stored.IsConnected)

		tokens, err := secrets.Get(ctx, *stored.TokenReferenceID)
		require.NoError(t, err)
		assert.Equal(t, "live-access", tokens.AccessToken)
		assert.Equal(t, "live-refresh", tokens.RefreshToken)
		assert.Equal(t, "user-1", tokens.UserID)

		published := <-events
		assert.Equal(t, event.TypeAccountConnected, published.Type)
		assert.Equal(t, "user-1", published.ActorID)
	})

	t.Run("replacing an account removes the previous secret", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		secrets := vault.NewMemoryStore()
		svc := NewAccountService(accounts, secrets, nil)

		previous := "old-ref"
		require.NoError(t, secrets.Put(ctx, previous, model.StoredTokens{AccessToken: "stale"}))
		accounts.On("Upsert", ctx, mock.Anything).Return(&previous, nil).Once()

		require.NoError(t, svc.StoreTokens(ctx, "user-1", oauth))

		_, err := secrets.Get(ctx, previous)
		assert.ErrorIs(t, err, model.ErrSecretNotFound)
		assert.Equal(t, 1, secrets.Len())
	})

	t.Run("metadata failure removes the new secret", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		secrets := vault.NewMemoryStore()
		svc := NewAccountService(accounts, secrets, nil)
		accounts.On("Upsert", ctx, mock.Anything).Return(nil, errors.New("unique violation")).Once()

		err := svc.StoreTokens(ctx, "user-1", oauth)
		requireAPIError(t, err, "INTERNAL_ERROR", "Failed to store account information", http.StatusInternalServerError)
		assert.Equal(t, 0, secrets.Len())
	})

	t.Run("rejects incomplete oauth data", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)

		err := svc.StoreTokens(ctx, "user-1", &model.OAuthData{Platform: "twitter", PlatformUserID: "x"})
		require.Error(t, err)
		err = svc.StoreTokens(ctx, "user-1", nil)
		require.Error(t, err)
		accounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestAccountService_Status(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("absent account is null", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)
		accounts.On("GetByPlatform", ctx, "user-1", "twitter").Return(model.SocialAccount{}, model.ErrAccountNotFound)

		body, err := svc.Handle(ctx, "user-1", model.SocialAuthRequest{Action: ActionGetAccountStatus, Platform: "twitter"})
		require.NoError(t, err)

		raw, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"account":null}`, string(raw))
	})

	t.Run("returns metadata and never tokens", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)
		ref := "ref-1"
		created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		accounts.On("GetByPlatform", ctx, "user-1", "twitter").Return(model.SocialAccount{
			Platform:         "twitter",
			PlatformUsername: "acme",
			PlatformUserID:   "tw-1",
			TokenReferenceID: &ref,
			IsConnected:      true,
			CreatedAt:        created,
		}, nil)

		body, err := svc.Handle(ctx, "user-1", model.SocialAuthRequest{Action: ActionGetAccountStatus, Platform: "twitter"})
		require.NoError(t, err)

		raw, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"account":{"platform":"twitter","platform_username":"acme","is_connected":true,"created_at":"2026-02-03T04:05:06Z"}}`, string(raw))
		assert.NotContains(t, string(raw), "ref-1")
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)
		accounts.On("GetByPlatform", ctx, "user-1", "twitter").Return(model.SocialAccount{}, errors.New("timeout"))

		_, err := svc.Status(ctx, "user-1", "twitter")
		requireAPIError(t, err, "INTERNAL_ERROR", "Failed to fetch account status", http.StatusInternalServerError)
	})
}

func TestAccountService_Disconnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing record is a hard error", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)
		accounts.On("GetByPlatform", ctx, "user-1", "facebook").Return(model.SocialAccount{}, model.ErrAccountNotFound)

		_, err := svc.Handle(ctx, "user-1", model.SocialAuthRequest{Action: ActionDisconnectAccount, Platform: "facebook"})
		requireAPIError(t, err, "NOT_FOUND", "Account not found", http.StatusNotFound)
		accounts.AssertNotCalled(t, "Disconnect", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes the secret and clears the reference", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		secrets := vault.NewMemoryStore()
		svc := NewAccountService(accounts, secrets, nil)
		ref := "ref-9"
		require.NoError(t, secrets.Put(ctx, ref, model.StoredTokens{AccessToken: "a"}))
		accounts.On("GetByPlatform", ctx, "user-1", "facebook").Return(model.SocialAccount{Platform: "facebook", TokenReferenceID: &ref, IsConnected: true}, nil)
		accounts.On("Disconnect", ctx, "user-1", "facebook").Return(nil).Once()

		body, err := svc.Handle(ctx, "user-1", model.SocialAuthRequest{Action: ActionDisconnectAccount, Platform: "facebook"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"success": true, "message": "Account disconnected successfully"}, body)
		assert.Equal(t, 0, secrets.Len())
		accounts.AssertExpectations(t)
	})

	t.Run("update failure", func(t *testing.T) {
		t.Parallel()
		accounts := new(mockAccountStore)
		svc := NewAccountService(accounts, vault.NewMemoryStore(), nil)
		accounts.On("GetByPlatform", ctx, "user-1", "facebook").Return(model.SocialAccount{Platform: "facebook"}, nil)
		accounts.On("Disconnect", ctx, "user-1", "facebook").Return(errors.New("boom"))

		err := svc.Disconnect(ctx, "user-1", "facebook")
		requireAPIError(t, err, "INTERNAL_ERROR", "Failed to disconnect account", http.StatusInternalServerError)
	})
}

func TestAccountService_InvalidAction(t *testing.T) {
	t.Parallel()

	svc := NewAccountService(new(mockAccountStore), vault.NewMemoryStore(), nil)
	_, err := svc.Handle(context.Background(), "user-1", model.SocialAuthRequest{Action: "rotate_keys"})
	requireAPIError(t, err, "BAD_REQUEST", "Invalid action", http.StatusBadRequest)
}
