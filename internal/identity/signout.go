package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignOutClient revokes a session at the provider's logout endpoint.
type SignOutClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewSignOutClient(baseURL string, apiKey string, client *http.Client) *SignOutClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SignOutClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (c *SignOutClient) SignOut(ctx context.Context, accessToken string) error {
	if c.baseURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout?scope=local", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound:
		// Session is already gone upstream.
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("logout failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
