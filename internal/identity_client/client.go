package identity_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrIntrospectionFailed = errors.New("token introspection failed")

// Introspector maps a bearer credential to a stable user identifier.
type Introspector interface {
	Introspect(ctx context.Context, bearerToken string) (string, error)
}

// Client calls the identity provider's introspection endpoint.
type Client struct {
	introspectionURL string
	httpClient       *http.Client
	logger           *zap.Logger
}

// NewClient creates a new identity provider client.
func NewClient(introspectionURL string, logger *zap.Logger) *Client {
	return &Client{
		introspectionURL: introspectionURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Introspect resolves the bearer token to the user id it identifies.
func (c *Client) Introspect(ctx context.Context, bearerToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.introspectionURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call identity provider", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrIntrospectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Identity provider rejected token", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrIntrospectionFailed, resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIntrospectionFailed, err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: response had no user id", ErrIntrospectionFailed)
	}

	return user.ID, nil
}
