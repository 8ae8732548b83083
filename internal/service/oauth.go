package service

import (
	"context"
	"fmt"
	"time"

	"replydesk/internal/crypto"
	"replydesk/internal/google_client"
	"replydesk/internal/models"
	"replydesk/internal/repository"

	"go.uber.org/zap"
)

// OAuthService owns the Google token lifecycle: connecting an account,
// disconnecting it, and resolving a usable access token with refresh.
type OAuthService interface {
	InitiateURL() string
	Complete(ctx context.Context, userID, code string) (string, error)
	Disconnect(userID string) error
	ResolveAccessToken(ctx context.Context, userID string) (string, error)
}

type oauthService struct {
	repo   repository.SettingsRepository
	sealer *crypto.Sealer
	google *google_client.Client
	logger *zap.Logger
}

func NewOAuthService(repo repository.SettingsRepository, sealer *crypto.Sealer, google *google_client.Client, logger *zap.Logger) OAuthService {
	return &oauthService{repo: repo, sealer: sealer, google: google, logger: logger}
}

func (s *oauthService) InitiateURL() string {
	return s.google.AuthCodeURL()
}

// Complete exchanges the authorization code, fetches the connected account's
// email, and stores the sealed tokens. Returns the connected email.
func (s *oauthService) Complete(ctx context.Context, userID, code string) (string, error) {
	token, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	info, err := s.google.Userinfo(ctx, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	settings, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		settings = &models.UserSettings{UserID: userID, ReplyLanguage: DefaultReplyLanguage}
	}

	sealedAccess, err := s.sealer.SealEncoded(token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to seal access token: %w", err)
	}
	settings.AccessTokenEncrypted = &sealedAccess

	if token.RefreshToken != "" {
		sealedRefresh, err := s.sealer.SealEncoded(token.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("failed to seal refresh token: %w", err)
		}
		settings.RefreshTokenEncrypted = &sealedRefresh
	}

	now := time.Now().UTC()
	expiry := now.Add(time.Duration(token.ExpiresIn) * time.Second)
	settings.TokenExpiry = &expiry
	settings.ConnectedEmail = &info.Email
	settings.ConnectedAt = &now

	if err := s.repo.Upsert(settings); err != nil {
		return "", fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("Google account connected",
		zap.String("user_id", userID),
		zap.String("email", info.Email))
	return info.Email, nil
}

// Disconnect clears all token fields. Token fields are all-or-nothing.
func (s *oauthService) Disconnect(userID string) error {
	settings, err := s.repo.GetByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		return nil // Nothing to disconnect
	}

	settings.AccessTokenEncrypted = nil
	settings.RefreshTokenEncrypted = nil
	settings.TokenExpiry = nil
	settings.ConnectedEmail = nil
	settings.ConnectedAt = nil

	if err := s.repo.Upsert(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("Google account disconnected", zap.String("user_id", userID))
	return nil
}

// ResolveAccessToken opens the stored access token, refreshing it first when
// it has expired and a refresh token is available. A failed refresh keeps the
// stale token in place and lets the downstream call fail naturally.
func (s *oauthService) ResolveAccessToken(ctx context.Context, userID string) (string, error) {
	settings, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.Connected() {
		return "", fmt.Errorf("%w: google account not connected", ErrNotConfigured)
	}

	accessToken, err := s.sealer.OpenEncoded(*settings.AccessTokenEncrypted)
	if err != nil {
		return "", fmt.Errorf("failed to open access token: %w", err)
	}

	expired := settings.TokenExpiry != nil && time.Now().After(*settings.TokenExpiry)
	if !expired || settings.RefreshTokenEncrypted == nil || *settings.RefreshTokenEncrypted == "" {
		return accessToken, nil
	}

	refreshToken, err := s.sealer.OpenEncoded(*settings.RefreshTokenEncrypted)
	if err != nil {
		return "", fmt.Errorf("failed to open refresh token: %w", err)
	}

	fresh, err := s.google.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed, proceeding with stale token",
			zap.String("user_id", userID), zap.Error(err))
		return accessToken, nil
	}

	sealedAccess, err := s.sealer.SealEncoded(fresh.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to seal refreshed token: %w", err)
	}
	expiry := time.Now().UTC().Add(time.Duration(fresh.ExpiresIn) * time.Second)
	settings.AccessTokenEncrypted = &sealedAccess
	settings.TokenExpiry = &expiry

	if err := s.repo.Upsert(settings); err != nil {
		// The refreshed token is still good for this call even if persisting
		// it failed.
		s.logger.Error("Failed to persist refreshed token", zap.String("user_id", userID), zap.Error(err))
	}

	return fresh.AccessToken, nil
}
