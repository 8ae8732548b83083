package service

import (
	"fmt"

	"replydesk/internal/crypto"
	"replydesk/internal/models"
	"replydesk/internal/repository"

	"go.uber.org/zap"
)

// DefaultReplyLanguage is used until the account configures one.
const DefaultReplyLanguage = "français"

type SettingsService interface {
	Get(userID string) (*models.UserSettings, error)
	Update(userID string, input UpdateSettingsInput) (*models.UserSettings, error)
	OpenAIKey(userID string) (string, error)
}

// UpdateSettingsInput carries partial updates; nil fields are left untouched.
type UpdateSettingsInput struct {
	GlobalTone    *string `json:"global_tone"`
	ReplyLanguage *string `json:"reply_language"`
	// OpenAIKey is sealed before storage. An explicit empty string clears it.
	OpenAIKey *string `json:"openai_api_key"`
}

type settingsService struct {
	repo   repository.SettingsRepository
	sealer *crypto.Sealer
	logger *zap.Logger
}

func NewSettingsService(repo repository.SettingsRepository, sealer *crypto.Sealer, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, sealer: sealer, logger: logger}
}

// Get returns the user's settings with sealed fields left sealed. A missing
// row is returned as a zero-value row, since callers treat both the same.
func (s *settingsService) Get(userID string) (*models.UserSettings, error) {
	settings, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		settings = &models.UserSettings{UserID: userID, ReplyLanguage: DefaultReplyLanguage}
	}
	return settings, nil
}

func (s *settingsService) Update(userID string, input UpdateSettingsInput) (*models.UserSettings, error) {
	settings, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if input.GlobalTone != nil {
		settings.GlobalTone = input.GlobalTone
	}
	if input.ReplyLanguage != nil && *input.ReplyLanguage != "" {
		settings.ReplyLanguage = *input.ReplyLanguage
	}
	if input.OpenAIKey != nil {
		if *input.OpenAIKey == "" {
			settings.OpenAIKeyEncrypted = nil
		} else {
			sealed, err := s.sealer.SealEncoded(*input.OpenAIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to seal api key: %w", err)
			}
			settings.OpenAIKeyEncrypted = &sealed
		}
	}

	if err := s.repo.Upsert(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("User settings updated", zap.String("user_id", userID))
	return settings, nil
}

// OpenAIKey opens the sealed API key, or fails with ErrNotConfigured.
func (s *settingsService) OpenAIKey(userID string) (string, error) {
	settings, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil || settings.OpenAIKeyEncrypted == nil || *settings.OpenAIKeyEncrypted == "" {
		return "", fmt.Errorf("%w: openai api key", ErrNotConfigured)
	}
	key, err := s.sealer.OpenEncoded(*settings.OpenAIKeyEncrypted)
	if err != nil {
		return "", fmt.Errorf("failed to open api key: %w", err)
	}
	return key, nil
}
