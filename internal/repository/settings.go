package repository

import (
	"database/sql"

	"replydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type SettingsRepository interface {
	GetByUserID(userID string) (*models.UserSettings, error)
	Upsert(settings *models.UserSettings) error
	ListUserIDs() ([]string, error)
}

type settingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{db: db, logger: logger}
}

func (r *settingsRepository) GetByUserID(userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	query := `SELECT user_id, openai_api_key_encrypted, google_oauth_access_token_encrypted, google_oauth_refresh_token_encrypted,
	                 google_oauth_token_expiry, google_connected_email, google_connected_at, global_tone, reply_language, created_at, updated_at
	          FROM user_settings WHERE user_id = $1`
	err := r.db.Get(&settings, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No row is not an error: disconnected state
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(settings *models.UserSettings) error {
	query := `INSERT INTO user_settings (user_id, openai_api_key_encrypted, google_oauth_access_token_encrypted, google_oauth_refresh_token_encrypted,
	                                     google_oauth_token_expiry, google_connected_email, google_connected_at, global_tone, reply_language)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id) DO UPDATE SET
	              openai_api_key_encrypted = EXCLUDED.openai_api_key_encrypted,
	              google_oauth_access_token_encrypted = EXCLUDED.google_oauth_access_token_encrypted,
	              google_oauth_refresh_token_encrypted = EXCLUDED.google_oauth_refresh_token_encrypted,
	              google_oauth_token_expiry = EXCLUDED.google_oauth_token_expiry,
	              google_connected_email = EXCLUDED.google_connected_email,
	              google_connected_at = EXCLUDED.google_connected_at,
	              global_tone = EXCLUDED.global_tone,
	              reply_language = EXCLUDED.reply_language,
	              updated_at = now()
	          RETURNING created_at, updated_at`
	return r.db.QueryRowx(query, settings.UserID, settings.OpenAIKeyEncrypted, settings.AccessTokenEncrypted, settings.RefreshTokenEncrypted,
		settings.TokenExpiry, settings.ConnectedEmail, settings.ConnectedAt, settings.GlobalTone, settings.ReplyLanguage).
		Scan(&settings.CreatedAt, &settings.UpdatedAt)
}

func (r *settingsRepository) ListUserIDs() ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, `SELECT user_id FROM user_settings ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
