package models

import "time"

// UserSettings holds one account's global configuration. Token and key fields
// are stored sealed (see internal/crypto); absent token fields mean the
// Google account is disconnected.
type UserSettings struct {
	UserID                string     `db:"user_id" json:"user_id"`
	OpenAIKeyEncrypted    *string    `db:"openai_api_key_encrypted" json:"-"`
	AccessTokenEncrypted  *string    `db:"google_oauth_access_token_encrypted" json:"-"`
	RefreshTokenEncrypted *string    `db:"google_oauth_refresh_token_encrypted" json:"-"`
	TokenExpiry           *time.Time `db:"google_oauth_token_expiry" json:"-"`
	ConnectedEmail        *string    `db:"google_connected_email" json:"google_connected_email,omitempty"`
	ConnectedAt           *time.Time `db:"google_connected_at" json:"google_connected_at,omitempty"`
	GlobalTone            *string    `db:"global_tone" json:"global_tone,omitempty"`
	ReplyLanguage         string     `db:"reply_language" json:"reply_language"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// Connected reports whether a usable Google OAuth access token is stored.
func (s *UserSettings) Connected() bool {
	return s != nil && s.AccessTokenEncrypted != nil && *s.AccessTokenEncrypted != ""
}
