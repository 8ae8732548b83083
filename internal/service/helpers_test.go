package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"replydesk/internal/config"
	"replydesk/internal/crypto"
	"replydesk/internal/google_client"
	"replydesk/internal/models"
	"replydesk/internal/openai_client"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// env wires the full service graph against a fakeStore and httptest-backed
// external APIs.
type env struct {
	t      *testing.T
	store  *fakeStore
	sealer *crypto.Sealer
	google *google_client.Client

	settings  SettingsService
	oauth     OAuthService
	locations LocationService
	reviews   ReviewService
	replies   ReplyService
	cycle     CycleService
}

func newEnv(t *testing.T, googleHandler, openaiHandler http.Handler) *env {
	t.Helper()

	if googleHandler == nil {
		googleHandler = http.NotFoundHandler()
	}
	if openaiHandler == nil {
		openaiHandler = http.NotFoundHandler()
	}

	googleSrv := httptest.NewServer(googleHandler)
	t.Cleanup(googleSrv.Close)
	openaiSrv := httptest.NewServer(openaiHandler)
	t.Cleanup(openaiSrv.Close)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Google.ClientID = "client-id"
	cfg.Google.ClientSecret = "client-secret"
	cfg.Google.RedirectURL = "http://localhost/callback"
	cfg.Google.APIBaseURL = googleSrv.URL
	cfg.Google.TokenURL = googleSrv.URL + "/token"
	cfg.Google.UserinfoURL = googleSrv.URL + "/userinfo"
	cfg.Google.AuthURL = googleSrv.URL + "/auth"

	logger := zap.NewNop()
	googleClient := google_client.NewClient(cfg, logger)
	openaiClient := openai_client.NewClient(openaiSrv.URL, "gpt-4o-mini", logger)

	store := newFakeStore()
	reviewRepo := fakeReviewRepo{store}
	replyRepo := fakeReplyRepo{store}

	settings := NewSettingsService(store, sealer, logger)
	oauth := NewOAuthService(store, sealer, googleClient, logger)
	locations := NewLocationService(store, oauth, googleClient, logger)
	reviews := NewReviewService(reviewRepo, store, oauth, googleClient, logger)
	replies := NewReplyService(replyRepo, reviewRepo, store, settings, oauth, openaiClient, googleClient, logger)
	cycle := NewCycleService(reviews, replies, reviewRepo, replyRepo, logger)

	return &env{
		t:         t,
		store:     store,
		sealer:    sealer,
		google:    googleClient,
		settings:  settings,
		oauth:     oauth,
		locations: locations,
		reviews:   reviews,
		replies:   replies,
		cycle:     cycle,
	}
}

// connectGoogle seeds a connected account with a sealed access token that
// expires at the given time.
func (e *env) connectGoogle(userID, accessToken string, expiry time.Time) {
	e.t.Helper()

	sealed, err := e.sealer.SealEncoded(accessToken)
	require.NoError(e.t, err)

	settings, err := e.store.GetByUserID(userID)
	require.NoError(e.t, err)
	if settings == nil {
		settings = &models.UserSettings{UserID: userID, ReplyLanguage: DefaultReplyLanguage}
	}
	email := userID + "@example.com"
	now := time.Now().UTC()
	settings.AccessTokenEncrypted = &sealed
	settings.TokenExpiry = &expiry
	settings.ConnectedEmail = &email
	settings.ConnectedAt = &now
	require.NoError(e.t, e.store.Upsert(settings))
}

// setRefreshToken seeds a sealed refresh token alongside the access token.
func (e *env) setRefreshToken(userID, refreshToken string) {
	e.t.Helper()

	sealed, err := e.sealer.SealEncoded(refreshToken)
	require.NoError(e.t, err)

	settings, err := e.store.GetByUserID(userID)
	require.NoError(e.t, err)
	require.NotNil(e.t, settings)
	settings.RefreshTokenEncrypted = &sealed
	require.NoError(e.t, e.store.Upsert(settings))
}

// setOpenAIKey seeds a sealed per-user completion API key.
func (e *env) setOpenAIKey(userID, apiKey string) {
	e.t.Helper()
	_, err := e.settings.Update(userID, UpdateSettingsInput{OpenAIKey: &apiKey})
	require.NoError(e.t, err)
}

func (e *env) addLocation(userID, googleLocationID, name string) *models.Location {
	e.t.Helper()
	location := &models.Location{
		UserID:           userID,
		GoogleLocationID: googleLocationID,
		Name:             name,
		IsActive:         true,
	}
	require.NoError(e.t, e.store.Create(location))
	return location
}

func (e *env) addReview(locationID int64, googleReviewID string, rating int, text string) *models.Review {
	e.t.Helper()
	review := &models.Review{
		LocationID:     locationID,
		GoogleReviewID: googleReviewID,
		AuthorName:     "Jean Dupont",
		Rating:         rating,
		ReviewDate:     time.Now().UTC().Add(-time.Hour),
	}
	if text != "" {
		review.ReviewText = &text
	}
	require.NoError(e.t, e.store.CreateReview(review))
	return review
}

// completionHandler answers every chat completion request with the given
// reply text.
func completionHandler(reply string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + reply + `"}}]}`))
	})
}
