package google_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"replydesk/internal/config"
)

// Account is a Google Business Profile account ("accounts/123").
type Account struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName"`
}

// Location as returned by the business API.
type Location struct {
	Name         string `json:"name"` // resource name, used as the external identifier
	LocationName string `json:"locationName"`
	PrimaryPhone string `json:"primaryPhone"`
	Address      *struct {
		AddressLines []string `json:"addressLines"`
		Locality     string   `json:"locality"`
		PostalCode   string   `json:"postalCode"`
	} `json:"address"`
}

// FormattedAddress flattens the structured address the way the dashboard
// displays it, or returns nil when the API sent none.
func (l Location) FormattedAddress() *string {
	if l.Address == nil {
		return nil
	}
	parts := strings.Join(l.Address.AddressLines, ", ")
	formatted := strings.TrimSpace(strings.TrimSpace(parts+" "+l.Address.Locality) + " " + l.Address.PostalCode)
	if formatted == "" {
		return nil
	}
	return &formatted
}

// LocationID returns the bare location identifier from the resource name
// ("accounts/123/locations/456" -> "456"). Review and reply endpoints address
// locations through the account wildcard, so only this segment is stored.
func (l Location) LocationID() string {
	if i := strings.LastIndex(l.Name, "/"); i >= 0 {
		return l.Name[i+1:]
	}
	return l.Name
}

// Review as returned by the business API. Ratings arrive as enumerated
// labels, not numbers.
type Review struct {
	ReviewID   string    `json:"reviewId"`
	StarRating string    `json:"starRating"`
	Comment    string    `json:"comment"`
	CreateTime time.Time `json:"createTime"`
	Reviewer   *struct {
		DisplayName     string `json:"displayName"`
		ProfilePhotoURL string `json:"profilePhotoUrl"`
	} `json:"reviewer"`
}

// Token is the result of an OAuth code exchange or refresh.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Userinfo identifies the connected Google account.
type Userinfo struct {
	Email string `json:"email"`
}

// StarToRating maps the API's enumerated star label to a 1-5 integer.
// Unknown labels map to 1.
func StarToRating(label string) int {
	switch label {
	case "FIVE":
		return 5
	case "FOUR":
		return 4
	case "THREE":
		return 3
	case "TWO":
		return 2
	default:
		return 1
	}
}

// Client for the Google Business Profile API and its OAuth endpoints.
type Client struct {
	baseURL      string
	tokenURL     string
	userinfoURL  string
	authURL      string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a new Google API client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.Google.APIBaseURL,
		tokenURL:     cfg.Google.TokenURL,
		userinfoURL:  cfg.Google.UserinfoURL,
		authURL:      cfg.Google.AuthURL,
		clientID:     cfg.Google.ClientID,
		clientSecret: cfg.Google.ClientSecret,
		redirectURL:  cfg.Google.RedirectURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// AuthCodeURL builds the consent URL for connecting a business account.
// Offline access and forced consent guarantee a refresh token on first
// connection.
func (c *Client) AuthCodeURL() string {
	scopes := strings.Join([]string{
		"https://www.googleapis.com/auth/business.manage",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}, " ")

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURL)
	params.Set("scope", scopes)
	params.Set("response_type", "code")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")

	return c.authURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.redirectURL)

	return c.postTokenForm(ctx, form)
}

// RefreshToken trades a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	return c.postTokenForm(ctx, form)
}

func (c *Client) postTokenForm(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call token endpoint", zap.Error(err))
		return nil, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Token endpoint returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("token endpoint returned status: %d", resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

// Userinfo fetches the profile of the token's owner.
func (c *Client) Userinfo(ctx context.Context, accessToken string) (*Userinfo, error) {
	var info Userinfo
	if err := c.getJSON(ctx, c.userinfoURL, accessToken, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListAccounts lists the business accounts visible to the token.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var response struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/accounts", accessToken, &response); err != nil {
		return nil, err
	}
	return response.Accounts, nil
}

// ListLocations lists the locations of one account. accountName is the
// resource name from ListAccounts ("accounts/123").
func (c *Client) ListLocations(ctx context.Context, accessToken, accountName string) ([]Location, error) {
	var response struct {
		Locations []Location `json:"locations"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/locations", c.baseURL, accountName), accessToken, &response); err != nil {
		return nil, err
	}
	return response.Locations, nil
}

// ListReviews lists the reviews of one location. Only the first page is
// fetched; pagination is a known gap.
func (c *Client) ListReviews(ctx context.Context, accessToken, googleLocationID string) ([]Review, error) {
	var response struct {
		Reviews []Review `json:"reviews"`
	}
	reviewsURL := fmt.Sprintf("%s/accounts/*/locations/%s/reviews", c.baseURL, googleLocationID)
	if err := c.getJSON(ctx, reviewsURL, accessToken, &response); err != nil {
		return nil, err
	}
	return response.Reviews, nil
}

// PostReply publishes a reply to a review.
func (c *Client) PostReply(ctx context.Context, accessToken, googleLocationID, googleReviewID, comment string) error {
	payload, err := json.Marshal(map[string]string{"comment": comment})
	if err != nil {
		return err
	}

	replyURL := fmt.Sprintf("%s/accounts/*/locations/%s/reviews/%s/reply", c.baseURL, googleLocationID, googleReviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, replyURL, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create reply request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to post reply to Google", zap.Error(err))
		return fmt.Errorf("failed to post reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Google returned non-OK status for reply", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("google returned status: %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, accessToken string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call Google API", zap.String("url", rawURL), zap.Error(err))
		return fmt.Errorf("failed to call google api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Google API returned non-OK status", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("google api returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode google response: %w", err)
	}
	return nil
}
