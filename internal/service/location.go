package service

import (
	"context"
	"fmt"

	"replydesk/internal/google_client"
	"replydesk/internal/models"
	"replydesk/internal/repository"

	"go.uber.org/zap"
)

// ConnectResult summarizes one discovery pass over the user's Google
// Business accounts.
type ConnectResult struct {
	TotalLocations int `json:"totalLocations"`
	NewLocations   int `json:"newLocations"`
}

type LocationService interface {
	List(userID string) ([]*models.Location, error)
	Connect(ctx context.Context, userID string) (*ConnectResult, error)
	SetPolicy(userID string, locationID int64, requiresApproval bool, customTone *string) error
}

type locationService struct {
	repo   repository.LocationRepository
	oauth  OAuthService
	google *google_client.Client
	logger *zap.Logger
}

func NewLocationService(repo repository.LocationRepository, oauth OAuthService, google *google_client.Client, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, oauth: oauth, google: google, logger: logger}
}

func (s *locationService) List(userID string) ([]*models.Location, error) {
	return s.repo.ListByUserID(userID)
}

// Connect walks the connected account's business accounts and upserts every
// discovered location. Rediscovery refreshes name/address/phone but never
// deactivates; a failing account is logged and skipped.
func (s *locationService) Connect(ctx context.Context, userID string) (*ConnectResult, error) {
	accessToken, err := s.oauth.ResolveAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.google.ListAccounts(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no business accounts found", ErrNotFound)
	}

	result := &ConnectResult{}
	for _, account := range accounts {
		locations, err := s.google.ListLocations(ctx, accessToken, account.Name)
		if err != nil {
			s.logger.Error("Failed to list locations for account",
				zap.String("account", account.Name), zap.Error(err))
			continue
		}

		for _, gl := range locations {
			created, err := s.upsert(userID, gl)
			if err != nil {
				s.logger.Error("Failed to upsert location",
					zap.String("google_location_id", gl.Name), zap.Error(err))
				continue
			}
			result.TotalLocations++
			if created {
				result.NewLocations++
			}
		}
	}

	s.logger.Info("Location discovery finished",
		zap.String("user_id", userID),
		zap.Int("total", result.TotalLocations),
		zap.Int("new", result.NewLocations))
	return result, nil
}

func (s *locationService) upsert(userID string, gl google_client.Location) (bool, error) {
	name := gl.LocationName
	if name == "" {
		name = "Location"
	}

	var phone *string
	if gl.PrimaryPhone != "" {
		phone = &gl.PrimaryPhone
	}
	address := gl.FormattedAddress()
	googleLocationID := gl.LocationID()

	existing, err := s.repo.GetByGoogleID(userID, googleLocationID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, s.repo.UpdateDetails(existing.ID, name, address, phone)
	}

	location := &models.Location{
		UserID:           userID,
		GoogleLocationID: googleLocationID,
		Name:             name,
		Address:          address,
		Phone:            phone,
		IsActive:         true,
	}
	return true, s.repo.Create(location)
}

func (s *locationService) SetPolicy(userID string, locationID int64, requiresApproval bool, customTone *string) error {
	location, err := s.repo.GetByID(locationID)
	if err != nil {
		return fmt.Errorf("failed to load location: %w", err)
	}
	if location == nil || location.UserID != userID {
		return fmt.Errorf("%w: location %d", ErrNotFound, locationID)
	}

	settings := &models.LocationSettings{
		LocationID:       locationID,
		RequiresApproval: requiresApproval,
		CustomTone:       customTone,
	}
	if err := s.repo.UpsertSettings(settings); err != nil {
		return fmt.Errorf("failed to save location policy: %w", err)
	}

	s.logger.Info("Location policy updated",
		zap.Int64("location_id", locationID),
		zap.Bool("requires_approval", requiresApproval))
	return nil
}
