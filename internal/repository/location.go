package repository

import (
	"database/sql"

	"replydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type LocationRepository interface {
	GetByID(id int64) (*models.Location, error)
	GetByGoogleID(userID, googleLocationID string) (*models.Location, error)
	ListByUserID(userID string) ([]*models.Location, error)
	ListActiveByUserID(userID string) ([]*models.Location, error)
	Create(location *models.Location) error
	UpdateDetails(id int64, name string, address, phone *string) error
	GetSettings(locationID int64) (*models.LocationSettings, error)
	UpsertSettings(settings *models.LocationSettings) error
}

type locationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLocationRepository(db *sqlx.DB, logger *zap.Logger) LocationRepository {
	return &locationRepository{db: db, logger: logger}
}

const locationColumns = `id, user_id, google_location_id, name, address, phone, is_active, created_at, updated_at`

func (r *locationRepository) GetByID(id int64) (*models.Location, error) {
	var location models.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	err := r.db.Get(&location, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) GetByGoogleID(userID, googleLocationID string) (*models.Location, error) {
	var location models.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE user_id = $1 AND google_location_id = $2`
	err := r.db.Get(&location, query, userID, googleLocationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) ListByUserID(userID string) ([]*models.Location, error) {
	var locations []*models.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE user_id = $1 ORDER BY id`
	if err := r.db.Select(&locations, query, userID); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) ListActiveByUserID(userID string) ([]*models.Location, error) {
	var locations []*models.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE user_id = $1 AND is_active = true ORDER BY id`
	if err := r.db.Select(&locations, query, userID); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Create(location *models.Location) error {
	query := `INSERT INTO locations (user_id, google_location_id, name, address, phone, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(query, location.UserID, location.GoogleLocationID, location.Name,
		location.Address, location.Phone, location.IsActive).
		Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt)
}

// UpdateDetails refreshes the discoverable attributes. is_active is left
// untouched: rediscovery never deactivates a location.
func (r *locationRepository) UpdateDetails(id int64, name string, address, phone *string) error {
	query := `UPDATE locations SET name = $1, address = $2, phone = $3, updated_at = now() WHERE id = $4`
	_, err := r.db.Exec(query, name, address, phone, id)
	return err
}

func (r *locationRepository) GetSettings(locationID int64) (*models.LocationSettings, error) {
	var settings models.LocationSettings
	query := `SELECT location_id, requires_approval, custom_tone FROM location_settings WHERE location_id = $1`
	err := r.db.Get(&settings, query, locationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Absent row: fall back to the default policy
		}
		return nil, err
	}
	return &settings, nil
}

func (r *locationRepository) UpsertSettings(settings *models.LocationSettings) error {
	query := `INSERT INTO location_settings (location_id, requires_approval, custom_tone)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (location_id) DO UPDATE SET
	              requires_approval = EXCLUDED.requires_approval,
	              custom_tone = EXCLUDED.custom_tone`
	_, err := r.db.Exec(query, settings.LocationID, settings.RequiresApproval, settings.CustomTone)
	return err
}
