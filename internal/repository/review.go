package repository

import (
	"database/sql"

	"replydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	GetByID(id int64) (*models.Review, error)
	ExistsByGoogleID(googleReviewID string) (bool, error)
	Create(review *models.Review) error
	ListWithoutReply(userID string) ([]*models.Review, error)
	ListDetailedByUserID(userID string) ([]*models.ReviewDetail, error)
}

type reviewRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewReviewRepository(db *sqlx.DB, logger *zap.Logger) ReviewRepository {
	return &reviewRepository{db: db, logger: logger}
}

func (r *reviewRepository) GetByID(id int64) (*models.Review, error) {
	var review models.Review
	query := `SELECT r.id, r.location_id, r.google_review_id, r.author_name, r.author_photo_url, r.rating, r.review_text, r.review_date, r.created_at,
	                 l.user_id, l.name AS location_name
	          FROM reviews r
	          JOIN locations l ON r.location_id = l.id
	          WHERE r.id = $1`
	err := r.db.Get(&review, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ExistsByGoogleID(googleReviewID string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM reviews WHERE google_review_id = $1)`, googleReviewID)
	return exists, err
}

func (r *reviewRepository) Create(review *models.Review) error {
	query := `INSERT INTO reviews (location_id, google_review_id, author_name, author_photo_url, rating, review_text, review_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	return r.db.QueryRowx(query, review.LocationID, review.GoogleReviewID, review.AuthorName,
		review.AuthorPhotoURL, review.Rating, review.ReviewText, review.ReviewDate).
		Scan(&review.ID, &review.CreatedAt)
}

// ListWithoutReply returns the user's reviews with no reply row at all.
// Rejected replies keep their review out of this set; regeneration is an
// explicit operation, not something the cycle does on its own.
func (r *reviewRepository) ListWithoutReply(userID string) ([]*models.Review, error) {
	var reviews []*models.Review
	query := `SELECT r.id, r.location_id, r.google_review_id, r.author_name, r.author_photo_url, r.rating, r.review_text, r.review_date, r.created_at,
	                 l.user_id, l.name AS location_name
	          FROM reviews r
	          JOIN locations l ON r.location_id = l.id
	          LEFT JOIN review_replies rr ON rr.review_id = r.id
	          WHERE l.user_id = $1 AND rr.id IS NULL
	          ORDER BY r.review_date`
	if err := r.db.Select(&reviews, query, userID); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ListDetailedByUserID(userID string) ([]*models.ReviewDetail, error) {
	var reviews []*models.ReviewDetail
	query := `SELECT r.id, r.location_id, r.google_review_id, r.author_name, r.author_photo_url, r.rating, r.review_text, r.review_date, r.created_at,
	                 l.user_id, l.name AS location_name,
	                 rr.id AS reply_id, rr.generated_reply AS reply_text, rr.status AS reply_status, rr.sent_at AS reply_sent_at
	          FROM reviews r
	          JOIN locations l ON r.location_id = l.id
	          LEFT JOIN review_replies rr ON rr.review_id = r.id
	          WHERE l.user_id = $1
	          ORDER BY r.review_date DESC`
	if err := r.db.Select(&reviews, query, userID); err != nil {
		return nil, err
	}
	return reviews, nil
}
