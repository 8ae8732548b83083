package models

import "time"

// Review is one customer review, created once by ingestion and never mutated.
type Review struct {
	ID             int64     `db:"id" json:"id"`
	LocationID     int64     `db:"location_id" json:"location_id"`
	GoogleReviewID string    `db:"google_review_id" json:"google_review_id"`
	AuthorName     string    `db:"author_name" json:"author_name"`
	AuthorPhotoURL *string   `db:"author_photo_url" json:"author_photo_url,omitempty"`
	Rating         int       `db:"rating" json:"rating"`
	ReviewText     *string   `db:"review_text" json:"review_text,omitempty"`
	ReviewDate     time.Time `db:"review_date" json:"review_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Fields computed from joined queries.
	UserID       string `db:"user_id" json:"-"`
	LocationName string `db:"location_name" json:"location_name,omitempty"`
}

// ReviewDetail is a review joined with its reply (if any) for the dashboard
// listing.
type ReviewDetail struct {
	Review
	ReplyID     *int64     `db:"reply_id" json:"reply_id,omitempty"`
	ReplyText   *string    `db:"reply_text" json:"reply_text,omitempty"`
	ReplyStatus *string    `db:"reply_status" json:"reply_status,omitempty"`
	ReplySentAt *time.Time `db:"reply_sent_at" json:"reply_sent_at,omitempty"`
}
