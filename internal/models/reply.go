package models

import "time"

// Reply statuses. Transitions are one-directional:
// pending -> approved -> sent, pending -> rejected.
// rejected and sent are terminal.
const (
	ReplyStatusPending  = "pending"
	ReplyStatusApproved = "approved"
	ReplyStatusRejected = "rejected"
	ReplyStatusSent     = "sent"
)

// Reply is a generated or sent response to a review. At most one reply exists
// per review (unique constraint on review_id).
type Reply struct {
	ID             int64      `db:"id" json:"id"`
	ReviewID       int64      `db:"review_id" json:"review_id"`
	GeneratedReply string     `db:"generated_reply" json:"generated_reply"`
	Status         string     `db:"status" json:"status"`
	ApprovedBy     *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`

	// Fields computed from joined queries (used by dispatch).
	UserID           string `db:"user_id" json:"-"`
	GoogleReviewID   string `db:"google_review_id" json:"-"`
	GoogleLocationID string `db:"google_location_id" json:"-"`
}

// Terminal reports whether the reply's status admits no further transitions.
func (r *Reply) Terminal() bool {
	return r.Status == ReplyStatusRejected || r.Status == ReplyStatusSent
}
