package repository

import (
	"database/sql"
	"time"

	"replydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ReplyRepository interface {
	GetByID(id int64) (*models.Reply, error)
	GetByReviewID(reviewID int64) (*models.Reply, error)
	Create(reply *models.Reply) error
	Delete(id int64) error
	MarkApproved(id int64, approverID string, approvedAt time.Time) (bool, error)
	MarkRejected(id int64) (bool, error)
	MarkSent(id int64, sentAt time.Time) (bool, error)
	ListApprovedByUserID(userID string) ([]*models.Reply, error)
}

type replyRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewReplyRepository(db *sqlx.DB, logger *zap.Logger) ReplyRepository {
	return &replyRepository{db: db, logger: logger}
}

const replyJoin = `
	SELECT rr.id, rr.review_id, rr.generated_reply, rr.status, rr.approved_by, rr.approved_at, rr.sent_at, rr.created_at,
	       l.user_id, r.google_review_id, l.google_location_id
	FROM review_replies rr
	JOIN reviews r ON rr.review_id = r.id
	JOIN locations l ON r.location_id = l.id`

func (r *replyRepository) GetByID(id int64) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.Get(&reply, replyJoin+` WHERE rr.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) GetByReviewID(reviewID int64) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.Get(&reply, replyJoin+` WHERE rr.review_id = $1`, reviewID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) Create(reply *models.Reply) error {
	query := `INSERT INTO review_replies (review_id, generated_reply, status, approved_by, approved_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, reply.ReviewID, reply.GeneratedReply, reply.Status,
		reply.ApprovedBy, reply.ApprovedAt).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *replyRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM review_replies WHERE id = $1`, id)
	return err
}

// The status guards live in the WHERE clauses below: a transition from the
// wrong state updates zero rows, which callers treat as not-found. Terminal
// states can never move again.

func (r *replyRepository) MarkApproved(id int64, approverID string, approvedAt time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE review_replies SET status = $1, approved_by = $2, approved_at = $3 WHERE id = $4 AND status = $5`,
		models.ReplyStatusApproved, approverID, approvedAt, id, models.ReplyStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *replyRepository) MarkRejected(id int64) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE review_replies SET status = $1 WHERE id = $2 AND status = $3`,
		models.ReplyStatusRejected, id, models.ReplyStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *replyRepository) MarkSent(id int64, sentAt time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE review_replies SET status = $1, sent_at = $2 WHERE id = $3 AND status = $4`,
		models.ReplyStatusSent, sentAt, id, models.ReplyStatusApproved)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *replyRepository) ListApprovedByUserID(userID string) ([]*models.Reply, error) {
	var replies []*models.Reply
	query := replyJoin + ` WHERE l.user_id = $1 AND rr.status = $2 ORDER BY rr.id`
	if err := r.db.Select(&replies, query, userID, models.ReplyStatusApproved); err != nil {
		return nil, err
	}
	return replies, nil
}
