package service

import (
	"context"
	"errors"

	"replydesk/internal/repository"

	"go.uber.org/zap"
)

// CycleSummary reports what one full cycle accomplished.
type CycleSummary struct {
	NewReviewsFetched int `json:"newReviewsFetched"`
	RepliesGenerated  int `json:"repliesGenerated"`
	RepliesSent       int `json:"repliesSent"`
}

// CycleService runs ingest -> generate -> dispatch in sequence for one user.
type CycleService interface {
	RunCycle(ctx context.Context, userID string) (*CycleSummary, error)
}

type cycleService struct {
	reviews    ReviewService
	replies    ReplyService
	reviewRepo repository.ReviewRepository
	replyRepo  repository.ReplyRepository
	logger     *zap.Logger
}

func NewCycleService(reviews ReviewService, replies ReplyService, reviewRepo repository.ReviewRepository, replyRepo repository.ReplyRepository, logger *zap.Logger) CycleService {
	return &cycleService{
		reviews:    reviews,
		replies:    replies,
		reviewRepo: reviewRepo,
		replyRepo:  replyRepo,
		logger:     logger,
	}
}

// RunCycle tolerates partial failure: a failing item is logged and skipped,
// never aborting the batch. Each step re-derives its work set from persisted
// state, so an interrupted cycle resumes correctly on the next run and
// already-processed items are not reconsidered.
func (s *cycleService) RunCycle(ctx context.Context, userID string) (*CycleSummary, error) {
	summary := &CycleSummary{}

	newReviews, err := s.reviews.Ingest(ctx, userID)
	if err != nil {
		// Generation and dispatch can still make progress on previously
		// ingested state.
		s.logger.Error("Ingestion step failed", zap.String("user_id", userID), zap.Error(err))
	}
	summary.NewReviewsFetched = newReviews

	pendingReviews, err := s.reviewRepo.ListWithoutReply(userID)
	if err != nil {
		return summary, err
	}
	for _, review := range pendingReviews {
		if _, err := s.replies.Generate(ctx, userID, review.ID); err != nil {
			if errors.Is(err, ErrReplyExists) {
				continue // Lost a race with a concurrent cycle: fine
			}
			s.logger.Error("Failed to generate reply for review",
				zap.Int64("review_id", review.ID), zap.Error(err))
			continue
		}
		summary.RepliesGenerated++
	}

	approved, err := s.replyRepo.ListApprovedByUserID(userID)
	if err != nil {
		return summary, err
	}
	for _, reply := range approved {
		if _, err := s.replies.Send(ctx, userID, reply.ID); err != nil {
			s.logger.Error("Failed to send reply",
				zap.Int64("reply_id", reply.ID), zap.Error(err))
			continue
		}
		summary.RepliesSent++
	}

	s.logger.Info("Cycle finished",
		zap.String("user_id", userID),
		zap.Int("new_reviews", summary.NewReviewsFetched),
		zap.Int("replies_generated", summary.RepliesGenerated),
		zap.Int("replies_sent", summary.RepliesSent))
	return summary, nil
}
