package service

import (
	"context"
	"fmt"
	"time"

	"replydesk/internal/google_client"
	"replydesk/internal/models"
	"replydesk/internal/openai_client"
	"replydesk/internal/repository"

	"go.uber.org/zap"
)

// ReplyService generates reply drafts and drives them through the approval
// state machine to dispatch.
type ReplyService interface {
	Generate(ctx context.Context, userID string, reviewID int64) (*models.Reply, error)
	Regenerate(ctx context.Context, userID string, reviewID int64) (*models.Reply, error)
	Approve(userID string, replyID int64) (*models.Reply, error)
	Reject(userID string, replyID int64) (*models.Reply, error)
	Send(ctx context.Context, userID string, replyID int64) (*models.Reply, error)
}

type replyService struct {
	replies   repository.ReplyRepository
	reviews   repository.ReviewRepository
	locations repository.LocationRepository
	settings  SettingsService
	oauth     OAuthService
	openai    *openai_client.Client
	google    *google_client.Client
	logger    *zap.Logger
}

func NewReplyService(
	replies repository.ReplyRepository,
	reviews repository.ReviewRepository,
	locations repository.LocationRepository,
	settings SettingsService,
	oauth OAuthService,
	openai *openai_client.Client,
	google *google_client.Client,
	logger *zap.Logger,
) ReplyService {
	return &replyService{
		replies:   replies,
		reviews:   reviews,
		locations: locations,
		settings:  settings,
		oauth:     oauth,
		openai:    openai,
		google:    google,
		logger:    logger,
	}
}

// Generate drafts a reply for a review that has none yet. The draft's status
// comes from the owning location's approval policy: pending when approval is
// required (the default when no policy row exists), approved otherwise, with
// the approval timestamp set to generation time and no approver recorded.
func (s *replyService) Generate(ctx context.Context, userID string, reviewID int64) (*models.Reply, error) {
	review, err := s.ownedReview(userID, reviewID)
	if err != nil {
		return nil, err
	}

	existing, err := s.replies.GetByReviewID(reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reply: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: review %d", ErrReplyExists, reviewID)
	}

	return s.draft(ctx, userID, review)
}

// Regenerate replaces a rejected reply with a fresh draft. Any other state
// (none, pending, approved, sent) refuses: regeneration never discards work
// in flight or already published.
func (s *replyService) Regenerate(ctx context.Context, userID string, reviewID int64) (*models.Reply, error) {
	review, err := s.ownedReview(userID, reviewID)
	if err != nil {
		return nil, err
	}

	existing, err := s.replies.GetByReviewID(reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reply: %w", err)
	}
	if existing == nil || existing.Status != models.ReplyStatusRejected {
		return nil, fmt.Errorf("%w: review %d has no rejected reply", ErrNotFound, reviewID)
	}
	if err := s.replies.Delete(existing.ID); err != nil {
		return nil, fmt.Errorf("failed to remove rejected reply: %w", err)
	}

	return s.draft(ctx, userID, review)
}

func (s *replyService) draft(ctx context.Context, userID string, review *models.Review) (*models.Reply, error) {
	apiKey, err := s.settings.OpenAIKey(userID)
	if err != nil {
		return nil, err
	}

	userSettings, err := s.settings.Get(userID)
	if err != nil {
		return nil, err
	}

	locationSettings, err := s.locations.GetSettings(review.LocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location policy: %w", err)
	}

	tone := resolveTone(locationSettings, userSettings)

	reviewText := ""
	if review.ReviewText != nil {
		reviewText = *review.ReviewText
	}
	prompt := BuildPrompt(review.LocationName, review.Rating, review.AuthorName, reviewText, tone, userSettings.ReplyLanguage)

	text, err := s.openai.Complete(ctx, apiKey, SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	requiresApproval := locationSettings == nil || locationSettings.RequiresApproval

	reply := &models.Reply{
		ReviewID:       review.ID,
		GeneratedReply: text,
		Status:         models.ReplyStatusPending,
	}
	if !requiresApproval {
		now := time.Now().UTC()
		reply.Status = models.ReplyStatusApproved
		reply.ApprovedAt = &now
	}

	if err := s.replies.Create(reply); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	s.logger.Info("Reply generated",
		zap.Int64("review_id", review.ID),
		zap.Int64("reply_id", reply.ID),
		zap.String("status", reply.Status))
	return reply, nil
}

// resolveTone: location custom tone, else global tone, else the default.
func resolveTone(locationSettings *models.LocationSettings, userSettings *models.UserSettings) string {
	if locationSettings != nil && locationSettings.CustomTone != nil && *locationSettings.CustomTone != "" {
		return *locationSettings.CustomTone
	}
	if userSettings != nil && userSettings.GlobalTone != nil && *userSettings.GlobalTone != "" {
		return *userSettings.GlobalTone
	}
	return DefaultTone
}

// Approve moves a pending reply to approved, recording who approved it and
// when.
func (s *replyService) Approve(userID string, replyID int64) (*models.Reply, error) {
	reply, err := s.ownedReply(userID, replyID)
	if err != nil {
		return nil, err
	}

	updated, err := s.replies.MarkApproved(reply.ID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to approve reply: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: reply %d is not pending", ErrNotFound, replyID)
	}

	s.logger.Info("Reply approved", zap.Int64("reply_id", replyID), zap.String("approver", userID))
	return s.replies.GetByID(replyID)
}

// Reject moves a pending reply to rejected, a terminal state.
func (s *replyService) Reject(userID string, replyID int64) (*models.Reply, error) {
	reply, err := s.ownedReply(userID, replyID)
	if err != nil {
		return nil, err
	}

	updated, err := s.replies.MarkRejected(reply.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject reply: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: reply %d is not pending", ErrNotFound, replyID)
	}

	s.logger.Info("Reply rejected", zap.Int64("reply_id", replyID))
	return s.replies.GetByID(replyID)
}

// Send publishes an approved reply to Google and marks it sent. Any failure
// leaves the reply approved; the next attempt starts from the same state.
func (s *replyService) Send(ctx context.Context, userID string, replyID int64) (*models.Reply, error) {
	reply, err := s.ownedReply(userID, replyID)
	if err != nil {
		return nil, err
	}
	if reply.Status != models.ReplyStatusApproved {
		return nil, fmt.Errorf("%w: reply %d is not approved", ErrNotFound, replyID)
	}

	accessToken, err := s.oauth.ResolveAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.google.PostReply(ctx, accessToken, reply.GoogleLocationID, reply.GoogleReviewID, reply.GeneratedReply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	updated, err := s.replies.MarkSent(reply.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mark reply sent: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: reply %d is no longer approved", ErrNotFound, replyID)
	}

	s.logger.Info("Reply sent", zap.Int64("reply_id", replyID))
	return s.replies.GetByID(replyID)
}

func (s *replyService) ownedReview(userID string, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review == nil || review.UserID != userID {
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
	}
	return review, nil
}

func (s *replyService) ownedReply(userID string, replyID int64) (*models.Reply, error) {
	reply, err := s.replies.GetByID(replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reply: %w", err)
	}
	if reply == nil || reply.UserID != userID {
		return nil, fmt.Errorf("%w: reply %d", ErrNotFound, replyID)
	}
	return reply, nil
}
