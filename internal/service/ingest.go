package service

import (
	"context"
	"errors"
	"fmt"

	"replydesk/internal/google_client"
	"replydesk/internal/models"
	"replydesk/internal/repository"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type ReviewService interface {
	Ingest(ctx context.Context, userID string) (int, error)
	List(userID string) ([]*models.ReviewDetail, error)
}

type reviewService struct {
	reviews   repository.ReviewRepository
	locations repository.LocationRepository
	oauth     OAuthService
	google    *google_client.Client
	logger    *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, locations repository.LocationRepository, oauth OAuthService, google *google_client.Client, logger *zap.Logger) ReviewService {
	return &reviewService{reviews: reviews, locations: locations, oauth: oauth, google: google, logger: logger}
}

// Ingest pulls reviews for every active location and stores the ones not
// seen before, keyed by the external review identifier. One location failing
// does not abort the others; the returned count covers confirmed inserts
// only. Re-running against an unchanged source inserts nothing.
func (s *reviewService) Ingest(ctx context.Context, userID string) (int, error) {
	accessToken, err := s.oauth.ResolveAccessToken(ctx, userID)
	if err != nil {
		return 0, err
	}

	locations, err := s.locations.ListActiveByUserID(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list active locations: %w", err)
	}

	totalNew := 0
	for _, location := range locations {
		reviews, err := s.google.ListReviews(ctx, accessToken, location.GoogleLocationID)
		if err != nil {
			s.logger.Error("Failed to fetch reviews for location",
				zap.Int64("location_id", location.ID), zap.Error(err))
			continue
		}

		for _, gr := range reviews {
			inserted, err := s.storeReview(location.ID, gr)
			if err != nil {
				s.logger.Error("Failed to store review",
					zap.String("google_review_id", gr.ReviewID), zap.Error(err))
				continue
			}
			if inserted {
				totalNew++
			}
		}
	}

	s.logger.Info("Review ingestion finished",
		zap.String("user_id", userID), zap.Int("new_reviews", totalNew))
	return totalNew, nil
}

func (s *reviewService) storeReview(locationID int64, gr google_client.Review) (bool, error) {
	exists, err := s.reviews.ExistsByGoogleID(gr.ReviewID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	authorName := "Anonyme"
	var photoURL *string
	if gr.Reviewer != nil {
		if gr.Reviewer.DisplayName != "" {
			authorName = gr.Reviewer.DisplayName
		}
		if gr.Reviewer.ProfilePhotoURL != "" {
			photoURL = &gr.Reviewer.ProfilePhotoURL
		}
	}

	var reviewText *string
	if gr.Comment != "" {
		reviewText = &gr.Comment
	}

	review := &models.Review{
		LocationID:     locationID,
		GoogleReviewID: gr.ReviewID,
		AuthorName:     authorName,
		AuthorPhotoURL: photoURL,
		Rating:         google_client.StarToRating(gr.StarRating),
		ReviewText:     reviewText,
		ReviewDate:     gr.CreateTime,
	}

	if err := s.reviews.Create(review); err != nil {
		// A racing cycle may insert the same external id between the
		// existence check and the insert; the unique constraint is the
		// actual correctness mechanism and the loser just skips.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *reviewService) List(userID string) ([]*models.ReviewDetail, error) {
	return s.reviews.ListDetailedByUserID(userID)
}
