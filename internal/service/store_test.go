package service

import (
	"sort"
	"time"

	"replydesk/internal/models"

	"github.com/lib/pq"
)

// fakeStore is an in-memory implementation of all repository interfaces,
// enforcing the same uniqueness rules and status guards as the SQL layer.
type fakeStore struct {
	settings  map[string]*models.UserSettings
	locations map[int64]*models.Location
	policies  map[int64]*models.LocationSettings
	reviews   map[int64]*models.Review
	replies   map[int64]*models.Reply

	nextLocationID int64
	nextReviewID   int64
	nextReplyID    int64

	// skipExistsCheck makes ExistsByGoogleID always report false, so the
	// insert-time unique violation path can be exercised.
	skipExistsCheck bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings:  make(map[string]*models.UserSettings),
		locations: make(map[int64]*models.Location),
		policies:  make(map[int64]*models.LocationSettings),
		reviews:   make(map[int64]*models.Review),
		replies:   make(map[int64]*models.Reply),
	}
}

// SettingsRepository

func (f *fakeStore) GetByUserID(userID string) (*models.UserSettings, error) {
	s, ok := f.settings[userID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) Upsert(settings *models.UserSettings) error {
	copied := *settings
	copied.UpdatedAt = time.Now().UTC()
	if _, ok := f.settings[settings.UserID]; !ok {
		copied.CreatedAt = copied.UpdatedAt
	}
	f.settings[settings.UserID] = &copied
	return nil
}

func (f *fakeStore) ListUserIDs() ([]string, error) {
	ids := make([]string, 0, len(f.settings))
	for id := range f.settings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// LocationRepository

func (f *fakeStore) GetByID(id int64) (*models.Location, error) {
	l, ok := f.locations[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func (f *fakeStore) GetByGoogleID(userID, googleLocationID string) (*models.Location, error) {
	for _, l := range f.locations {
		if l.UserID == userID && l.GoogleLocationID == googleLocationID {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByUserID(userID string) ([]*models.Location, error) {
	var out []*models.Location
	for _, l := range f.sortedLocations() {
		if l.UserID == userID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveByUserID(userID string) ([]*models.Location, error) {
	var out []*models.Location
	for _, l := range f.sortedLocations() {
		if l.UserID == userID && l.IsActive {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(location *models.Location) error {
	f.nextLocationID++
	location.ID = f.nextLocationID
	location.CreatedAt = time.Now().UTC()
	location.UpdatedAt = location.CreatedAt
	copied := *location
	f.locations[location.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateDetails(id int64, name string, address, phone *string) error {
	l, ok := f.locations[id]
	if !ok {
		return nil
	}
	l.Name = name
	l.Address = address
	l.Phone = phone
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) GetSettings(locationID int64) (*models.LocationSettings, error) {
	p, ok := f.policies[locationID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) UpsertSettings(settings *models.LocationSettings) error {
	copied := *settings
	f.policies[settings.LocationID] = &copied
	return nil
}

// ReviewRepository

func (f *fakeStore) GetReviewByID(id int64) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	return f.joinReview(r), nil
}

func (f *fakeStore) ExistsByGoogleID(googleReviewID string) (bool, error) {
	if f.skipExistsCheck {
		return false, nil
	}
	for _, r := range f.reviews {
		if r.GoogleReviewID == googleReviewID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateReview(review *models.Review) error {
	for _, r := range f.reviews {
		if r.GoogleReviewID == review.GoogleReviewID {
			return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	f.nextReviewID++
	review.ID = f.nextReviewID
	review.CreatedAt = time.Now().UTC()
	copied := *review
	f.reviews[review.ID] = &copied
	return nil
}

func (f *fakeStore) ListWithoutReply(userID string) ([]*models.Review, error) {
	var out []*models.Review
	for _, r := range f.sortedReviews() {
		if f.reviewOwner(r) != userID {
			continue
		}
		if f.replyForReview(r.ID) != nil {
			continue
		}
		out = append(out, f.joinReview(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReviewDate.Before(out[j].ReviewDate) })
	return out, nil
}

func (f *fakeStore) ListDetailedByUserID(userID string) ([]*models.ReviewDetail, error) {
	var out []*models.ReviewDetail
	for _, r := range f.sortedReviews() {
		if f.reviewOwner(r) != userID {
			continue
		}
		detail := &models.ReviewDetail{Review: *f.joinReview(r)}
		if reply := f.replyForReview(r.ID); reply != nil {
			detail.ReplyID = &reply.ID
			detail.ReplyText = &reply.GeneratedReply
			detail.ReplyStatus = &reply.Status
			detail.ReplySentAt = reply.SentAt
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].ReviewDate.Before(out[i].ReviewDate) })
	return out, nil
}

// ReplyRepository

func (f *fakeStore) GetReplyByID(id int64) (*models.Reply, error) {
	r, ok := f.replies[id]
	if !ok {
		return nil, nil
	}
	return f.joinReply(r), nil
}

func (f *fakeStore) GetByReviewID(reviewID int64) (*models.Reply, error) {
	r := f.replyForReview(reviewID)
	if r == nil {
		return nil, nil
	}
	return f.joinReply(r), nil
}

func (f *fakeStore) CreateReply(reply *models.Reply) error {
	if f.replyForReview(reply.ReviewID) != nil {
		return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	f.nextReplyID++
	reply.ID = f.nextReplyID
	reply.CreatedAt = time.Now().UTC()
	copied := *reply
	f.replies[reply.ID] = &copied
	return nil
}

func (f *fakeStore) Delete(id int64) error {
	delete(f.replies, id)
	return nil
}

func (f *fakeStore) MarkApproved(id int64, approverID string, approvedAt time.Time) (bool, error) {
	r, ok := f.replies[id]
	if !ok || r.Status != models.ReplyStatusPending {
		return false, nil
	}
	r.Status = models.ReplyStatusApproved
	r.ApprovedBy = &approverID
	r.ApprovedAt = &approvedAt
	return true, nil
}

func (f *fakeStore) MarkRejected(id int64) (bool, error) {
	r, ok := f.replies[id]
	if !ok || r.Status != models.ReplyStatusPending {
		return false, nil
	}
	r.Status = models.ReplyStatusRejected
	return true, nil
}

func (f *fakeStore) MarkSent(id int64, sentAt time.Time) (bool, error) {
	r, ok := f.replies[id]
	if !ok || r.Status != models.ReplyStatusApproved {
		return false, nil
	}
	r.Status = models.ReplyStatusSent
	r.SentAt = &sentAt
	return true, nil
}

func (f *fakeStore) ListApprovedByUserID(userID string) ([]*models.Reply, error) {
	var out []*models.Reply
	for _, r := range f.sortedReplies() {
		if r.Status != models.ReplyStatusApproved {
			continue
		}
		joined := f.joinReply(r)
		if joined.UserID != userID {
			continue
		}
		out = append(out, joined)
	}
	return out, nil
}

// helpers

func (f *fakeStore) reviewOwner(r *models.Review) string {
	if l, ok := f.locations[r.LocationID]; ok {
		return l.UserID
	}
	return ""
}

func (f *fakeStore) joinReview(r *models.Review) *models.Review {
	copied := *r
	if l, ok := f.locations[r.LocationID]; ok {
		copied.UserID = l.UserID
		copied.LocationName = l.Name
	}
	return &copied
}

func (f *fakeStore) joinReply(r *models.Reply) *models.Reply {
	copied := *r
	if review, ok := f.reviews[r.ReviewID]; ok {
		copied.GoogleReviewID = review.GoogleReviewID
		if l, ok := f.locations[review.LocationID]; ok {
			copied.UserID = l.UserID
			copied.GoogleLocationID = l.GoogleLocationID
		}
	}
	return &copied
}

func (f *fakeStore) replyForReview(reviewID int64) *models.Reply {
	for _, r := range f.replies {
		if r.ReviewID == reviewID {
			return r
		}
	}
	return nil
}

func (f *fakeStore) sortedLocations() []*models.Location {
	out := make([]*models.Location, 0, len(f.locations))
	for _, l := range f.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) sortedReviews() []*models.Review {
	out := make([]*models.Review, 0, len(f.reviews))
	for _, r := range f.reviews {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// The repository interfaces share method names (GetByID, Create), so thin
// wrappers dispatch to the per-entity implementations above. fakeStore itself
// satisfies SettingsRepository and LocationRepository directly.

type fakeReviewRepo struct{ *fakeStore }

func (f fakeReviewRepo) GetByID(id int64) (*models.Review, error) { return f.GetReviewByID(id) }
func (f fakeReviewRepo) Create(review *models.Review) error       { return f.CreateReview(review) }

type fakeReplyRepo struct{ *fakeStore }

func (f fakeReplyRepo) GetByID(id int64) (*models.Reply, error) { return f.GetReplyByID(id) }
func (f fakeReplyRepo) Create(reply *models.Reply) error        { return f.CreateReply(reply) }

func (f *fakeStore) sortedReplies() []*models.Reply {
	out := make([]*models.Reply, 0, len(f.replies))
	for _, r := range f.replies {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
