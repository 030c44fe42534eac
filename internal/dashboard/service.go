// Package dashboard is the session controller: it drives the provider
// operations and keeps the resulting lists in the index.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/index"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// ErrMissingLocation is returned when an operation names no location.
var ErrMissingLocation = errors.New("location is required")

// Provider is the set of business profile operations the dashboard uses.
// *businessprofile.Client satisfies it.
type Provider interface {
	ListBusinesses(ctx context.Context) ([]domain.Business, error)
	FetchStats(ctx context.Context, locationID string) []domain.StatMetric
	FetchReviews(ctx context.Context, locationID string) []domain.Review
	FetchPosts(ctx context.Context, locationID string) []domain.Post
	ReplyToReview(ctx context.Context, locationID, reviewID, text string) error
	CreatePost(ctx context.Context, locationID, content, topicType string) error
}

// Overview is everything shown for one location.
type Overview struct {
	Business *domain.Business    `json:"business,omitempty"`
	Stats    []domain.StatMetric `json:"stats"`
	Summary  domain.StatsSummary `json:"summary"`
	Reviews  []domain.Review     `json:"reviews"`
	Posts    []domain.Post       `json:"posts"`
}

// Service owns the dashboard lists through the index.
type Service struct {
	provider Provider
	index    *index.MemoryIndex
	logger   logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewService creates a dashboard controller.
func NewService(provider Provider, idx *index.MemoryIndex, log logger.Logger) *Service {
	return &Service{
		provider: provider,
		index:    idx,
		logger:   log.With(logger.Component("dashboard")),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ReloadBusinesses runs the discovery walk and replaces the business list.
func (s *Service) ReloadBusinesses(ctx context.Context) ([]domain.Business, error) {
	businesses, err := s.provider.ListBusinesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload businesses: %w", err)
	}
	s.index.UpdateBusinesses(businesses)
	return s.index.GetAllBusinesses(), nil
}

// Businesses returns the last discovered businesses.
func (s *Service) Businesses() []domain.Business {
	return s.index.GetAllBusinesses()
}

// Reset forgets every list (another client id took over).
func (s *Service) Reset() {
	s.index.Clear()
}

func cleanLocation(locationID string) (string, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return "", ErrMissingLocation
	}
	return locationID, nil
}

// Overview fetches stats, reviews and posts of a location concurrently.
// Each part is best-effort and degrades to an empty list.
func (s *Service) Overview(ctx context.Context, locationID string) (Overview, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return Overview{}, err
	}

	var (
		g       errgroup.Group
		stats   []domain.StatMetric
		reviews []domain.Review
		posts   []domain.Post
	)
	g.Go(func() error {
		stats = s.provider.FetchStats(ctx, locationID)
		return nil
	})
	g.Go(func() error {
		reviews = s.provider.FetchReviews(ctx, locationID)
		return nil
	})
	g.Go(func() error {
		posts = s.provider.FetchPosts(ctx, locationID)
		return nil
	})
	_ = g.Wait()

	s.index.SetStats(locationID, stats)
	s.index.SetReviews(locationID, reviews)
	s.index.SetPosts(locationID, posts)

	ov := Overview{
		Stats:   s.index.GetStats(locationID),
		Summary: domain.Summarize(stats),
		Reviews: s.index.GetReviews(locationID),
		Posts:   s.index.GetPosts(locationID),
	}
	if b, ok := s.index.GetBusiness(locationID); ok {
		ov.Business = &b
	}
	return ov, nil
}

// Stats fetches the 7-day stats of a location.
func (s *Service) Stats(ctx context.Context, locationID string) ([]domain.StatMetric, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return nil, err
	}
	s.index.SetStats(locationID, s.provider.FetchStats(ctx, locationID))
	return s.index.GetStats(locationID), nil
}

// Reviews fetches the reviews of a location.
func (s *Service) Reviews(ctx context.Context, locationID string) ([]domain.Review, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return nil, err
	}
	s.index.SetReviews(locationID, s.provider.FetchReviews(ctx, locationID))
	return s.index.GetReviews(locationID), nil
}

// Posts fetches the local posts of a location.
func (s *Service) Posts(ctx context.Context, locationID string) ([]domain.Post, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return nil, err
	}
	s.index.SetPosts(locationID, s.provider.FetchPosts(ctx, locationID))
	return s.index.GetPosts(locationID), nil
}

// ReplyToReview publishes the reply, then records it on the known review.
// A review already answered is refused before any remote call.
func (s *Service) ReplyToReview(ctx context.Context, locationID, reviewID, text string) (domain.Review, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return domain.Review{}, err
	}
	if strings.TrimSpace(text) == "" {
		return domain.Review{}, domain.ErrEmptyReply
	}

	known := s.findReview(locationID, reviewID)
	if known != nil && known.HasReply() {
		return domain.Review{}, domain.ErrAlreadyReplied
	}

	providerID := reviewID
	if known != nil && known.ReviewID != "" {
		providerID = known.ReviewID
	}
	if err := s.provider.ReplyToReview(ctx, locationID, providerID, text); err != nil {
		return domain.Review{}, err
	}

	updated, err := s.index.ApplyReply(locationID, reviewID, text)
	if errors.Is(err, domain.ErrReviewNotFound) {
		// Replied to a review that was never listed here.
		s.logger.Debug("reply accepted for a review not in the index",
			logger.String("location", locationID),
			logger.String("review", reviewID))
		return domain.Review{ID: reviewID, ReviewID: providerID, Reply: text}, nil
	}
	if err != nil {
		return domain.Review{}, err
	}

	s.logger.Info("review reply published",
		logger.String("location", locationID),
		logger.String("review", reviewID))
	return updated, nil
}

func (s *Service) findReview(locationID, reviewID string) *domain.Review {
	for _, r := range s.index.GetReviews(locationID) {
		if r.ID == reviewID {
			return &r
		}
	}
	return nil
}

// CreatePost publishes a post and prepends its optimistic copy.
func (s *Service) CreatePost(ctx context.Context, locationID, content, topicType string) (domain.Post, error) {
	locationID, err := cleanLocation(locationID)
	if err != nil {
		return domain.Post{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.Post{}, domain.ErrEmptyPost
	}

	if err := s.provider.CreatePost(ctx, locationID, content, topicType); err != nil {
		return domain.Post{}, err
	}

	post := domain.NewOptimisticPost(s.newID(), content, s.now())
	s.index.PrependPost(locationID, post)

	s.logger.Info("post published", logger.String("location", locationID))
	return post, nil
}
