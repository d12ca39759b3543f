package feed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"

	"zonegram/internal/domain"
)

// Lister is the read side of the post store.
type Lister interface {
	ListPosts(limit, offset int) ([]domain.Post, error)
}

// Cache geometry: the recent-posts query stays fresh for five minutes
// unless a store change invalidates it first.
const (
	feedKey   = "posts:recent"
	freshFor  = 5 * time.Minute
	feedLimit = 100
)

// Service serves the visible post list, caching the underlying store query.
type Service struct {
	store  Lister
	cache  *otter.Cache[string, []domain.Post]
	logger *slog.Logger
}

// NewService creates a feed Service over a post store.
func NewService(store Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cache := otter.Must(&otter.Options[string, []domain.Post]{
		MaximumSize:      16,
		ExpiryCalculator: otter.ExpiryWriting[string, []domain.Post](freshFor),
	})
	return &Service{store: store, cache: cache, logger: logger}
}

// Posts returns the recent post list, from cache when fresh. Store failures
// wrap domain.ErrDataFetch and are never retried automatically.
func (s *Service) Posts() ([]domain.Post, error) {
	if posts, ok := s.cache.GetIfPresent(feedKey); ok {
		return posts, nil
	}

	posts, err := s.store.ListPosts(feedLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataFetch, err)
	}

	s.cache.Set(feedKey, posts)
	return posts, nil
}

// Visible returns the posts for the active zone. An empty zone skips
// filtering; the second return value reports whether a filter was applied.
func (s *Service) Visible(active domain.Zone) ([]domain.Post, bool, error) {
	posts, err := s.Posts()
	if err != nil {
		return nil, false, err
	}
	if active == "" {
		return posts, false, nil
	}
	return Filter(posts, active), true, nil
}

// Invalidate drops the cached query. Called on store change notifications.
func (s *Service) Invalidate() {
	s.cache.Invalidate(feedKey)
}

// Watch invalidates the cache for every signal on ch until ch is closed.
// The signal is an invalidation, not a patch; the next read refetches.
func (s *Service) Watch(ch <-chan struct{}) {
	go func() {
		for range ch {
			s.logger.Debug("post store changed, invalidating feed cache")
			s.Invalidate()
		}
	}()
}
