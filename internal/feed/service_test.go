package feed

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegram/internal/domain"
)

type countingLister struct {
	posts []domain.Post
	err   error
	calls int
}

func (c *countingLister) ListPosts(_, _ int) ([]domain.Post, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.posts, nil
}

func quiet() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestServiceCachesPosts(t *testing.T) {
	lister := &countingLister{posts: []domain.Post{{ID: "1", Zone: "productivity"}}}
	svc := NewService(lister, quiet())

	first, err := svc.Posts()
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, lister.calls)

	// Served from cache, no second store hit.
	_, err = svc.Posts()
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	svc.Invalidate()
	_, err = svc.Posts()
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestServiceStoreError(t *testing.T) {
	lister := &countingLister{err: errors.New("disk on fire")}
	svc := NewService(lister, quiet())

	_, err := svc.Posts()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataFetch)

	// No automatic retry beyond the next explicit read.
	assert.Equal(t, 1, lister.calls)
}

func TestServiceVisible(t *testing.T) {
	lister := &countingLister{posts: []domain.Post{
		{ID: "1", Zone: "productivity"},
		{ID: "2", Zone: "entertainment"},
	}}
	svc := NewService(lister, quiet())

	t.Run("empty zone returns everything unfiltered", func(t *testing.T) {
		posts, filtered, err := svc.Visible("")
		require.NoError(t, err)
		assert.False(t, filtered)
		assert.Len(t, posts, 2)
	})

	t.Run("active zone filters", func(t *testing.T) {
		posts, filtered, err := svc.Visible("entertainment")
		require.NoError(t, err)
		assert.True(t, filtered)
		require.Len(t, posts, 1)
		assert.Equal(t, "2", posts[0].ID)
	})
}

func TestServiceWatchInvalidates(t *testing.T) {
	lister := &countingLister{posts: []domain.Post{{ID: "1"}}}
	svc := NewService(lister, quiet())

	ch := make(chan struct{}, 1)
	svc.Watch(ch)

	_, err := svc.Posts()
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	ch <- struct{}{}
	close(ch)

	assert.Eventually(t, func() bool {
		_, err := svc.Posts()
		return err == nil && lister.calls >= 2
	}, time.Second, time.Millisecond)
}
