package classifier

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegram/internal/domain"
)

type fakeTagger struct {
	tags []string
	err  error
}

func (f fakeTagger) ExtractTags(ctx context.Context, _ string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.tags, nil
}

type fakeZoner struct {
	zone domain.Zone
	err  error
}

func (f fakeZoner) ClassifyZone(ctx context.Context, _ string) (domain.Zone, error) {
	if f.err != nil {
		return "", f.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.zone, nil
}

func quiet() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var errRemote = errors.New("boom")

func TestClassifyRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("uses both remote results", func(t *testing.T) {
		clf := New(fakeTagger{tags: []string{"typescript", "webdev"}}, fakeZoner{zone: domain.ZoneEntertainment}, quiet())

		result, err := clf.Classify(ctx, "watching a coding stream", "")
		require.NoError(t, err)
		assert.Equal(t, domain.ZoneEntertainment, result.Zone)
		assert.Equal(t, []domain.Zone{"entertainment"}, result.Zones)
		assert.Equal(t, []string{"typescript", "webdev"}, result.Tags)
		assert.Equal(t, domain.SourceRemote, result.Source)
	})

	t.Run("appends custom zone", func(t *testing.T) {
		clf := New(fakeTagger{}, fakeZoner{zone: domain.ZoneProductivity}, quiet())

		result, err := clf.Classify(ctx, "deep work", "focus-zone")
		require.NoError(t, err)
		assert.Equal(t, []domain.Zone{"productivity", "focus-zone"}, result.Zones)
	})

	t.Run("dedups custom zone equal to primary", func(t *testing.T) {
		clf := New(fakeTagger{}, fakeZoner{zone: domain.ZoneProductivity}, quiet())

		result, err := clf.Classify(ctx, "deep work", "PRODUCTIVITY")
		require.NoError(t, err)
		assert.Equal(t, []domain.Zone{"productivity"}, result.Zones)
	})
}

func TestClassifyFallsBack(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		tags  TagExtractor
		zones ZoneClassifier
	}{
		{"tagging fails", fakeTagger{err: errRemote}, fakeZoner{zone: domain.ZoneEntertainment}},
		{"zone classification fails", fakeTagger{tags: []string{"a"}}, fakeZoner{err: errRemote}},
		{"both fail", fakeTagger{err: errRemote}, fakeZoner{err: errRemote}},
		{"clients not configured", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clf := New(tc.tags, tc.zones, quiet())

			result, err := clf.Classify(ctx, "party and music all weekend", "")
			require.NoError(t, err)
			assert.Equal(t, domain.SourceFallback, result.Source)
			// No partial application: remote tags never leak into fallback results.
			assert.Equal(t, domain.ZoneEntertainment, result.Zone)
			assert.Equal(t, []string{"party", "music", "weekend"}, result.Tags)
		})
	}
}

func TestClassifyContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clf := New(fakeTagger{}, fakeZoner{zone: domain.ZoneProductivity}, quiet())
	_, err := clf.Classify(ctx, "anything", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackClassify(t *testing.T) {
	t.Run("empty text defaults to productivity", func(t *testing.T) {
		result := fallbackClassify("", "")
		assert.Equal(t, domain.ZoneProductivity, result.Zone)
		assert.Equal(t, []domain.Zone{"productivity"}, result.Zones)
		assert.Empty(t, result.Tags)
		assert.Equal(t, domain.SourceFallback, result.Source)
	})

	t.Run("tie goes to productivity", func(t *testing.T) {
		// one keyword from each list
		result := fallbackClassify("study then relax", "")
		assert.Equal(t, domain.ZoneProductivity, result.Zone)
	})

	t.Run("entertainment wins on higher score", func(t *testing.T) {
		result := fallbackClassify("party, music and dancing at the festival", "")
		assert.Equal(t, domain.ZoneEntertainment, result.Zone)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		result := fallbackClassify("CODING and PROGRAMMING", "")
		assert.Equal(t, domain.ZoneProductivity, result.Zone)
		assert.Equal(t, []string{"coding", "programming"}, result.Tags)
	})

	t.Run("custom zone appended on fallback", func(t *testing.T) {
		result := fallbackClassify("deep focus session", "focus-zone")
		assert.Equal(t, []domain.Zone{"productivity", "focus-zone"}, result.Zones)
	})

	t.Run("tags capped at five in fixed list order", func(t *testing.T) {
		result := fallbackClassify("work study learning fun party game play music", "")
		// productivity keywords come first in the combined order
		assert.Equal(t, []string{"work", "study", "learning", "fun", "party"}, result.Tags)
	})

	t.Run("deterministic for the same input", func(t *testing.T) {
		a := fallbackClassify("fun work weekend planning", "")
		b := fallbackClassify("fun work weekend planning", "")
		assert.Equal(t, a, b)
	})
}
