// Package classifier maps post text to a zone, zone memberships and
// descriptive tags. It layers two remote AI calls over a deterministic
// keyword-scoring fallback.
package classifier

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"zonegram/internal/domain"
)

// TagExtractor produces descriptive tags for a piece of text.
type TagExtractor interface {
	ExtractTags(ctx context.Context, text string) ([]string, error)
}

// ZoneClassifier assigns one of the two built-in zones to a piece of text.
type ZoneClassifier interface {
	ClassifyZone(ctx context.Context, text string) (domain.Zone, error)
}

// Classifier handles content classification
type Classifier struct {
	tags   TagExtractor
	zones  ZoneClassifier
	logger *slog.Logger
}

// New creates a new Classifier. Either client may be nil, in which case
// every request takes the fallback path.
func New(tags TagExtractor, zones ZoneClassifier, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{tags: tags, zones: zones, logger: logger}
}

// Classify analyzes text and returns its zone, zone memberships and tags.
// Both remote calls must succeed for a remote result; any failure on either
// call switches the whole request to keyword scoring. No partial results are
// used and no retries are made. The returned error is non-nil only when ctx
// is cancelled; a remote failure is recovered silently.
func (c *Classifier) Classify(ctx context.Context, text string, customZone string) (*domain.ClassificationResult, error) {
	if c.tags == nil || c.zones == nil {
		c.logger.Info("remote classification unavailable, using keyword fallback")
		return fallbackClassify(text, customZone), nil
	}

	var (
		tags []string
		zone domain.Zone
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = c.tags.ExtractTags(gctx, text)
		return err
	})
	g.Go(func() error {
		var err error
		zone, err = c.zones.ClassifyZone(gctx, text)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Info("remote classification failed, using keyword fallback", "error", err)
		return fallbackClassify(text, customZone), nil
	}

	return &domain.ClassificationResult{
		Zone:   zone,
		Zones:  composeZones(zone, customZone),
		Tags:   tags,
		Source: domain.SourceRemote,
	}, nil
}

// composeZones builds the membership list: the primary zone first, then the
// custom zone if one was declared. Duplicates are dropped case-insensitively,
// keeping first appearance.
func composeZones(primary domain.Zone, customZone string) []domain.Zone {
	zones := []domain.Zone{primary}
	if customZone != "" && !domain.EqualZones(customZone, primary) {
		zones = append(zones, customZone)
	}
	return zones
}
