package classifier

import (
	"strings"

	"zonegram/internal/domain"
)

// Keyword lists for the fallback scorer. Matching is case-insensitive
// substring search; the two lists are disjoint.
var productivityKeywords = []string{
	"work", "study", "productivity", "learning", "coding", "programming",
	"development", "focus", "goals", "achievement", "progress", "discipline",
	"organization", "planning", "success", "improvement", "professional",
	"education", "skills", "growth", "efficiency", "workspace",
}

var entertainmentKeywords = []string{
	"fun", "party", "game", "play", "entertainment", "music", "dance",
	"movie", "show", "concert", "festival", "relax", "chill", "enjoy",
	"weekend", "vacation", "leisure", "hobby", "adventure", "excitement",
}

// maxFallbackTags caps the tag list produced by keyword scoring.
const maxFallbackTags = 5

// fallbackClassify scores text against the fixed keyword lists. Ties,
// including the no-match case, go to productivity. Tags are the matched
// keywords in fixed list order (productivity first), capped at five.
func fallbackClassify(text string, customZone string) *domain.ClassificationResult {
	lower := strings.ToLower(text)

	var productivityScore, entertainmentScore int
	for _, kw := range productivityKeywords {
		if strings.Contains(lower, kw) {
			productivityScore++
		}
	}
	for _, kw := range entertainmentKeywords {
		if strings.Contains(lower, kw) {
			entertainmentScore++
		}
	}

	zone := domain.ZoneProductivity
	if entertainmentScore > productivityScore {
		zone = domain.ZoneEntertainment
	}

	var tags []string
	for _, kw := range append(append([]string{}, productivityKeywords...), entertainmentKeywords...) {
		if len(tags) == maxFallbackTags {
			break
		}
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}

	return &domain.ClassificationResult{
		Zone:   zone,
		Zones:  composeZones(zone, customZone),
		Tags:   tags,
		Source: domain.SourceFallback,
	}
}
