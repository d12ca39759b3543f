// Package feed produces the visible post list for an active zone, reading
// the store through a short-lived query cache.
package feed

import (
	"zonegram/internal/domain"
)

// Filter returns the subset of posts belonging to the active zone. A post
// matches when its zones list contains the zone, or its zone field equals
// it, or its custom zone equals it; all comparisons are case-insensitive.
// An empty active zone returns nil: filtering is skipped entirely and the
// caller shows the unfiltered feed.
func Filter(posts []domain.Post, active domain.Zone) []domain.Post {
	if active == "" {
		return nil
	}

	var visible []domain.Post
	for _, p := range posts {
		if matches(p, active) {
			visible = append(visible, p)
		}
	}
	return visible
}

func matches(p domain.Post, active domain.Zone) bool {
	for _, z := range p.Zones {
		if domain.EqualZones(z, active) {
			return true
		}
	}
	if p.Zone != "" && domain.EqualZones(p.Zone, active) {
		return true
	}
	if p.CustomZone != "" && domain.EqualZones(p.CustomZone, active) {
		return true
	}
	return false
}
