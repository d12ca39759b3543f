package domain

import (
	"errors"
	"strings"
	"time"
)

// Zone is a content category used to filter the feed. The two built-in
// zones are complementary; any other value is a user-defined custom zone.
type Zone = string

const (
	ZoneProductivity  Zone = "productivity"
	ZoneEntertainment Zone = "entertainment"
)

// ClassificationSource records which path produced a result.
type ClassificationSource string

const (
	SourceRemote   ClassificationSource = "remote"
	SourceFallback ClassificationSource = "fallback"
)

// ClassificationResult is the output of classifying a piece of text.
// Zone is always a member of Zones.
type ClassificationResult struct {
	Zone   Zone                 `json:"zone"`
	Zones  []Zone               `json:"zones"`
	Tags   []string             `json:"tags,omitempty"`
	Source ClassificationSource `json:"source"`
}

// Post represents a feed entry with its author display fields and
// zone membership. The filter and timer only ever read it.
type Post struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	UserImage  string    `json:"user_image,omitempty"`
	Image      string    `json:"image,omitempty"`
	Likes      int       `json:"likes"`
	Caption    string    `json:"caption"`
	Zone       Zone      `json:"zone,omitempty"`
	Zones      []Zone    `json:"zones,omitempty"`
	CustomZone string    `json:"custom_zone,omitempty"`
	CustomTags []string  `json:"custom_tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

var (
	// ErrRemoteClassification marks a failed remote AI call. Callers recover
	// by falling back to keyword scoring; it never reaches the end user.
	ErrRemoteClassification = errors.New("remote classification failed")

	// ErrDataFetch marks a post store failure. Surfaced to the user as an
	// error state; no automatic retry.
	ErrDataFetch = errors.New("post store unavailable")
)

// Normalize lowercases a zone name for comparison and storage.
func Normalize(z Zone) Zone {
	return strings.ToLower(strings.TrimSpace(z))
}

// EqualZones compares two zone names case-insensitively.
func EqualZones(a, b Zone) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsBuiltin reports whether z is one of the two built-in zones.
func IsBuiltin(z Zone) bool {
	return EqualZones(z, ZoneProductivity) || EqualZones(z, ZoneEntertainment)
}

// Complement returns the opposite built-in zone. Custom zones have no
// complement and are returned unchanged.
func Complement(z Zone) Zone {
	switch {
	case EqualZones(z, ZoneProductivity):
		return ZoneEntertainment
	case EqualZones(z, ZoneEntertainment):
		return ZoneProductivity
	default:
		return z
	}
}
