package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zonegram/internal/domain"
)

func TestFilter(t *testing.T) {
	t.Run("zones list wins over zone field", func(t *testing.T) {
		posts := []domain.Post{
			{ID: "1", Zone: "productivity", Zones: []domain.Zone{"entertainment"}},
		}
		visible := Filter(posts, "entertainment")
		assert.Len(t, visible, 1)
		assert.Equal(t, "1", visible[0].ID)
	})

	t.Run("zone field matches", func(t *testing.T) {
		posts := []domain.Post{{ID: "1", Zone: "productivity"}}
		assert.Len(t, Filter(posts, "productivity"), 1)
		assert.Empty(t, Filter(posts, "entertainment"))
	})

	t.Run("custom zone matches", func(t *testing.T) {
		posts := []domain.Post{{ID: "1", CustomZone: "focus-zone"}}
		assert.Len(t, Filter(posts, "focus-zone"), 1)
	})

	t.Run("comparison is case-insensitive everywhere", func(t *testing.T) {
		posts := []domain.Post{
			{ID: "1", Zones: []domain.Zone{"Entertainment"}},
			{ID: "2", Zone: "PRODUCTIVITY"},
			{ID: "3", CustomZone: "Focus-Zone"},
		}
		assert.Len(t, Filter(posts, "ENTERTAINMENT"), 1)
		assert.Len(t, Filter(posts, "productivity"), 1)
		assert.Len(t, Filter(posts, "focus-zone"), 1)
	})

	t.Run("empty active zone skips filtering", func(t *testing.T) {
		posts := []domain.Post{{ID: "1", Zone: "productivity"}}
		assert.Nil(t, Filter(posts, ""))
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		posts := []domain.Post{{ID: "1", Zone: "productivity"}}
		assert.Empty(t, Filter(posts, "focus-zone"))
	})

	t.Run("preserves input order", func(t *testing.T) {
		posts := []domain.Post{
			{ID: "a", Zone: "entertainment"},
			{ID: "b", Zone: "productivity"},
			{ID: "c", Zones: []domain.Zone{"entertainment"}},
		}
		visible := Filter(posts, "entertainment")
		assert.Equal(t, "a", visible[0].ID)
		assert.Equal(t, "c", visible[1].ID)
	})
}
