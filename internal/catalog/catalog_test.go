// internal/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

func TestLoad_MissingFileFallsBack(t *testing.T) {
	c := Load("does/not/exist.json", logger.NewTestLogger(t))

	all := c.All()
	require.Len(t, all, 1)
	assert.Equal(t, "r_000", all[0].ID)
	assert.Equal(t, 40, all[0].Capacity)
}

func TestLoad_CorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := Load(path, logger.NewTestLogger(t))
	require.Len(t, c.All(), 1)
	assert.Equal(t, "r_000", c.All()[0].ID)
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[
		{"id": "r1", "name": "Spice Route", "area": "Koramangala", "capacity": 40, "cuisines": ["South Indian"], "rating": 4.3},
		{"id": "r2", "name": "The Fatted Calf", "area": "Indiranagar", "capacity": 50, "cuisines": ["European"], "rating": 4.6}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c := Load(path, logger.NewTestLogger(t))
	assert.Len(t, c.All(), 2)

	r, ok := c.ByID("r2")
	require.True(t, ok)
	assert.Equal(t, "The Fatted Calf", r.Name)
	assert.Equal(t, 50, c.Capacity("r2"))
	assert.Equal(t, 0, c.Capacity("ghost"), "unknown restaurants have capacity 0")

	_, ok = c.ByID("ghost")
	assert.False(t, ok)
}

func TestFromRestaurants_EmptyFallsBack(t *testing.T) {
	c := FromRestaurants(nil)
	require.Len(t, c.All(), 1)
	assert.Equal(t, "r_000", c.All()[0].ID)

	c = FromRestaurants([]models.Restaurant{{ID: "x", Capacity: 10}})
	assert.Len(t, c.All(), 1)
	assert.Equal(t, "x", c.All()[0].ID)
}
