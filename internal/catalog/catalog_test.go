package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/rentalheights/agent-core/internal/core/error"
)

func TestAvailable_FiltersUnavailable(t *testing.T) {
	items := SeedInventory()
	items[0].IsAvailable = false
	c := NewInMemory(items)

	got, err := c.Available(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, len(items)-1)
	for _, it := range got {
		assert.NotEqual(t, items[0].ID, it.ID)
	}
}

func TestByID(t *testing.T) {
	c := NewInMemory(nil)

	eq, err := c.ByID(context.Background(), "eq-andamio-multi-10")
	require.NoError(t, err)
	assert.Equal(t, "andamio", eq.EquipmentType)
	assert.Equal(t, 10.0, eq.MaxHeight)

	_, err = c.ByID(context.Background(), "eq-nope")
	require.Error(t, err)
	assert.True(t, errx.IsNotFound(err))
}

func TestSeedInventory_RateTiersPresent(t *testing.T) {
	for _, eq := range SeedInventory() {
		assert.Positive(t, eq.DailyRate, eq.ID)
		assert.Positive(t, eq.WeeklyRate, eq.ID)
		assert.Positive(t, eq.MonthlyRate, eq.ID)
		assert.True(t, eq.IsAvailable, eq.ID)
	}
}
