package client

import (
	"math"
	"testing"

	"mealmaker-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayPercentage(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 22.5, want: 22.5},
		{in: 125, want: 100},
		{in: -3, want: 0},
		{in: math.NaN(), want: 0},
		{in: 100, want: 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayPercentage(tt.in))
	}
}

func TestCountUpEndsOnTarget(t *testing.T) {
	frames := CountUp(0, 2.537, 30)
	require.Len(t, frames, 30)
	assert.Equal(t, 2.537, frames[len(frames)-1])
	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, frames[i], frames[i-1])
	}

	assert.Equal(t, []float64{4.2}, CountUp(0, 4.2, 0))
	assert.Equal(t, []float64{4.2}, CountUp(math.NaN(), 4.2, 10))

	down := CountUp(10, 3, 5)
	assert.Equal(t, 3.0, down[4])
	assert.Less(t, down[0], 10.0)
}

func TestFavoriteOverlay(t *testing.T) {
	o := NewFavoriteOverlay()
	o.Reconcile([]models.FavoriteRecipe{{Recipe: models.Recipe{Name: "Soup"}}})
	assert.True(t, o.IsFavorite("Soup"))
	assert.False(t, o.IsFavorite("Salad"))

	o.Toggle("Salad", true)
	o.Toggle("Soup", false)
	assert.True(t, o.IsFavorite("Salad"))
	assert.False(t, o.IsFavorite("Soup"))
	assert.Equal(t, 2, o.Pending())

	o.Toggle("Soup", true)
	assert.Equal(t, 1, o.Pending())

	rejected := o.Reconcile([]models.FavoriteRecipe{
		{Recipe: models.Recipe{Name: "Soup"}},
	})
	assert.Equal(t, []string{"Salad"}, rejected)
	assert.Equal(t, 0, o.Pending())
	assert.False(t, o.IsFavorite("Salad"))
	assert.True(t, o.IsFavorite("Soup"))
}

func TestFavoriteOverlayRevert(t *testing.T) {
	o := NewFavoriteOverlay()
	o.Toggle("Stew", true)
	o.Revert("Stew")
	assert.False(t, o.IsFavorite("Stew"))
	assert.Empty(t, o.Reconcile(nil))
}
