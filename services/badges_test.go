package services

import (
	"testing"
	"time"

	"mealmaker-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeEngineEvaluate(t *testing.T) {
	engine := NewBadgeEngine(testCatalog())
	now := day("2026-03-10")

	t.Run("nothing met", func(t *testing.T) {
		got := engine.Evaluate(models.LifetimeMetrics{WasteKg: 0.5}, nil, now)
		assert.Empty(t, got)
	})

	t.Run("first bronze", func(t *testing.T) {
		got := engine.Evaluate(models.LifetimeMetrics{WasteKg: 1.2, RecipeEvents: 1}, nil, now)
		require.Len(t, got, 2)
		assert.Equal(t, models.BadgeTypeWasteSaver, got[0].Type)
		assert.Equal(t, models.BadgeTierBronze, got[0].Tier)
		assert.Equal(t, "Bronze Waste Saver", got[0].Name)
		assert.Equal(t, "Prevent 1 kg of food from being wasted", got[0].Description)
		require.NotNil(t, got[0].EarnedAt)
		assert.Equal(t, models.BadgeTypeRecipeChef, got[1].Type)
	})

	t.Run("only highest tier met is emitted", func(t *testing.T) {
		got := engine.Evaluate(models.LifetimeMetrics{WasteKg: 60}, nil, now)
		require.Len(t, got, 1)
		assert.Equal(t, models.BadgeTierGold, got[0].Tier)
	})

	t.Run("already earned tier is not re-emitted", func(t *testing.T) {
		earned := []models.EarnedBadge{{Type: models.BadgeTypeWasteSaver, Tier: models.BadgeTierBronze}}
		got := engine.Evaluate(models.LifetimeMetrics{WasteKg: 5}, earned, now)
		assert.Empty(t, got)
	})

	t.Run("falling metric never downgrades", func(t *testing.T) {
		earned := []models.EarnedBadge{{Type: models.BadgeTypeWasteSaver, Tier: models.BadgeTierSilver}}
		got := engine.Evaluate(models.LifetimeMetrics{WasteKg: 2}, earned, now)
		assert.Empty(t, got)
	})

	t.Run("upgrade from bronze to silver", func(t *testing.T) {
		earned := []models.EarnedBadge{{Type: models.BadgeTypeStreakMaster, Tier: models.BadgeTierBronze}}
		got := engine.Evaluate(models.LifetimeMetrics{CurrentStreak: 7}, earned, now)
		require.Len(t, got, 1)
		assert.Equal(t, models.BadgeTypeStreakMaster, got[0].Type)
		assert.Equal(t, models.BadgeTierSilver, got[0].Tier)
	})

	t.Run("thresholds are inclusive", func(t *testing.T) {
		got := engine.Evaluate(models.LifetimeMetrics{MoneyUSD: 10}, nil, now)
		require.Len(t, got, 1)
		assert.Equal(t, models.BadgeTypeMoneySaver, got[0].Type)
		assert.Equal(t, "Save $10 by using what you already have", got[0].Description)
	})
}

func TestBadgeEngineOverview(t *testing.T) {
	engine := NewBadgeEngine(testCatalog())
	earnedAt := day("2026-03-01")
	earned := []models.EarnedBadge{
		{Type: models.BadgeTypeWasteSaver, Tier: models.BadgeTierBronze, EarnedAt: earnedAt},
		{Type: models.BadgeTypeWasteSaver, Tier: models.BadgeTierSilver, EarnedAt: earnedAt},
		{Type: models.BadgeTypeRecipeChef, Tier: models.BadgeTierBronze, EarnedAt: earnedAt},
	}
	metrics := models.LifetimeMetrics{WasteKg: 12.5, MoneyUSD: 9, RecipeEvents: 2}

	badges, next := engine.Overview(metrics, earned)
	require.Len(t, badges, 3)

	bronze := badges[0]
	assert.Equal(t, models.BadgeTierBronze, bronze.Tier)
	assert.Equal(t, 100.0, *bronze.Progress)
	assert.Nil(t, bronze.NextTierThreshold)

	silver := badges[1]
	assert.Equal(t, models.BadgeTierSilver, silver.Tier)
	require.NotNil(t, silver.NextTierThreshold)
	assert.Equal(t, 50.0, *silver.NextTierThreshold)
	assert.InDelta(t, 25.0, *silver.Progress, 1e-9)

	recipe := badges[2]
	assert.Equal(t, models.BadgeTypeRecipeChef, recipe.Type)
	assert.InDelta(t, 20.0, *recipe.Progress, 1e-9)

	// Money saver bronze at $9 of $10 is the closest unearned tier.
	require.NotNil(t, next)
	assert.Equal(t, models.BadgeTypeMoneySaver, next.Type)
	assert.Equal(t, models.BadgeTierBronze, next.Tier)
	assert.InDelta(t, 90.0, *next.Progress, 1e-9)
	assert.Nil(t, next.EarnedAt)
}

func TestBadgeEngineOverviewAllGold(t *testing.T) {
	engine := NewBadgeEngine(testCatalog())
	var earned []models.EarnedBadge
	for _, bt := range models.AllBadgeTypes {
		earned = append(earned, models.EarnedBadge{Type: bt, Tier: models.BadgeTierGold, EarnedAt: time.Now()})
	}

	badges, next := engine.Overview(models.LifetimeMetrics{}, earned)
	assert.Len(t, badges, len(models.AllBadgeTypes))
	assert.Nil(t, next)
	for _, b := range badges {
		assert.Equal(t, 100.0, *b.Progress)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		threshold float64
		want      float64
	}{
		{"zero", 0, 10, 0},
		{"half", 5, 10, 50},
		{"negative value", -3, 10, 0},
		{"zero threshold", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.value, tt.threshold), 1e-9)
		})
	}

	t.Run("met threshold stays below 100", func(t *testing.T) {
		p := Progress(12, 10)
		assert.Less(t, p, 100.0)
		assert.InDelta(t, 100.0, p, 1e-9)
	})
}
