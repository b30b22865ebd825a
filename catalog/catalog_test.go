package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mealmaker-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 2.0, c.Defaults.WeeklyGoalKg)
	for _, bt := range models.AllBadgeTypes {
		_, ok := c.Badge(bt)
		assert.True(t, ok, "badge %s missing", bt)
	}

	tomato, ok := c.Lookup("tomato")
	require.True(t, ok)
	w, ok := tomato.UnitWeight("piece")
	require.True(t, ok)
	assert.InDelta(t, 0.15, w, 1e-9)
	assert.InDelta(t, 0.5, tomato.CostPerKg, 1e-9)
	assert.InDelta(t, 0.2, tomato.CO2PerKg, 1e-9)
}

func TestLookup(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"exact", "tomato", "tomato", true},
		{"upper case", "TOMATO", "tomato", true},
		{"padded", "  Tomato ", "tomato", true},
		{"alias", "tomatoes", "tomato", true},
		{"multi word alias", "chicken   breast", "chicken", true},
		{"unknown", "dragonfruit", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing, ok := c.Lookup(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, ing.Name)
			}
		})
	}
}

func TestMassFactor(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	f, ok := c.MassFactor("g")
	require.True(t, ok)
	assert.InDelta(t, 0.001, f, 1e-12)

	_, ok = c.MassFactor("cup")
	assert.False(t, ok)
}

func TestBadgeDefinitionText(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	def, _ := c.Badge(models.BadgeTypeWasteSaver)
	assert.Equal(t, "Silver Waste Saver", def.TierName(models.BadgeTierSilver))
	assert.Equal(t, "Prevent 10 kg of food from being wasted", def.TierDescription(models.BadgeTierSilver))
	assert.Equal(t, 50.0, def.Threshold(models.BadgeTierGold))
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	valid := string(defaultCatalog)

	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name: "descending thresholds",
			mutate: func(s string) string {
				return strings.Replace(s, "{bronze: 1, silver: 10, gold: 50}", "{bronze: 10, silver: 1, gold: 50}", 1)
			},
			wantErr: "strictly ascending",
		},
		{
			name: "missing badge",
			mutate: func(s string) string {
				idx := strings.Index(s, "  community_hero:")
				return s[:idx]
			},
			wantErr: "missing badge",
		},
		{
			name: "zero goal",
			mutate: func(s string) string {
				return strings.Replace(s, "weekly_goal_kg: 2.0", "weekly_goal_kg: 0", 1)
			},
			wantErr: "weekly goal",
		},
		{
			name: "unknown metric",
			mutate: func(s string) string {
				return strings.Replace(s, "metric: co2_kg", "metric: vibes", 1)
			},
			wantErr: "unknown badge metric",
		},
		{
			name:    "not yaml",
			mutate:  func(string) string { return "defaults: [" },
			wantErr: "parsing impact catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(valid)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	custom := strings.Replace(string(defaultCatalog), "weekly_goal_kg: 2.0", "weekly_goal_kg: 3.5", 1)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.5, c.Defaults.WeeklyGoalKg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
