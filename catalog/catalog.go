// Package catalog holds the reference data behind impact estimation:
// per-ingredient weight, cost and CO2 factors, shared mass units, the
// fallback estimate for unknown ingredients, and badge tier thresholds.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"mealmaker-backend/models"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type Defaults struct {
	WeightKgPerUnit float64 `yaml:"weight_kg_per_unit"`
	CostPerKg       float64 `yaml:"cost_per_kg"`
	CO2PerKg        float64 `yaml:"co2_per_kg"`
	WeeklyGoalKg    float64 `yaml:"weekly_goal_kg"`
}

type Ingredient struct {
	Name      string             `yaml:"name"`
	Aliases   []string           `yaml:"aliases"`
	Units     map[string]float64 `yaml:"units"`
	CostPerKg float64            `yaml:"cost_per_kg"`
	CO2PerKg  float64            `yaml:"co2_per_kg"`
}

// UnitWeight returns kilograms per one unit for this ingredient.
func (i *Ingredient) UnitWeight(unit string) (float64, bool) {
	w, ok := i.Units[unit]
	return w, ok
}

type Thresholds struct {
	Bronze float64 `yaml:"bronze"`
	Silver float64 `yaml:"silver"`
	Gold   float64 `yaml:"gold"`
}

type Metric string

const (
	MetricWasteKg           Metric = "waste_kg"
	MetricMoneyUSD          Metric = "money_usd"
	MetricCO2Kg             Metric = "co2_kg"
	MetricCurrentStreak     Metric = "current_streak"
	MetricRecipeEvents      Metric = "recipe_events"
	MetricFridgeShareEvents Metric = "fridge_share_events"
)

// Value picks the metric out of the aggregated lifetime metrics.
func (m Metric) Value(lm models.LifetimeMetrics) (float64, error) {
	switch m {
	case MetricWasteKg:
		return lm.WasteKg, nil
	case MetricMoneyUSD:
		return lm.MoneyUSD, nil
	case MetricCO2Kg:
		return lm.CO2Kg, nil
	case MetricCurrentStreak:
		return float64(lm.CurrentStreak), nil
	case MetricRecipeEvents:
		return float64(lm.RecipeEvents), nil
	case MetricFridgeShareEvents:
		return float64(lm.FridgeShareEvents), nil
	}
	return 0, fmt.Errorf("unknown badge metric %q", m)
}

type BadgeDefinition struct {
	Name        string     `yaml:"name"`
	Metric      Metric     `yaml:"metric"`
	Description string     `yaml:"description"`
	Thresholds  Thresholds `yaml:"thresholds"`
}

func (b BadgeDefinition) Threshold(tier models.BadgeTier) float64 {
	switch tier {
	case models.BadgeTierBronze:
		return b.Thresholds.Bronze
	case models.BadgeTierSilver:
		return b.Thresholds.Silver
	case models.BadgeTierGold:
		return b.Thresholds.Gold
	}
	return math.Inf(1)
}

// TierName renders e.g. "Silver Waste Saver".
func (b BadgeDefinition) TierName(tier models.BadgeTier) string {
	t := string(tier)
	if t == "" {
		return b.Name
	}
	return strings.ToUpper(t[:1]) + t[1:] + " " + b.Name
}

// TierDescription substitutes the tier threshold into the description.
func (b BadgeDefinition) TierDescription(tier models.BadgeTier) string {
	threshold := strconv.FormatFloat(b.Threshold(tier), 'f', -1, 64)
	return strings.ReplaceAll(b.Description, "{threshold}", threshold)
}

type Catalog struct {
	Defaults    Defaults                             `yaml:"defaults"`
	MassUnits   map[string]float64                   `yaml:"mass_units"`
	Ingredients []Ingredient                         `yaml:"ingredients"`
	Badges      map[models.BadgeType]BadgeDefinition `yaml:"badges"`

	index map[string]*Ingredient
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading impact catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing impact catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.buildIndex()
	return &c, nil
}

func (c *Catalog) validate() error {
	d := c.Defaults
	if d.WeightKgPerUnit <= 0 || d.CostPerKg < 0 || d.CO2PerKg < 0 {
		return fmt.Errorf("impact catalog defaults must be positive")
	}
	if d.WeeklyGoalKg <= 0 {
		return fmt.Errorf("impact catalog default weekly goal must be positive")
	}
	for unit, factor := range c.MassUnits {
		if factor <= 0 {
			return fmt.Errorf("mass unit %q must have a positive factor", unit)
		}
	}
	for _, ing := range c.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("impact catalog contains an ingredient without a name")
		}
		if ing.CostPerKg < 0 || ing.CO2PerKg < 0 {
			return fmt.Errorf("ingredient %q has negative factors", ing.Name)
		}
		for unit, w := range ing.Units {
			if w <= 0 {
				return fmt.Errorf("ingredient %q unit %q must have a positive weight", ing.Name, unit)
			}
		}
	}
	for _, bt := range models.AllBadgeTypes {
		def, ok := c.Badges[bt]
		if !ok {
			return fmt.Errorf("impact catalog is missing badge %q", bt)
		}
		if _, err := def.Metric.Value(models.LifetimeMetrics{}); err != nil {
			return fmt.Errorf("badge %q: %w", bt, err)
		}
		th := def.Thresholds
		if !(th.Bronze > 0 && th.Bronze < th.Silver && th.Silver < th.Gold) {
			return fmt.Errorf("badge %q thresholds must be positive and strictly ascending", bt)
		}
	}
	return nil
}

func (c *Catalog) buildIndex() {
	c.index = make(map[string]*Ingredient, len(c.Ingredients))
	normalized := make(map[string]float64, len(c.MassUnits))
	for unit, factor := range c.MassUnits {
		normalized[NormalizeKey(unit)] = factor
	}
	c.MassUnits = normalized

	for i := range c.Ingredients {
		ing := &c.Ingredients[i]
		units := make(map[string]float64, len(ing.Units))
		for unit, w := range ing.Units {
			units[NormalizeKey(unit)] = w
		}
		ing.Units = units

		c.index[NormalizeKey(ing.Name)] = ing
		for _, alias := range ing.Aliases {
			key := NormalizeKey(alias)
			if _, taken := c.index[key]; !taken {
				c.index[key] = ing
			}
		}
	}
}

// Lookup finds an ingredient by name or alias, case-insensitive and trimmed.
func (c *Catalog) Lookup(name string) (*Ingredient, bool) {
	ing, ok := c.index[NormalizeKey(name)]
	return ing, ok
}

// MassFactor returns kilograms per one of the given mass unit.
func (c *Catalog) MassFactor(unit string) (float64, bool) {
	f, ok := c.MassUnits[unit]
	return f, ok
}

func (c *Catalog) Badge(t models.BadgeType) (BadgeDefinition, bool) {
	b, ok := c.Badges[t]
	return b, ok
}

// NormalizeKey lowercases, trims and collapses inner whitespace.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
