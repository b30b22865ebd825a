package services

import (
	"math"
	"strings"

	"mealmaker-backend/catalog"
	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"
)

// unitAliases maps common spellings onto the unit keys used by the catalog.
var unitAliases = map[string]string{
	"pc":         "piece",
	"pcs":        "piece",
	"each":       "piece",
	"ea":         "piece",
	"item":       "piece",
	"whole":      "piece",
	"unit":       "piece",
	"leaves":     "piece",
	"tablespoon": "tbsp",
	"liter":      "l",
	"litre":      "l",
	"milliliter": "ml",
	"millilitre": "ml",
	"kgs":        "kg",
	"kilo":       "kg",
	"grams":      "g",
	"gr":         "g",
	"ounces":     "oz",
	"pounds":     "lb",
	"heads":      "head",
	"bunches":    "bunch",
	"loaves":     "loaf",
	"slices":     "slice",
	"cloves":     "clove",
}

type ImpactEstimator struct {
	catalog *catalog.Catalog
}

func NewImpactEstimator(c *catalog.Catalog) *ImpactEstimator {
	return &ImpactEstimator{catalog: c}
}

// Estimate is pure. quantity must already be validated as > 0.
func (e *ImpactEstimator) Estimate(name string, quantity float64, unit string) models.IngredientImpact {
	result := models.IngredientImpact{
		Name:     strings.TrimSpace(name),
		Quantity: quantity,
		Unit:     unit,
	}

	candidates := unitCandidates(unit)

	if ing, ok := e.catalog.Lookup(name); ok {
		perUnit := e.ingredientUnitWeight(ing, candidates)
		result.WeightKg = quantity * perUnit
		result.CostUSD = result.WeightKg * ing.CostPerKg
		result.CO2Kg = result.WeightKg * ing.CO2PerKg
		result.FoundInLookup = true
		return result
	}

	d := e.catalog.Defaults
	perUnit := d.WeightKgPerUnit
	if f, ok := e.massFactor(candidates); ok {
		perUnit = f
	}
	result.WeightKg = quantity * perUnit
	result.CostUSD = result.WeightKg * d.CostPerKg
	result.CO2Kg = result.WeightKg * d.CO2PerKg
	return result
}

func (e *ImpactEstimator) ingredientUnitWeight(ing *catalog.Ingredient, candidates []string) float64 {
	for _, u := range candidates {
		if w, ok := ing.UnitWeight(u); ok {
			return w
		}
	}
	if f, ok := e.massFactor(candidates); ok {
		return f
	}
	if w, ok := ing.UnitWeight(DefaultUnit); ok {
		return w
	}
	return e.catalog.Defaults.WeightKgPerUnit
}

func (e *ImpactEstimator) massFactor(candidates []string) (float64, bool) {
	for _, u := range candidates {
		if f, ok := e.catalog.MassFactor(u); ok {
			return f, true
		}
	}
	return 0, false
}

// EstimateAll validates the inputs, applies the quantity and unit defaults,
// and returns the per-ingredient breakdown with its totals.
func (e *ImpactEstimator) EstimateAll(items []models.IngredientInput) ([]models.IngredientImpact, models.ImpactTotals, error) {
	var totals models.ImpactTotals
	if len(items) == 0 {
		return nil, totals, apperrors.EmptyIngredients()
	}

	breakdown := make([]models.IngredientImpact, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, totals, apperrors.MissingRequiredField("ingredient name")
		}

		quantity := DefaultQuantity
		if item.Quantity != nil {
			quantity = *item.Quantity
			if !(quantity > 0) || quantity > MaxQuantity {
				return nil, totals, apperrors.InvalidQuantity(name)
			}
		}

		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = DefaultUnit
		}

		impact := e.Estimate(name, quantity, unit)
		totals.WastePreventedKg += impact.WeightKg
		totals.MoneySavedUSD += impact.CostUSD
		totals.CO2AvoidedKg += impact.CO2Kg
		if !finite(impact.WeightKg, impact.CostUSD, impact.CO2Kg) ||
			!finite(totals.WastePreventedKg, totals.MoneySavedUSD, totals.CO2AvoidedKg) {
			return nil, models.ImpactTotals{}, apperrors.InvalidQuantity(name)
		}
		breakdown = append(breakdown, impact)
	}

	return breakdown, totals, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// unitCandidates returns the lookup keys to try for a unit, most specific first.
func unitCandidates(unit string) []string {
	u := catalog.NormalizeKey(strings.TrimSuffix(strings.TrimSpace(unit), "."))
	if u == "" {
		return []string{DefaultUnit}
	}

	candidates := []string{u}
	if alias, ok := unitAliases[u]; ok {
		candidates = append(candidates, alias)
	}
	if strings.HasSuffix(u, "es") && len(u) > 3 {
		candidates = append(candidates, strings.TrimSuffix(u, "es"))
	}
	if strings.HasSuffix(u, "s") && len(u) > 2 {
		candidates = append(candidates, strings.TrimSuffix(u, "s"))
	}
	return candidates
}
