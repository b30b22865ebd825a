package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	impactEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealmaker_impact_events_total",
			Help: "Impact events recorded, by source",
		},
		[]string{"source"},
	)
	wastePreventedKg = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mealmaker_waste_prevented_kg_total",
			Help: "Kilograms of food waste prevented across all users",
		},
	)
	badgesAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealmaker_badges_awarded_total",
			Help: "Badge tiers awarded, by type and tier",
		},
		[]string{"type", "tier"},
	)
	listingClaimsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mealmaker_listing_claims_total",
			Help: "Fridge share listings claimed",
		},
	)
	recipeGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealmaker_recipe_generations_total",
			Help: "Recipe generation calls to the AI model, by outcome",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics registers the domain counters. Call this once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		impactEventsTotal,
		wastePreventedKg,
		badgesAwardedTotal,
		listingClaimsTotal,
		recipeGenerationsTotal,
	)
}
