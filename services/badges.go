package services

import (
	"math"
	"time"

	"mealmaker-backend/catalog"
	"mealmaker-backend/models"
)

type BadgeEngine struct {
	catalog *catalog.Catalog
}

func NewBadgeEngine(c *catalog.Catalog) *BadgeEngine {
	return &BadgeEngine{catalog: c}
}

// Evaluate returns the badges newly earned at metrics. Per type only the
// highest tier met is considered, and only when it ranks above every tier
// already earned for that type, so a metric that falls never re-emits.
func (b *BadgeEngine) Evaluate(metrics models.LifetimeMetrics, earned []models.EarnedBadge, now time.Time) []models.BadgeInfo {
	highest := highestEarnedTiers(earned)
	newBadges := []models.BadgeInfo{}

	for _, bt := range models.AllBadgeTypes {
		def, ok := b.catalog.Badge(bt)
		if !ok {
			continue
		}
		value, err := def.Metric.Value(metrics)
		if err != nil {
			continue
		}

		tier, met := highestTierMet(def, value)
		if !met || tier.Rank() <= highest[bt].Rank() {
			continue
		}

		earnedAt := now
		newBadges = append(newBadges, models.BadgeInfo{
			Type:        bt,
			Tier:        tier,
			Name:        def.TierName(tier),
			Description: def.TierDescription(tier),
			EarnedAt:    &earnedAt,
		})
	}
	return newBadges
}

// Overview lists every earned tier and picks the closest unearned tier as
// the next badge to chase. The highest earned tier of each type below gold
// carries progress toward the following tier.
func (b *BadgeEngine) Overview(metrics models.LifetimeMetrics, earned []models.EarnedBadge) ([]models.BadgeInfo, *models.BadgeInfo) {
	byType := make(map[models.BadgeType]map[models.BadgeTier]time.Time)
	for _, e := range earned {
		if byType[e.Type] == nil {
			byType[e.Type] = make(map[models.BadgeTier]time.Time)
		}
		byType[e.Type][e.Tier] = e.EarnedAt
	}
	highest := highestEarnedTiers(earned)

	badges := []models.BadgeInfo{}
	var next *models.BadgeInfo

	for _, bt := range models.AllBadgeTypes {
		def, ok := b.catalog.Badge(bt)
		if !ok {
			continue
		}
		value, err := def.Metric.Value(metrics)
		if err != nil {
			continue
		}

		top := highest[bt]
		nextTier, hasNext := tierAbove(top)

		for _, tier := range models.BadgeTiers {
			earnedAt, ok := byType[bt][tier]
			if !ok {
				continue
			}
			info := models.BadgeInfo{
				Type:        bt,
				Tier:        tier,
				Name:        def.TierName(tier),
				Description: def.TierDescription(tier),
				EarnedAt:    &earnedAt,
				Progress:    floatPtr(100),
			}
			if tier == top && hasNext {
				threshold := def.Threshold(nextTier)
				info.Progress = floatPtr(Progress(value, threshold))
				info.NextTierThreshold = floatPtr(threshold)
			}
			badges = append(badges, info)
		}

		if !hasNext {
			continue
		}
		threshold := def.Threshold(nextTier)
		candidate := models.BadgeInfo{
			Type:              bt,
			Tier:              nextTier,
			Name:              def.TierName(nextTier),
			Description:       def.TierDescription(nextTier),
			Progress:          floatPtr(Progress(value, threshold)),
			NextTierThreshold: floatPtr(threshold),
		}
		if next == nil || *candidate.Progress > *next.Progress {
			next = &candidate
		}
	}

	return badges, next
}

// Progress is 100*value/threshold clamped to [0, 100). A met threshold
// would already be earned, so an unearned tier never reads as complete.
func Progress(value, threshold float64) float64 {
	if threshold <= 0 || math.IsNaN(value) {
		return 0
	}
	p := 100 * value / threshold
	if p < 0 {
		return 0
	}
	if p >= 100 {
		return math.Nextafter(100, 0)
	}
	return p
}

func highestTierMet(def catalog.BadgeDefinition, value float64) (models.BadgeTier, bool) {
	for i := len(models.BadgeTiers) - 1; i >= 0; i-- {
		tier := models.BadgeTiers[i]
		if value >= def.Threshold(tier) {
			return tier, true
		}
	}
	return "", false
}

func highestEarnedTiers(earned []models.EarnedBadge) map[models.BadgeType]models.BadgeTier {
	highest := make(map[models.BadgeType]models.BadgeTier)
	for _, e := range earned {
		if e.Tier.Rank() > highest[e.Type].Rank() {
			highest[e.Type] = e.Tier
		}
	}
	return highest
}

// tierAbove returns the tier following t; the empty tier is followed by bronze.
func tierAbove(t models.BadgeTier) (models.BadgeTier, bool) {
	rank := t.Rank()
	if rank >= len(models.BadgeTiers) {
		return "", false
	}
	return models.BadgeTiers[rank], true
}

func floatPtr(v float64) *float64 {
	return &v
}
