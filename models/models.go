package models

import (
	"time"
)

type ImpactSource string

const (
	ImpactSourceRecipe      ImpactSource = "recipe"
	ImpactSourceFridgeShare ImpactSource = "fridge_share"
	ImpactSourceManual      ImpactSource = "manual"
)

func (s ImpactSource) Valid() bool {
	switch s {
	case ImpactSourceRecipe, ImpactSourceFridgeShare, ImpactSourceManual:
		return true
	}
	return false
}

type EventStatus string

const (
	EventStatusActive   EventStatus = "active"
	EventStatusReversed EventStatus = "reversed"
	EventStatusDeleted  EventStatus = "deleted"
)

type BadgeType string

const (
	BadgeTypeWasteSaver    BadgeType = "waste_saver"
	BadgeTypeMoneySaver    BadgeType = "money_saver"
	BadgeTypeCarbonHero    BadgeType = "carbon_hero"
	BadgeTypeStreakMaster  BadgeType = "streak_master"
	BadgeTypeRecipeChef    BadgeType = "recipe_chef"
	BadgeTypeCommunityHero BadgeType = "community_hero"
)

// AllBadgeTypes is the evaluation order used by the badge engine.
var AllBadgeTypes = []BadgeType{
	BadgeTypeWasteSaver,
	BadgeTypeMoneySaver,
	BadgeTypeCarbonHero,
	BadgeTypeStreakMaster,
	BadgeTypeRecipeChef,
	BadgeTypeCommunityHero,
}

type BadgeTier string

const (
	BadgeTierBronze BadgeTier = "bronze"
	BadgeTierSilver BadgeTier = "silver"
	BadgeTierGold   BadgeTier = "gold"
)

// BadgeTiers lists tiers in ascending order.
var BadgeTiers = []BadgeTier{BadgeTierBronze, BadgeTierSilver, BadgeTierGold}

// Rank returns 1 for bronze up to 3 for gold, 0 for unknown tiers.
func (t BadgeTier) Rank() int {
	switch t {
	case BadgeTierBronze:
		return 1
	case BadgeTierSilver:
		return 2
	case BadgeTierGold:
		return 3
	}
	return 0
}

type IngredientInput struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

type IngredientImpact struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	WeightKg      float64 `json:"weight_kg"`
	CostUSD       float64 `json:"cost_usd"`
	CO2Kg         float64 `json:"co2_kg"`
	FoundInLookup bool    `json:"found_in_lookup"`
}

type ImpactTotals struct {
	WastePreventedKg float64 `json:"waste_prevented_kg"`
	MoneySavedUSD    float64 `json:"money_saved_usd"`
	CO2AvoidedKg     float64 `json:"co2_avoided_kg"`
}

type ImpactEvent struct {
	ID           string             `json:"id" db:"id"`
	UserID       string             `json:"user_id" db:"user_id"`
	Source       ImpactSource       `json:"source" db:"source"`
	SourceID     *string            `json:"source_id,omitempty" db:"source_id"`
	Ingredients  []IngredientImpact `json:"ingredients" db:"ingredients"`
	TotalWasteKg float64            `json:"total_waste_kg" db:"total_waste_kg"`
	TotalCostUSD float64            `json:"total_cost_usd" db:"total_cost_usd"`
	TotalCO2Kg   float64            `json:"total_co2_kg" db:"total_co2_kg"`
	Status       EventStatus        `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

type ImpactCalculationRequest struct {
	UserID      string            `json:"user_id"`
	Ingredients []IngredientInput `json:"ingredients"`
	Source      ImpactSource      `json:"source,omitempty"`
	SourceID    *string           `json:"source_id,omitempty"`
}

type WeeklyProgress struct {
	CurrentKg  float64 `json:"current_kg"`
	GoalKg     float64 `json:"goal_kg"`
	Percentage float64 `json:"percentage"`
	WeekStart  string  `json:"week_start"`
}

type GamificationUpdate struct {
	Streak            int            `json:"streak"`
	IsNewStreakRecord bool           `json:"is_new_streak_record"`
	NewBadges         []BadgeInfo    `json:"new_badges"`
	WeeklyProgress    WeeklyProgress `json:"weekly_progress"`
}

type ImpactCalculationResponse struct {
	EventID      string             `json:"event_id"`
	Totals       ImpactTotals       `json:"totals"`
	Breakdown    []IngredientImpact `json:"breakdown"`
	Gamification GamificationUpdate `json:"gamification"`
	Message      string             `json:"message"`
}

type ImpactEstimateResponse struct {
	Totals    ImpactTotals       `json:"totals"`
	Breakdown []IngredientImpact `json:"breakdown"`
	Note      string             `json:"note"`
}

type PeriodSummary struct {
	Period     string  `json:"period"`
	WasteKg    float64 `json:"waste_kg"`
	MoneyUSD   float64 `json:"money_usd"`
	CO2Kg      float64 `json:"co2_kg"`
	EventCount int     `json:"event_count"`
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
}

// PeriodComparison fields stay nil when last week's metric is zero.
type PeriodComparison struct {
	WasteKgChange  *float64 `json:"waste_kg_change,omitempty"`
	MoneyUSDChange *float64 `json:"money_usd_change,omitempty"`
	CO2KgChange    *float64 `json:"co2_kg_change,omitempty"`
}

type WeeklySummaryResponse struct {
	UserID     string           `json:"user_id"`
	ThisWeek   PeriodSummary    `json:"this_week"`
	LastWeek   PeriodSummary    `json:"last_week"`
	AllTime    PeriodSummary    `json:"all_time"`
	WeeklyGoal WeeklyProgress   `json:"weekly_goal"`
	Comparison PeriodComparison `json:"comparison"`
}

type WeeklyGoalUpdateRequest struct {
	UserID       string  `json:"user_id"`
	WeeklyGoalKg float64 `json:"weekly_goal_kg"`
}

type BadgeInfo struct {
	Type              BadgeType  `json:"type"`
	Tier              BadgeTier  `json:"tier"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	EarnedAt          *time.Time `json:"earned_at,omitempty"`
	Progress          *float64   `json:"progress,omitempty"`
	NextTierThreshold *float64   `json:"next_tier_threshold,omitempty"`
}

type EarnedBadge struct {
	UserID   string    `json:"user_id" db:"user_id"`
	Type     BadgeType `json:"type" db:"badge_type"`
	Tier     BadgeTier `json:"tier" db:"tier"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
	EventID  *string   `json:"event_id,omitempty" db:"event_id"`
}

type StreakInfo struct {
	Current       int     `json:"current"`
	Longest       int     `json:"longest"`
	LastActive    *string `json:"last_active,omitempty"`
	IsActiveToday bool    `json:"is_active_today"`
}

type GamificationResponse struct {
	UserID            string         `json:"user_id"`
	Streak            StreakInfo     `json:"streak"`
	Badges            []BadgeInfo    `json:"badges"`
	WeeklyGoal        WeeklyProgress `json:"weekly_goal"`
	NextBadgeProgress *BadgeInfo     `json:"next_badge_progress,omitempty"`
}

type ImpactHistoryResponse struct {
	Events []ImpactEvent `json:"events"`
	Count  int           `json:"count"`
}

type ReverseEventRequest struct {
	UserID string      `json:"user_id"`
	Status EventStatus `json:"status"`
}

// UserImpactStats is the persisted per-user streak and goal state.
type UserImpactStats struct {
	UserID         string     `json:"user_id" db:"user_id"`
	CurrentStreak  int        `json:"current_streak" db:"current_streak"`
	LongestStreak  int        `json:"longest_streak" db:"longest_streak"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty" db:"last_active_date"`
	WeeklyGoalKg   float64    `json:"weekly_goal_kg" db:"weekly_goal_kg"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// LifetimeMetrics are aggregated over active events and feed badge evaluation.
type LifetimeMetrics struct {
	WasteKg           float64
	MoneyUSD          float64
	CO2Kg             float64
	CurrentStreak     int
	RecipeEvents      int
	FridgeShareEvents int
}

type PeriodTotals struct {
	WasteKg    float64
	MoneyUSD   float64
	CO2Kg      float64
	EventCount int
}

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusClaimed   ListingStatus = "claimed"
	ListingStatusDeleted   ListingStatus = "deleted"
)

type FridgeListing struct {
	ID                 string        `json:"id" db:"id"`
	UserID             string        `json:"user_id" db:"user_id"`
	UserDisplayName    string        `json:"user_display_name" db:"user_display_name"`
	Title              string        `json:"title" db:"title"`
	Description        *string       `json:"description,omitempty" db:"description"`
	Items              []string      `json:"items" db:"items"`
	Quantity           *string       `json:"quantity,omitempty" db:"quantity"`
	ExpiryHint         *string       `json:"expiry_hint,omitempty" db:"expiry_hint"`
	PickupInstructions *string       `json:"pickup_instructions,omitempty" db:"pickup_instructions"`
	ImageURL           *string       `json:"image_url,omitempty" db:"image_url"`
	Status             ListingStatus `json:"status" db:"status"`
	ClaimedBy          *string       `json:"claimed_by,omitempty" db:"claimed_by"`
	ClaimedByName      *string       `json:"claimed_by_name,omitempty" db:"claimed_by_name"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"-" db:"updated_at"`
}

type Recipe struct {
	ID          string    `json:"id,omitempty" db:"id"`
	Name        string    `json:"name" db:"name"`
	Ingredients []string  `json:"ingredients" db:"ingredients"`
	Steps       []string  `json:"steps" db:"steps"`
	Time        *int      `json:"time,omitempty" db:"time_minutes"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time `json:"created_at,omitzero" db:"created_at"`
}

type FavoriteRecipe struct {
	Recipe
	UserID string `json:"user_id" db:"user_id"`
}

type CreateListingRequest struct {
	UserID             string   `json:"user_id"`
	UserDisplayName    string   `json:"user_display_name"`
	Title              string   `json:"title"`
	Description        *string  `json:"description,omitempty"`
	Items              []string `json:"items"`
	Quantity           *string  `json:"quantity,omitempty"`
	ExpiryHint         *string  `json:"expiry_hint,omitempty"`
	PickupInstructions *string  `json:"pickup_instructions,omitempty"`
	ImageURL           *string  `json:"image_url,omitempty"`
}

type ClaimListingRequest struct {
	ClaimedBy     string `json:"claimed_by"`
	ClaimedByName string `json:"claimed_by_name"`
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
