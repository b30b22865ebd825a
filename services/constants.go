package services

const (
	DefaultQuantity = 1.0
	DefaultUnit     = "piece"
	MaxQuantity     = 100000.0
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

const (
	MinListingTitleLength = 2
	MaxListingTitleLength = 100
	MaxListingItems       = 50
)

const (
	GeneralRateLimit = 500
	AIRateLimit      = 8
)

const (
	EstimateNote = "Estimate only. Nothing was saved and your stats are unchanged."
)
