package services

import (
	"time"

	"mealmaker-backend/models"
)

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	day := UTCDate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekBounds returns [start, end) of the ISO week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	start := WeekStart(t)
	return start, start.AddDate(0, 0, 7)
}

func NewWeeklyProgress(currentKg, goalKg float64, weekStart time.Time) models.WeeklyProgress {
	return models.WeeklyProgress{
		CurrentKg:  currentKg,
		GoalKg:     goalKg,
		Percentage: GoalPercentage(currentKg, goalKg),
		WeekStart:  weekStart.Format(time.DateOnly),
	}
}

// GoalPercentage is not clamped; clients clamp for display.
func GoalPercentage(currentKg, goalKg float64) float64 {
	if goalKg <= 0 {
		return 0
	}
	return 100 * currentKg / goalKg
}

// PercentChange is nil when previous is zero, so "no baseline" is never
// reported as a 0% change.
func PercentChange(current, previous float64) *float64 {
	if previous <= 0 {
		return nil
	}
	change := 100 * (current - previous) / previous
	return &change
}

func ComparePeriods(thisWeek, lastWeek models.PeriodSummary) models.PeriodComparison {
	return models.PeriodComparison{
		WasteKgChange:  PercentChange(thisWeek.WasteKg, lastWeek.WasteKg),
		MoneyUSDChange: PercentChange(thisWeek.MoneyUSD, lastWeek.MoneyUSD),
		CO2KgChange:    PercentChange(thisWeek.CO2Kg, lastWeek.CO2Kg),
	}
}

func newPeriodSummary(period string, totals models.PeriodTotals, start, end *time.Time) models.PeriodSummary {
	s := models.PeriodSummary{
		Period:     period,
		WasteKg:    totals.WasteKg,
		MoneyUSD:   totals.MoneyUSD,
		CO2Kg:      totals.CO2Kg,
		EventCount: totals.EventCount,
	}
	if start != nil {
		s.StartDate = start.Format(time.DateOnly)
	}
	if end != nil {
		// end is exclusive; report the last day of the period.
		s.EndDate = end.AddDate(0, 0, -1).Format(time.DateOnly)
	}
	return s
}
