package services

import (
	"testing"
	"time"

	"mealmaker-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{day("2026-03-09"), "2026-03-09"},
		{day("2026-03-15").Add(23 * time.Hour), "2026-03-09"},
		{day("2026-03-11").Add(8 * time.Hour), "2026-03-09"},
		{day("2026-01-01"), "2025-12-29"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeekStart(tt.in).Format(time.DateOnly), tt.in.String())
	}

	start, end := WeekBounds(day("2026-03-11"))
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
}

func TestNewWeeklyProgress(t *testing.T) {
	p := NewWeeklyProgress(2.5, 2.0, day("2026-03-09"))
	assert.InDelta(t, 125.0, p.Percentage, 1e-9)
	assert.Equal(t, "2026-03-09", p.WeekStart)
	assert.Equal(t, 2.5, p.CurrentKg)

	assert.Equal(t, 0.0, GoalPercentage(1, 0))
}

func TestPercentChange(t *testing.T) {
	assert.Nil(t, PercentChange(3, 0))

	up := PercentChange(3, 2)
	require.NotNil(t, up)
	assert.InDelta(t, 50.0, *up, 1e-9)

	down := PercentChange(0, 4)
	require.NotNil(t, down)
	assert.InDelta(t, -100.0, *down, 1e-9)
}

func TestComparePeriodsWithoutBaseline(t *testing.T) {
	c := ComparePeriods(
		models.PeriodSummary{WasteKg: 1, MoneyUSD: 2, CO2Kg: 0.5},
		models.PeriodSummary{MoneyUSD: 1},
	)
	assert.Nil(t, c.WasteKgChange)
	assert.Nil(t, c.CO2KgChange)
	require.NotNil(t, c.MoneyUSDChange)
	assert.InDelta(t, 100.0, *c.MoneyUSDChange, 1e-9)
}

func TestNewPeriodSummaryDates(t *testing.T) {
	start, end := WeekBounds(day("2026-03-11"))
	s := newPeriodSummary("this_week", models.PeriodTotals{WasteKg: 1, EventCount: 2}, &start, &end)
	assert.Equal(t, "2026-03-09", s.StartDate)
	assert.Equal(t, "2026-03-15", s.EndDate)
	assert.Equal(t, 2, s.EventCount)

	all := newPeriodSummary("all_time", models.PeriodTotals{}, nil, nil)
	assert.Empty(t, all.StartDate)
	assert.Empty(t, all.EndDate)
}
