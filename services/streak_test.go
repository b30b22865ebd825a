package services

import (
	"testing"
	"time"

	"mealmaker-backend/models"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name        string
		stats       models.UserImpactStats
		event       time.Time
		wantCurrent int
		wantLongest int
		wantLast    string
		wantRecord  bool
	}{
		{
			name:        "first event starts a streak",
			stats:       models.UserImpactStats{},
			event:       day("2026-03-10").Add(15 * time.Hour),
			wantCurrent: 1,
			wantLongest: 1,
			wantLast:    "2026-03-10",
			wantRecord:  true,
		},
		{
			name:        "next day extends",
			stats:       models.UserImpactStats{CurrentStreak: 4, LongestStreak: 6, LastActiveDate: dayPtr("2026-03-09")},
			event:       day("2026-03-10").Add(time.Hour),
			wantCurrent: 5,
			wantLongest: 6,
			wantLast:    "2026-03-10",
		},
		{
			name:        "extending past longest sets a record",
			stats:       models.UserImpactStats{CurrentStreak: 6, LongestStreak: 6, LastActiveDate: dayPtr("2026-03-09")},
			event:       day("2026-03-10"),
			wantCurrent: 7,
			wantLongest: 7,
			wantLast:    "2026-03-10",
			wantRecord:  true,
		},
		{
			name:        "same day is unchanged",
			stats:       models.UserImpactStats{CurrentStreak: 3, LongestStreak: 3, LastActiveDate: dayPtr("2026-03-10")},
			event:       day("2026-03-10").Add(23 * time.Hour),
			wantCurrent: 3,
			wantLongest: 3,
			wantLast:    "2026-03-10",
		},
		{
			name:        "gap resets to one",
			stats:       models.UserImpactStats{CurrentStreak: 9, LongestStreak: 12, LastActiveDate: dayPtr("2026-03-07")},
			event:       day("2026-03-10"),
			wantCurrent: 1,
			wantLongest: 12,
			wantLast:    "2026-03-10",
		},
		{
			name:        "event before last active day is ignored",
			stats:       models.UserImpactStats{CurrentStreak: 2, LongestStreak: 5, LastActiveDate: dayPtr("2026-03-10")},
			event:       day("2026-03-08"),
			wantCurrent: 2,
			wantLongest: 5,
			wantLast:    "2026-03-10",
		},
		{
			name:        "crossing a month boundary",
			stats:       models.UserImpactStats{CurrentStreak: 1, LongestStreak: 1, LastActiveDate: dayPtr("2026-02-28")},
			event:       day("2026-03-01"),
			wantCurrent: 2,
			wantLongest: 2,
			wantLast:    "2026-03-01",
			wantRecord:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateStreak(tt.stats, tt.event)
			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantLongest, got.Longest)
			assert.Equal(t, tt.wantLast, got.LastActive.Format(time.DateOnly))
			assert.Equal(t, tt.wantRecord, got.IsNewRecord)
			assert.True(t, got.IsActiveToday)
			assert.GreaterOrEqual(t, got.Longest, got.Current)
		})
	}
}

func TestUpdateStreakUsesUTCDates(t *testing.T) {
	tz := time.FixedZone("UTC-8", -8*60*60)
	stats := models.UserImpactStats{CurrentStreak: 1, LongestStreak: 1, LastActiveDate: dayPtr("2026-03-10")}

	// 2026-03-10 20:00 at UTC-8 is already 2026-03-11 in UTC.
	got := UpdateStreak(stats, time.Date(2026, 3, 10, 20, 0, 0, 0, tz))
	assert.Equal(t, 2, got.Current)
	assert.Equal(t, "2026-03-11", got.LastActive.Format(time.DateOnly))
}

func TestDisplayStreak(t *testing.T) {
	now := day("2026-03-10").Add(12 * time.Hour)

	tests := []struct {
		name        string
		stats       models.UserImpactStats
		wantCurrent int
		wantLongest int
		wantToday   bool
		wantLast    *string
	}{
		{
			name:        "no activity",
			stats:       models.UserImpactStats{},
			wantCurrent: 0,
		},
		{
			name:        "active today",
			stats:       models.UserImpactStats{CurrentStreak: 3, LongestStreak: 4, LastActiveDate: dayPtr("2026-03-10")},
			wantCurrent: 3,
			wantLongest: 4,
			wantToday:   true,
			wantLast:    strPtr("2026-03-10"),
		},
		{
			name:        "active yesterday keeps streak",
			stats:       models.UserImpactStats{CurrentStreak: 3, LongestStreak: 4, LastActiveDate: dayPtr("2026-03-09")},
			wantCurrent: 3,
			wantLongest: 4,
			wantLast:    strPtr("2026-03-09"),
		},
		{
			name:        "older activity reads as broken",
			stats:       models.UserImpactStats{CurrentStreak: 3, LongestStreak: 4, LastActiveDate: dayPtr("2026-03-08")},
			wantCurrent: 0,
			wantLongest: 4,
			wantLast:    strPtr("2026-03-08"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayStreak(tt.stats, now)
			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantLongest, got.Longest)
			assert.Equal(t, tt.wantToday, got.IsActiveToday)
			assert.Equal(t, tt.wantLast, got.LastActive)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
