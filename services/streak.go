package services

import (
	"time"

	"mealmaker-backend/models"
)

// StreakResult is the outcome of applying one impact event to a streak.
type StreakResult struct {
	Current       int
	Longest       int
	LastActive    time.Time
	IsActiveToday bool
	IsNewRecord   bool
}

// UTCDate truncates t to midnight of its UTC calendar day.
func UTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateStreak applies an event at eventTime to the persisted stats.
// Events dated on or before the last active day leave the counters untouched.
func UpdateStreak(stats models.UserImpactStats, eventTime time.Time) StreakResult {
	eventDay := UTCDate(eventTime)
	prevLongest := stats.LongestStreak

	res := StreakResult{
		Current:       stats.CurrentStreak,
		Longest:       stats.LongestStreak,
		LastActive:    eventDay,
		IsActiveToday: true,
	}

	switch {
	case stats.LastActiveDate == nil || stats.CurrentStreak == 0:
		res.Current = 1
	default:
		last := UTCDate(*stats.LastActiveDate)
		switch {
		case !eventDay.After(last):
			res.LastActive = last
		case eventDay.Equal(last.AddDate(0, 0, 1)):
			res.Current = stats.CurrentStreak + 1
		default:
			res.Current = 1
		}
	}

	if res.Current > res.Longest {
		res.Longest = res.Current
	}
	res.IsNewRecord = res.Current == res.Longest && res.Current > prevLongest
	return res
}

// DisplayStreak reports the streak as seen on now. A streak whose last active
// day is older than yesterday is broken and reads as zero until the next event.
func DisplayStreak(stats models.UserImpactStats, now time.Time) models.StreakInfo {
	info := models.StreakInfo{
		Current: stats.CurrentStreak,
		Longest: stats.LongestStreak,
	}
	if stats.LastActiveDate == nil {
		info.Current = 0
		return info
	}

	last := UTCDate(*stats.LastActiveDate)
	today := UTCDate(now)
	lastStr := last.Format(time.DateOnly)
	info.LastActive = &lastStr
	info.IsActiveToday = last.Equal(today)
	if last.Before(today.AddDate(0, 0, -1)) {
		info.Current = 0
	}
	if info.Longest < info.Current {
		info.Longest = info.Current
	}
	return info
}
