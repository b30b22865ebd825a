package repository

import (
	"context"
	"fmt"

	"mealmaker-backend/database"
	"mealmaker-backend/models"
)

type StatsRepository interface {
	LockUser(ctx context.Context, userID string) error
	GetStats(ctx context.Context, userID string) (*models.UserImpactStats, error)
	SaveStreak(ctx context.Context, stats *models.UserImpactStats) error
	SaveWeeklyGoal(ctx context.Context, userID string, goalKg float64) error
	GetEarnedBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error)
	AddBadge(ctx context.Context, badge *models.EarnedBadge) (bool, error)
	WithTx(tx database.Querier) StatsRepository
}

type statsRepository struct {
	db *database.DB
	tx database.Querier
}

func NewStatsRepository(db *database.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) WithTx(tx database.Querier) StatsRepository {
	return &statsRepository{db: r.db, tx: tx}
}

func (r *statsRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

// LockUser takes a transaction scoped advisory lock on the user. It only
// has an effect inside a transaction and is released on commit or rollback.
func (r *statsRepository) LockUser(ctx context.Context, userID string) error {
	if _, err := r.getQuerier().Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("locking user %s: %w", userID, err)
	}
	return nil
}

func (r *statsRepository) GetStats(ctx context.Context, userID string) (*models.UserImpactStats, error) {
	query := `SELECT user_id, current_streak, longest_streak, last_active_date, weekly_goal_kg, updated_at
		FROM user_impact_stats WHERE user_id = $1`
	var s models.UserImpactStats
	err := r.getQuerier().QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.LastActiveDate, &s.WeeklyGoalKg, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting impact stats: %w", err)
	}
	return &s, nil
}

func (r *statsRepository) SaveStreak(ctx context.Context, stats *models.UserImpactStats) error {
	query := `
		INSERT INTO user_impact_stats (user_id, current_streak, longest_streak, last_active_date, weekly_goal_kg, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_active_date = EXCLUDED.last_active_date,
			updated_at = NOW()
	`
	_, err := r.getQuerier().Exec(ctx, query,
		stats.UserID, stats.CurrentStreak, stats.LongestStreak, stats.LastActiveDate, stats.WeeklyGoalKg,
	)
	if err != nil {
		return fmt.Errorf("saving streak: %w", err)
	}
	return nil
}

func (r *statsRepository) SaveWeeklyGoal(ctx context.Context, userID string, goalKg float64) error {
	query := `
		INSERT INTO user_impact_stats (user_id, weekly_goal_kg, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			weekly_goal_kg = EXCLUDED.weekly_goal_kg,
			updated_at = NOW()
	`
	if _, err := r.getQuerier().Exec(ctx, query, userID, goalKg); err != nil {
		return fmt.Errorf("saving weekly goal: %w", err)
	}
	return nil
}

func (r *statsRepository) GetEarnedBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	query := `SELECT user_id, badge_type, tier, earned_at, event_id::text
		FROM user_badges WHERE user_id = $1 ORDER BY earned_at ASC`
	rows, err := r.getQuerier().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying badges: %w", err)
	}
	defer rows.Close()

	badges := []models.EarnedBadge{}
	for rows.Next() {
		var b models.EarnedBadge
		if err := rows.Scan(&b.UserID, &b.Type, &b.Tier, &b.EarnedAt, &b.EventID); err != nil {
			return nil, fmt.Errorf("scanning badge: %w", err)
		}
		b.EarnedAt = b.EarnedAt.UTC()
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating badges: %w", err)
	}
	return badges, nil
}

// AddBadge records an earned tier. It reports false when the tier was already recorded.
func (r *statsRepository) AddBadge(ctx context.Context, badge *models.EarnedBadge) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_type, tier, earned_at, event_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, badge_type, tier) DO NOTHING
	`
	tag, err := r.getQuerier().Exec(ctx, query, badge.UserID, badge.Type, badge.Tier, badge.EarnedAt, badge.EventID)
	if err != nil {
		return false, fmt.Errorf("recording badge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
