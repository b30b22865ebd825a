package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"mealmaker-backend/catalog"
	"mealmaker-backend/database"
	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"
	"mealmaker-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ImpactService interface {
	CalculateImpact(ctx context.Context, req *models.ImpactCalculationRequest) (*models.ImpactCalculationResponse, error)
	EstimateImpact(ctx context.Context, items []models.IngredientInput) (*models.ImpactEstimateResponse, error)
	GetSummary(ctx context.Context, userID string) (*models.WeeklySummaryResponse, error)
	GetGamification(ctx context.Context, userID string) (*models.GamificationResponse, error)
	UpdateWeeklyGoal(ctx context.Context, userID string, goalKg float64) error
	GetHistory(ctx context.Context, userID string, limit int) (*models.ImpactHistoryResponse, error)
	ReverseEvent(ctx context.Context, userID, eventID string, status models.EventStatus) (*models.ImpactEvent, error)
}

type impactService struct {
	impactRepo    repository.ImpactRepository
	statsRepo     repository.StatsRepository
	db            database.TxRunner
	estimator     *ImpactEstimator
	badges        *BadgeEngine
	defaultGoalKg float64
	locks         *userLocks
	now           func() time.Time
}

func NewImpactService(
	impactRepo repository.ImpactRepository,
	statsRepo repository.StatsRepository,
	db database.TxRunner,
	cat *catalog.Catalog,
) ImpactService {
	return &impactService{
		impactRepo:    impactRepo,
		statsRepo:     statsRepo,
		db:            db,
		estimator:     NewImpactEstimator(cat),
		badges:        NewBadgeEngine(cat),
		defaultGoalKg: cat.Defaults.WeeklyGoalKg,
		locks:         newUserLocks(),
		now:           time.Now,
	}
}

func (s *impactService) CalculateImpact(ctx context.Context, req *models.ImpactCalculationRequest) (*models.ImpactCalculationResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}

	source := req.Source
	if source == "" {
		source = models.ImpactSourceRecipe
	}
	if !source.Valid() {
		return nil, apperrors.InvalidSource(string(source))
	}

	breakdown, totals, err := s.estimator.EstimateAll(req.Ingredients)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now().UTC()
	event := &models.ImpactEvent{
		ID:           uuid.New().String(),
		UserID:       userID,
		Source:       source,
		SourceID:     req.SourceID,
		Ingredients:  breakdown,
		TotalWasteKg: totals.WastePreventedKg,
		TotalCostUSD: totals.MoneySavedUSD,
		TotalCO2Kg:   totals.CO2AvoidedKg,
		Status:       models.EventStatusActive,
		CreatedAt:    now,
	}

	var update models.GamificationUpdate
	err = s.db.WithTx(ctx, func(q database.Querier) error {
		txStats := s.statsRepo.WithTx(q)
		txEvents := s.impactRepo.WithTx(q)

		if err := txStats.LockUser(ctx, userID); err != nil {
			return apperrors.DatabaseError("locking user stats", err)
		}

		if err := txEvents.CreateEvent(ctx, event); err != nil {
			return apperrors.DatabaseError("recording impact event", err)
		}

		stats, err := s.loadStats(ctx, txStats, userID)
		if err != nil {
			return err
		}

		streak := UpdateStreak(*stats, now)
		stats.CurrentStreak = streak.Current
		stats.LongestStreak = streak.Longest
		stats.LastActiveDate = &streak.LastActive
		if err := txStats.SaveStreak(ctx, stats); err != nil {
			return apperrors.DatabaseError("saving streak", err)
		}

		weekStart, weekEnd := WeekBounds(now)
		week, err := txEvents.PeriodTotals(ctx, userID, &weekStart, &weekEnd)
		if err != nil {
			return apperrors.DatabaseError("summing weekly impact", err)
		}

		metrics, err := txEvents.LifetimeMetrics(ctx, userID)
		if err != nil {
			return apperrors.DatabaseError("aggregating lifetime impact", err)
		}
		metrics.CurrentStreak = streak.Current

		earned, err := txStats.GetEarnedBadges(ctx, userID)
		if err != nil {
			return apperrors.DatabaseError("loading badges", err)
		}

		newBadges := []models.BadgeInfo{}
		for _, b := range s.badges.Evaluate(metrics, earned, now) {
			inserted, err := txStats.AddBadge(ctx, &models.EarnedBadge{
				UserID:   userID,
				Type:     b.Type,
				Tier:     b.Tier,
				EarnedAt: now,
				EventID:  &event.ID,
			})
			if err != nil {
				return apperrors.DatabaseError("recording badge", err)
			}
			if inserted {
				newBadges = append(newBadges, b)
			}
		}

		update = models.GamificationUpdate{
			Streak:            streak.Current,
			IsNewStreakRecord: streak.IsNewRecord,
			NewBadges:         newBadges,
			WeeklyProgress:    NewWeeklyProgress(week.WasteKg, stats.WeeklyGoalKg, weekStart),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	impactEventsTotal.WithLabelValues(string(source)).Inc()
	wastePreventedKg.Add(totals.WastePreventedKg)
	for _, b := range update.NewBadges {
		badgesAwardedTotal.WithLabelValues(string(b.Type), string(b.Tier)).Inc()
	}

	zap.L().Info("Recorded impact event",
		zap.String("user_id", userID),
		zap.String("event_id", event.ID),
		zap.String("source", string(source)),
		zap.Float64("waste_kg", totals.WastePreventedKg),
		zap.Int("streak", update.Streak),
		zap.Int("new_badges", len(update.NewBadges)))

	return &models.ImpactCalculationResponse{
		EventID:      event.ID,
		Totals:       totals,
		Breakdown:    breakdown,
		Gamification: update,
		Message:      impactMessage(totals, update),
	}, nil
}

func (s *impactService) EstimateImpact(ctx context.Context, items []models.IngredientInput) (*models.ImpactEstimateResponse, error) {
	breakdown, totals, err := s.estimator.EstimateAll(items)
	if err != nil {
		return nil, err
	}
	return &models.ImpactEstimateResponse{
		Totals:    totals,
		Breakdown: breakdown,
		Note:      EstimateNote,
	}, nil
}

func (s *impactService) GetSummary(ctx context.Context, userID string) (*models.WeeklySummaryResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}

	now := s.now().UTC()
	thisStart, thisEnd := WeekBounds(now)
	lastStart := thisStart.AddDate(0, 0, -7)

	var (
		thisWeek, lastWeek, allTime models.PeriodTotals
		stats                       *models.UserImpactStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		thisWeek, err = s.impactRepo.PeriodTotals(gctx, userID, &thisStart, &thisEnd)
		return err
	})
	g.Go(func() error {
		var err error
		lastWeek, err = s.impactRepo.PeriodTotals(gctx, userID, &lastStart, &thisStart)
		return err
	})
	g.Go(func() error {
		var err error
		allTime, err = s.impactRepo.PeriodTotals(gctx, userID, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.loadStats(gctx, s.statsRepo, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.DatabaseError("loading impact summary", err)
	}

	this := newPeriodSummary("this_week", thisWeek, &thisStart, &thisEnd)
	last := newPeriodSummary("last_week", lastWeek, &lastStart, &thisStart)

	return &models.WeeklySummaryResponse{
		UserID:     userID,
		ThisWeek:   this,
		LastWeek:   last,
		AllTime:    newPeriodSummary("all_time", allTime, nil, nil),
		WeeklyGoal: NewWeeklyProgress(thisWeek.WasteKg, stats.WeeklyGoalKg, thisStart),
		Comparison: ComparePeriods(this, last),
	}, nil
}

func (s *impactService) GetGamification(ctx context.Context, userID string) (*models.GamificationResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}

	now := s.now().UTC()
	weekStart, weekEnd := WeekBounds(now)

	var (
		stats   *models.UserImpactStats
		earned  []models.EarnedBadge
		metrics models.LifetimeMetrics
		week    models.PeriodTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.loadStats(gctx, s.statsRepo, userID)
		return err
	})
	g.Go(func() error {
		var err error
		earned, err = s.statsRepo.GetEarnedBadges(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = s.impactRepo.LifetimeMetrics(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		week, err = s.impactRepo.PeriodTotals(gctx, userID, &weekStart, &weekEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.DatabaseError("loading gamification state", err)
	}

	streak := DisplayStreak(*stats, now)
	metrics.CurrentStreak = streak.Current
	badges, next := s.badges.Overview(metrics, earned)

	return &models.GamificationResponse{
		UserID:            userID,
		Streak:            streak,
		Badges:            badges,
		WeeklyGoal:        NewWeeklyProgress(week.WasteKg, stats.WeeklyGoalKg, weekStart),
		NextBadgeProgress: next,
	}, nil
}

func (s *impactService) UpdateWeeklyGoal(ctx context.Context, userID string, goalKg float64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.MissingRequiredField("user_id")
	}
	if !(goalKg > 0) || math.IsInf(goalKg, 0) {
		return apperrors.InvalidGoal()
	}

	if err := s.statsRepo.SaveWeeklyGoal(ctx, userID, goalKg); err != nil {
		return apperrors.DatabaseError("updating weekly goal", err)
	}

	zap.L().Info("Updated weekly goal", zap.String("user_id", userID), zap.Float64("goal_kg", goalKg))
	return nil
}

func (s *impactService) GetHistory(ctx context.Context, userID string, limit int) (*models.ImpactHistoryResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}
	limit = ClampHistoryLimit(limit)

	events, err := s.impactRepo.ListEvents(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("listing impact events", err)
	}
	return &models.ImpactHistoryResponse{Events: events, Count: len(events)}, nil
}

// ReverseEvent retires an active event. Badges already earned are kept and the
// streak is not rewound; period totals stop counting the event immediately.
func (s *impactService) ReverseEvent(ctx context.Context, userID, eventID string, status models.EventStatus) (*models.ImpactEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, apperrors.InvalidFieldFormat("event_id", "UUID")
	}
	if status == "" {
		status = models.EventStatusReversed
	}
	if status != models.EventStatusReversed && status != models.EventStatusDeleted {
		return nil, apperrors.InvalidStatusTransition(string(models.EventStatusActive), string(status))
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var event *models.ImpactEvent
	err := s.db.WithTx(ctx, func(q database.Querier) error {
		txStats := s.statsRepo.WithTx(q)
		txEvents := s.impactRepo.WithTx(q)

		if err := txStats.LockUser(ctx, userID); err != nil {
			return apperrors.DatabaseError("locking user stats", err)
		}

		var err error
		event, err = txEvents.GetEvent(ctx, eventID)
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				return apperrors.EventNotFound()
			}
			return apperrors.DatabaseError("finding impact event", err)
		}
		if event.UserID != userID {
			return apperrors.NotOwner("impact event")
		}
		if event.Status != models.EventStatusActive {
			return apperrors.InvalidStatusTransition(string(event.Status), string(status))
		}

		ok, err := txEvents.UpdateEventStatus(ctx, eventID, models.EventStatusActive, status)
		if err != nil {
			return apperrors.DatabaseError("updating impact event", err)
		}
		if !ok {
			return apperrors.InvalidStatusTransition(string(event.Status), string(status))
		}
		event.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Reversed impact event",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("status", string(status)))
	return event, nil
}

func (s *impactService) loadStats(ctx context.Context, repo repository.StatsRepository, userID string) (*models.UserImpactStats, error) {
	stats, err := repo.GetStats(ctx, userID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return &models.UserImpactStats{UserID: userID, WeeklyGoalKg: s.defaultGoalKg}, nil
		}
		return nil, apperrors.DatabaseError("loading impact stats", err)
	}
	if stats.WeeklyGoalKg <= 0 {
		stats.WeeklyGoalKg = s.defaultGoalKg
	}
	return stats, nil
}

func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

func impactMessage(totals models.ImpactTotals, update models.GamificationUpdate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You saved %.2f kg of food, $%.2f and %.2f kg of CO2.",
		totals.WastePreventedKg, totals.MoneySavedUSD, totals.CO2AvoidedKg)

	if update.IsNewStreakRecord && update.Streak > 1 {
		fmt.Fprintf(&b, " New streak record: %d days!", update.Streak)
	} else if update.Streak > 1 {
		fmt.Fprintf(&b, " %d day streak.", update.Streak)
	}

	if len(update.NewBadges) > 0 {
		names := make([]string, len(update.NewBadges))
		for i, badge := range update.NewBadges {
			names[i] = badge.Name
		}
		label := "badge"
		if len(names) > 1 {
			label = "badges"
		}
		fmt.Fprintf(&b, " New %s: %s.", label, strings.Join(names, ", "))
	}
	return b.String()
}
