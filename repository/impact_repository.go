package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mealmaker-backend/database"
	"mealmaker-backend/models"
)

type ImpactRepository interface {
	CreateEvent(ctx context.Context, event *models.ImpactEvent) error
	GetEvent(ctx context.Context, id string) (*models.ImpactEvent, error)
	UpdateEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error)
	ListEvents(ctx context.Context, userID string, limit int) ([]models.ImpactEvent, error)
	PeriodTotals(ctx context.Context, userID string, from, to *time.Time) (models.PeriodTotals, error)
	LifetimeMetrics(ctx context.Context, userID string) (models.LifetimeMetrics, error)
	WithTx(tx database.Querier) ImpactRepository
}

type impactRepository struct {
	db *database.DB
	tx database.Querier
}

func NewImpactRepository(db *database.DB) ImpactRepository {
	return &impactRepository{db: db}
}

func (r *impactRepository) WithTx(tx database.Querier) ImpactRepository {
	return &impactRepository{db: r.db, tx: tx}
}

func (r *impactRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

const eventColumns = `id, user_id, source, source_id, ingredients, total_waste_kg,
	total_cost_usd, total_co2_kg, status, created_at`

func (r *impactRepository) CreateEvent(ctx context.Context, event *models.ImpactEvent) error {
	ingredients, err := json.Marshal(event.Ingredients)
	if err != nil {
		return fmt.Errorf("encoding event ingredients: %w", err)
	}

	query := `INSERT INTO impact_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.getQuerier().Exec(ctx, query,
		event.ID, event.UserID, event.Source, event.SourceID, ingredients,
		event.TotalWasteKg, event.TotalCostUSD, event.TotalCO2Kg, event.Status, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting impact event: %w", err)
	}
	return nil
}

func (r *impactRepository) GetEvent(ctx context.Context, id string) (*models.ImpactEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM impact_events WHERE id = $1`
	row := r.getQuerier().QueryRow(ctx, query, id)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("getting impact event: %w", err)
	}
	return event, nil
}

// UpdateEventStatus moves an event from one status to another and reports
// whether a row matched, so concurrent transitions cannot both succeed.
func (r *impactRepository) UpdateEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	query := `UPDATE impact_events SET status = $3 WHERE id = $1 AND status = $2`
	tag, err := r.getQuerier().Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("updating impact event status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *impactRepository) ListEvents(ctx context.Context, userID string, limit int) ([]models.ImpactEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM impact_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	rows, err := r.getQuerier().Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying impact events: %w", err)
	}
	defer rows.Close()

	events := []models.ImpactEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning impact event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating impact events: %w", err)
	}
	return events, nil
}

// PeriodTotals sums active events with from <= created_at < to. A nil bound is open.
func (r *impactRepository) PeriodTotals(ctx context.Context, userID string, from, to *time.Time) (models.PeriodTotals, error) {
	query := `
		SELECT COALESCE(SUM(total_waste_kg), 0),
		       COALESCE(SUM(total_cost_usd), 0),
		       COALESCE(SUM(total_co2_kg), 0),
		       COUNT(*)
		FROM impact_events
		WHERE user_id = $1
		  AND status = 'active'
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
	`
	var t models.PeriodTotals
	err := r.getQuerier().QueryRow(ctx, query, userID, from, to).Scan(&t.WasteKg, &t.MoneyUSD, &t.CO2Kg, &t.EventCount)
	if err != nil {
		return t, fmt.Errorf("summing impact events: %w", err)
	}
	return t, nil
}

// LifetimeMetrics aggregates active events. CurrentStreak is left for the caller.
func (r *impactRepository) LifetimeMetrics(ctx context.Context, userID string) (models.LifetimeMetrics, error) {
	query := `
		SELECT COALESCE(SUM(total_waste_kg), 0),
		       COALESCE(SUM(total_cost_usd), 0),
		       COALESCE(SUM(total_co2_kg), 0),
		       COUNT(*) FILTER (WHERE source = 'recipe'),
		       COUNT(*) FILTER (WHERE source = 'fridge_share')
		FROM impact_events
		WHERE user_id = $1 AND status = 'active'
	`
	var m models.LifetimeMetrics
	err := r.getQuerier().QueryRow(ctx, query, userID).Scan(
		&m.WasteKg, &m.MoneyUSD, &m.CO2Kg, &m.RecipeEvents, &m.FridgeShareEvents,
	)
	if err != nil {
		return m, fmt.Errorf("aggregating lifetime metrics: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.ImpactEvent, error) {
	var e models.ImpactEvent
	var ingredients []byte
	if err := row.Scan(
		&e.ID, &e.UserID, &e.Source, &e.SourceID, &ingredients, &e.TotalWasteKg,
		&e.TotalCostUSD, &e.TotalCO2Kg, &e.Status, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Ingredients = []models.IngredientImpact{}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &e.Ingredients); err != nil {
			return nil, fmt.Errorf("decoding event ingredients: %w", err)
		}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
