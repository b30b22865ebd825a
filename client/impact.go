package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"mealmaker-backend/models"
)

// CalculateImpact logs a cooking or sharing event. Errors propagate.
func (c *Client) CalculateImpact(ctx context.Context, req *models.ImpactCalculationRequest) (*models.ImpactCalculationResponse, error) {
	r, err := c.jsonRequest(http.MethodPost, "/impact/calculate", c.timeouts.Write, req)
	if err != nil {
		return nil, err
	}
	var resp models.ImpactCalculationResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EstimateImpact returns zero totals when the service is unreachable.
func (c *Client) EstimateImpact(ctx context.Context, items []models.IngredientInput) (*models.ImpactEstimateResponse, error) {
	r, err := c.jsonRequest(http.MethodPost, "/impact/estimate", c.timeouts.Read, items)
	if err != nil {
		return nil, err
	}
	var resp models.ImpactEstimateResponse
	if err := c.do(ctx, r, &resp); err != nil {
		if ferr := c.fallback(ctx, "estimate", err); ferr != nil {
			return nil, ferr
		}
		return &models.ImpactEstimateResponse{Breakdown: []models.IngredientImpact{}}, nil
	}
	return &resp, nil
}

func (c *Client) GetSummary(ctx context.Context, userID string) (*models.WeeklySummaryResponse, error) {
	r := request{method: http.MethodGet, path: "/impact/summary/" + url.PathEscape(userID), timeout: c.timeouts.Read}
	var resp models.WeeklySummaryResponse
	if err := c.do(ctx, r, &resp); err != nil {
		if ferr := c.fallback(ctx, "summary", err); ferr != nil {
			return nil, ferr
		}
		return c.defaultSummary(userID), nil
	}
	return &resp, nil
}

func (c *Client) GetGamification(ctx context.Context, userID string) (*models.GamificationResponse, error) {
	r := request{method: http.MethodGet, path: "/impact/badges/" + url.PathEscape(userID), timeout: c.timeouts.Read}
	var resp models.GamificationResponse
	if err := c.do(ctx, r, &resp); err != nil {
		if ferr := c.fallback(ctx, "gamification", err); ferr != nil {
			return nil, ferr
		}
		return &models.GamificationResponse{
			UserID:     userID,
			Badges:     []models.BadgeInfo{},
			WeeklyGoal: c.defaultWeeklyGoal(),
		}, nil
	}
	return &resp, nil
}

// UpdateWeeklyGoal propagates validation errors such as a non-positive goal.
func (c *Client) UpdateWeeklyGoal(ctx context.Context, userID string, goalKg float64) (*models.MessageResponse, error) {
	r, err := c.jsonRequest(http.MethodPut, "/impact/goal", c.timeouts.Read, models.WeeklyGoalUpdateRequest{
		UserID:       userID,
		WeeklyGoalKg: goalKg,
	})
	if err != nil {
		return nil, err
	}
	var resp models.MessageResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetHistory(ctx context.Context, userID string, limit int) (*models.ImpactHistoryResponse, error) {
	path := "/impact/history/" + url.PathEscape(userID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	r := request{method: http.MethodGet, path: path, timeout: c.timeouts.Read}
	var resp models.ImpactHistoryResponse
	if err := c.do(ctx, r, &resp); err != nil {
		if ferr := c.fallback(ctx, "history", err); ferr != nil {
			return nil, ferr
		}
		return &models.ImpactHistoryResponse{Events: []models.ImpactEvent{}}, nil
	}
	return &resp, nil
}

func (c *Client) ReverseEvent(ctx context.Context, userID, eventID string, status models.EventStatus) (*models.ImpactEvent, error) {
	r, err := c.jsonRequest(http.MethodPost, "/impact/events/"+url.PathEscape(eventID)+"/reverse", c.timeouts.Write, models.ReverseEventRequest{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	var event models.ImpactEvent
	if err := c.do(ctx, r, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) defaultWeeklyGoal() models.WeeklyProgress {
	return models.WeeklyProgress{GoalKg: DefaultWeeklyGoalKg, WeekStart: c.weekStart()}
}

func (c *Client) defaultSummary(userID string) *models.WeeklySummaryResponse {
	return &models.WeeklySummaryResponse{
		UserID:     userID,
		ThisWeek:   models.PeriodSummary{Period: "this_week"},
		LastWeek:   models.PeriodSummary{Period: "last_week"},
		AllTime:    models.PeriodSummary{Period: "all_time"},
		WeeklyGoal: c.defaultWeeklyGoal(),
	}
}
