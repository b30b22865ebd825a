package handlers

import (
	"net/http"
	"strconv"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) CalculateImpact(w http.ResponseWriter, r *http.Request) {
	var req models.ImpactCalculationRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.UserID = resolveUserID(r, req.UserID)
	if err := h.authorizeUser(r, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.impactService.CalculateImpact(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// EstimateImpact takes a bare JSON array of ingredients and persists nothing.
func (h *Handlers) EstimateImpact(w http.ResponseWriter, r *http.Request) {
	var items []models.IngredientInput
	if err := decodeJSON(r, &items); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.impactService.EstimateImpact(r.Context(), items)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetImpactSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.impactService.GetSummary(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetGamification(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	resp, err := h.impactService.GetGamification(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) UpdateWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	var req models.WeeklyGoalUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.UserID = resolveUserID(r, req.UserID)
	if err := h.authorizeUser(r, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	if err := h.impactService.UpdateWeeklyGoal(r.Context(), req.UserID, req.WeeklyGoalKg); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Weekly goal updated", Success: true})
}

func (h *Handlers) GetImpactHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handleError(w, apperrors.InvalidFieldFormat("limit", "integer"))
			return
		}
		limit = n
	}

	resp, err := h.impactService.GetHistory(r.Context(), userID, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ReverseImpactEvent(w http.ResponseWriter, r *http.Request) {
	var req models.ReverseEventRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.UserID = resolveUserID(r, req.UserID)
	if err := h.authorizeUser(r, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	event, err := h.impactService.ReverseEvent(r.Context(), req.UserID, chi.URLParam(r, "event_id"), req.Status)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}
