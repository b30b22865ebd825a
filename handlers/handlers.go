package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/middleware"
	"mealmaker-backend/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ErrorResponse carries the same user-facing text in detail and message;
// clients read either.
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// MaxUploadSize bounds multipart photo uploads.
const MaxUploadSize = 10 << 20

type Handlers struct {
	impactService services.ImpactService
	fridgeService services.FridgeService
	recipeService services.RecipeService
	requireAuth   bool
}

func NewHandlers(
	impactService services.ImpactService,
	fridgeService services.FridgeService,
	recipeService services.RecipeService,
	requireAuth bool,
) *Handlers {
	return &Handlers{
		impactService: impactService,
		fridgeService: fridgeService,
		recipeService: recipeService,
		requireAuth:   requireAuth,
	}
}

// RegisterRoutes mounts everything except the photo-to-recipe route, which
// the caller places behind the stricter AI rate limit.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/impact", func(r chi.Router) {
		r.Post("/calculate", h.CalculateImpact)
		r.Post("/estimate", h.EstimateImpact)
		r.Get("/summary/{user_id}", h.GetImpactSummary)
		r.Get("/badges/{user_id}", h.GetGamification)
		r.Put("/goal", h.UpdateWeeklyGoal)
		r.Get("/history/{user_id}", h.GetImpactHistory)
		r.Post("/events/{event_id}/reverse", h.ReverseImpactEvent)
	})

	r.Route("/fridge-listings", func(r chi.Router) {
		r.Post("/", h.CreateListing)
		r.Get("/", h.ListListings)
		r.Get("/mine", h.ListMyListings)
		r.Post("/image", h.UploadListingImage)
		r.Get("/{id}", h.GetListing)
		r.Patch("/{id}/claim", h.ClaimListing)
		r.Delete("/{id}", h.DeleteListing)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/search", h.SearchRecipes)
		r.Post("/save", h.SaveRecipe)
		r.Post("/favorite", h.FavoriteRecipe)
		r.Get("/favorite", h.ListFavoriteRecipes)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
	}
}

func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		status := apperrors.GetHTTPStatus(appErr.Type)

		if status >= 500 {
			zap.L().Error("App Error (Internal)",
				zap.String("code", string(appErr.Code)),
				zap.String("details", appErr.Details),
				zap.Error(appErr.Err))
		} else {
			zap.L().Debug("App Error (Client)",
				zap.String("code", string(appErr.Code)),
				zap.String("message", appErr.Message))
		}

		resp := ErrorResponse{
			Detail:  appErr.Message,
			Message: appErr.Message,
			Code:    string(appErr.Code),
		}
		// Details of server-side failures name internal operations.
		if status < 500 {
			resp.Hint = appErr.Details
		}
		respondJSON(w, status, resp)
		return
	}

	zap.L().Error("Non-AppError returned (bug)",
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)))

	internal := apperrors.InternalError(err)
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Detail:  internal.Message,
		Message: internal.Message,
		Code:    string(internal.Code),
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidRequestWithDetails("Invalid request body", err.Error())
	}
	return nil
}

// authorizeUser checks that userID names the caller. Anonymous callers are
// accepted only while authentication is optional.
func (h *Handlers) authorizeUser(r *http.Request, userID string) error {
	caller, ok := middleware.GetUserID(r.Context())
	if !ok {
		if h.requireAuth {
			return apperrors.Unauthorized("User ID not found in authentication context")
		}
		return nil
	}
	if userID != "" && caller != userID {
		return apperrors.Forbidden("You can only act on your own account.")
	}
	return nil
}

// resolveUserID fills an empty user_id from the authenticated caller.
func resolveUserID(r *http.Request, userID string) string {
	if userID != "" {
		return userID
	}
	caller, _ := middleware.GetUserID(r.Context())
	return caller
}
