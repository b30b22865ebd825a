package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"

	"go.uber.org/zap"
)

// UploadImage turns a fridge photo into recipe suggestions.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		handleError(w, apperrors.InvalidRequest("Failed to parse multipart form. Please ensure the request is properly formatted."))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, apperrors.MissingRequiredField("file"))
		return
	}
	defer file.Close()

	recipes, err := h.recipeService.GenerateFromPhoto(r.Context(), file, header.Filename)
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Info("Generated recipes from photo", zap.Int("recipes", len(recipes)), zap.Int64("size", header.Size))
	respondJSON(w, http.StatusOK, recipes)
}

func (h *Handlers) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.SearchByIngredients(r.Context(), r.URL.Query().Get("ingredients"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (h *Handlers) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(w, apperrors.InvalidRequest("Invalid request body"))
		return
	}

	recipe, err := h.recipeService.SaveRecipe(r.Context(), raw)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, recipe)
}

func (h *Handlers) FavoriteRecipe(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(w, apperrors.InvalidRequest("Invalid request body"))
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		handleError(w, apperrors.InvalidRequest("Invalid request body"))
		return
	}
	var userID string
	if v, ok := fields["user_id"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &userID); err != nil {
			handleError(w, apperrors.InvalidRequestWithDetails("Invalid request body", "user_id must be a string"))
			return
		}
	}
	if resolved := resolveUserID(r, userID); resolved != userID {
		userID = resolved
		fields["user_id"], _ = json.Marshal(userID)
		raw, _ = json.Marshal(fields)
	}
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	fav, err := h.recipeService.FavoriteRecipe(r.Context(), raw)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fav)
}

func (h *Handlers) ListFavoriteRecipes(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r, r.URL.Query().Get("user_id"))
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	favorites, err := h.recipeService.ListFavorites(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if favorites == nil {
		favorites = []models.FavoriteRecipe{}
	}
	respondJSON(w, http.StatusOK, favorites)
}
