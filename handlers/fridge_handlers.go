package handlers

import (
	"net/http"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/middleware"
	"mealmaker-backend/models"
	"mealmaker-backend/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.UserID = resolveUserID(r, req.UserID)
	if err := h.authorizeUser(r, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	listing, err := h.fridgeService.CreateListing(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, listing)
}

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	status := models.ListingStatus(r.URL.Query().Get("status"))

	listings, err := h.fridgeService.ListListings(r.Context(), status)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (h *Handlers) ListMyListings(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r, r.URL.Query().Get("user_id"))
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	listings, err := h.fridgeService.ListMyListings(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.fridgeService.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *Handlers) ClaimListing(w http.ResponseWriter, r *http.Request) {
	var req models.ClaimListingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.ClaimedBy = resolveUserID(r, req.ClaimedBy)
	if err := h.authorizeUser(r, req.ClaimedBy); err != nil {
		handleError(w, err)
		return
	}
	if req.ClaimedByName == "" {
		req.ClaimedByName, _ = middleware.GetUserName(r.Context())
	}

	listing, err := h.fridgeService.ClaimListing(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r, r.URL.Query().Get("user_id"))
	if err := h.authorizeUser(r, userID); err != nil {
		handleError(w, err)
		return
	}

	if err := h.fridgeService.DeleteListing(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Listing deleted", Success: true})
}

func (h *Handlers) UploadListingImage(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeUser(r, ""); err != nil {
		handleError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		handleError(w, apperrors.InvalidRequest("Failed to parse multipart form. Please ensure the request is properly formatted."))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		handleError(w, apperrors.MissingRequiredField("image"))
		return
	}
	defer file.Close()

	sniffed, contentType, err := storage.SniffImage(file)
	if err != nil {
		handleError(w, apperrors.InvalidRequestWithDetails("Please upload a photo.", err.Error()))
		return
	}

	url, err := h.fridgeService.UploadListingImage(r.Context(), sniffed, header.Filename, contentType)
	if err != nil {
		handleError(w, err)
		return
	}

	zap.L().Info("Uploaded listing image", zap.String("url", url), zap.Int64("size", header.Size))
	respondJSON(w, http.StatusOK, models.ImageUploadResponse{URL: url})
}
