package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"
	"mealmaker-backend/repository"
	"mealmaker-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FridgeService interface {
	CreateListing(ctx context.Context, req *models.CreateListingRequest) (*models.FridgeListing, error)
	ListListings(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error)
	ListMyListings(ctx context.Context, userID string) ([]models.FridgeListing, error)
	GetListing(ctx context.Context, id string) (*models.FridgeListing, error)
	ClaimListing(ctx context.Context, id string, req *models.ClaimListingRequest) (*models.FridgeListing, error)
	DeleteListing(ctx context.Context, id, userID string) error
	UploadListingImage(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
}

type fridgeService struct {
	listingRepo   repository.ListingRepository
	impactService ImpactService
	storage       storage.Storage
	imagesBucket  string
}

func NewFridgeService(
	listingRepo repository.ListingRepository,
	impactService ImpactService,
	storageService storage.Storage,
	imagesBucket string,
) FridgeService {
	return &fridgeService{
		listingRepo:   listingRepo,
		impactService: impactService,
		storage:       storageService,
		imagesBucket:  imagesBucket,
	}
}

func (s *fridgeService) CreateListing(ctx context.Context, req *models.CreateListingRequest) (*models.FridgeListing, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}
	displayName := strings.TrimSpace(req.UserDisplayName)
	if displayName == "" {
		return nil, apperrors.MissingRequiredField("user_display_name")
	}

	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < MinListingTitleLength || n > MaxListingTitleLength {
		return nil, apperrors.InvalidRequestWithDetails(
			"Listing title has an invalid length.",
			fmt.Sprintf("Title must be between %d and %d characters.", MinListingTitleLength, MaxListingTitleLength),
		)
	}

	items := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, apperrors.MissingRequiredField("items")
	}
	if len(items) > MaxListingItems {
		return nil, apperrors.InvalidRequest(fmt.Sprintf("A listing can hold at most %d items.", MaxListingItems))
	}

	listing := &models.FridgeListing{
		ID:                 uuid.New().String(),
		UserID:             userID,
		UserDisplayName:    displayName,
		Title:              title,
		Description:        trimmedOrNil(req.Description),
		Items:              items,
		Quantity:           trimmedOrNil(req.Quantity),
		ExpiryHint:         trimmedOrNil(req.ExpiryHint),
		PickupInstructions: trimmedOrNil(req.PickupInstructions),
		ImageURL:           trimmedOrNil(req.ImageURL),
		Status:             models.ListingStatusAvailable,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, apperrors.DatabaseError("creating listing", err)
	}

	zap.L().Info("Created fridge listing",
		zap.String("listing_id", listing.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(items)))
	return listing, nil
}

func (s *fridgeService) ListListings(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error) {
	if status == "" {
		status = models.ListingStatusAvailable
	}
	switch status {
	case models.ListingStatusAvailable, models.ListingStatusClaimed:
	default:
		return nil, apperrors.InvalidRequestWithDetails("Unknown listing status.", "Expected one of: available, claimed")
	}

	listings, err := s.listingRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.DatabaseError("listing fridge listings", err)
	}
	return listings, nil
}

func (s *fridgeService) ListMyListings(ctx context.Context, userID string) ([]models.FridgeListing, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}
	listings, err := s.listingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing user listings", err)
	}
	return listings, nil
}

func (s *fridgeService) GetListing(ctx context.Context, id string) (*models.FridgeListing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ListingNotFound()
	}
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.ListingNotFound()
		}
		return nil, apperrors.DatabaseError("finding listing", err)
	}
	if listing.Status == models.ListingStatusDeleted {
		return nil, apperrors.ListingNotFound()
	}
	return listing, nil
}

// ClaimListing hands a listing to the claimer and credits the owner with a
// fridge_share impact event. A failure to record impact does not undo the claim.
func (s *fridgeService) ClaimListing(ctx context.Context, id string, req *models.ClaimListingRequest) (*models.FridgeListing, error) {
	claimedBy := strings.TrimSpace(req.ClaimedBy)
	if claimedBy == "" {
		return nil, apperrors.MissingRequiredField("claimed_by")
	}
	claimedByName := strings.TrimSpace(req.ClaimedByName)
	if claimedByName == "" {
		claimedByName = claimedBy
	}

	current, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID == claimedBy {
		return nil, apperrors.CannotSelfAction("claim your own listing")
	}
	if current.Status != models.ListingStatusAvailable {
		return nil, apperrors.AlreadyClaimed()
	}

	listing, err := s.listingRepo.Claim(ctx, id, claimedBy, claimedByName)
	if err != nil {
		return nil, apperrors.DatabaseError("claiming listing", err)
	}
	if listing == nil {
		return nil, apperrors.AlreadyClaimed()
	}

	listingClaimsTotal.Inc()
	zap.L().Info("Claimed fridge listing",
		zap.String("listing_id", id),
		zap.String("owner_id", listing.UserID),
		zap.String("claimed_by", claimedBy))

	s.recordShareImpact(ctx, listing)
	return listing, nil
}

func (s *fridgeService) recordShareImpact(ctx context.Context, listing *models.FridgeListing) {
	ingredients := make([]models.IngredientInput, 0, len(listing.Items))
	for _, item := range listing.Items {
		ingredients = append(ingredients, models.IngredientInput{Name: item, Unit: DefaultUnit})
	}
	if len(ingredients) == 0 {
		return
	}

	sourceID := listing.ID
	_, err := s.impactService.CalculateImpact(ctx, &models.ImpactCalculationRequest{
		UserID:      listing.UserID,
		Ingredients: ingredients,
		Source:      models.ImpactSourceFridgeShare,
		SourceID:    &sourceID,
	})
	if err != nil {
		zap.L().Warn("Failed to record impact for claimed listing",
			zap.String("listing_id", listing.ID),
			zap.String("owner_id", listing.UserID),
			zap.Error(err))
	}
}

func (s *fridgeService) DeleteListing(ctx context.Context, id, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.MissingRequiredField("user_id")
	}

	listing, err := s.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return apperrors.NotOwner("listing")
	}

	deleted, err := s.listingRepo.SoftDelete(ctx, id)
	if err != nil {
		return apperrors.DatabaseError("deleting listing", err)
	}
	if !deleted {
		return apperrors.ListingNotFound()
	}

	s.removeImage(ctx, listing)

	zap.L().Info("Deleted fridge listing", zap.String("listing_id", id), zap.String("user_id", userID))
	return nil
}

// removeImage drops the stored photo of a deleted listing. Failures only
// leave an orphaned object behind.
func (s *fridgeService) removeImage(ctx context.Context, listing *models.FridgeListing) {
	if s.storage == nil || listing.ImageURL == nil {
		return
	}
	name, ok := s.storage.ObjectName(s.imagesBucket, *listing.ImageURL)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, s.imagesBucket, name); err != nil {
		zap.L().Warn("Failed to delete listing image",
			zap.String("listing_id", listing.ID),
			zap.String("object", name),
			zap.Error(err))
	}
}

func (s *fridgeService) UploadListingImage(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	if s.storage == nil {
		return "", apperrors.StorageError("storage not configured", nil)
	}
	name := fmt.Sprintf("listings/%s%s", uuid.New().String(), imageExtension(filename, contentType))
	url, err := s.storage.Upload(ctx, s.imagesBucket, name, file, contentType)
	if err != nil {
		return "", apperrors.StorageError("uploading listing image", err)
	}
	return url, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func imageExtension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	}
	return ".jpg"
}
