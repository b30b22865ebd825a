package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"
	"mealmaker-backend/repository"
	"mealmaker-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxSearchTerms   = 10
	MaxSearchResults = 50
)

type RecipeService interface {
	GenerateFromPhoto(ctx context.Context, photo io.Reader, filename string) ([]models.Recipe, error)
	SearchByIngredients(ctx context.Context, query string) ([]models.Recipe, error)
	SaveRecipe(ctx context.Context, raw []byte) (*models.Recipe, error)
	FavoriteRecipe(ctx context.Context, raw []byte) (*models.FavoriteRecipe, error)
	ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error)
}

type recipeService struct {
	recipeRepo   repository.RecipeRepository
	generator    RecipeGenerator
	storage      storage.Storage
	photosBucket string
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	generator RecipeGenerator,
	storageService storage.Storage,
	photosBucket string,
) RecipeService {
	return &recipeService{
		recipeRepo:   recipeRepo,
		generator:    generator,
		storage:      storageService,
		photosBucket: photosBucket,
	}
}

func (s *recipeService) GenerateFromPhoto(ctx context.Context, photo io.Reader, filename string) ([]models.Recipe, error) {
	if s.generator == nil {
		return nil, apperrors.AIServiceError(errors.New("recipe generator not configured"))
	}

	sniffed, contentType, err := storage.SniffImage(photo)
	if err != nil {
		return nil, apperrors.InvalidRequestWithDetails("Please upload a photo.", err.Error())
	}
	image, err := io.ReadAll(sniffed)
	if err != nil {
		return nil, apperrors.InvalidRequest("Could not read the uploaded photo.")
	}

	photoURL := s.storePhoto(ctx, image, filename, contentType)

	answer, err := s.generator.GenerateRecipes(ctx, image, contentType)
	if err != nil {
		recipeGenerationsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.AIServiceError(err)
	}

	recipes, err := ParseRecipeAnswer(answer)
	if err != nil {
		recipeGenerationsTotal.WithLabelValues("malformed").Inc()
		zap.L().Warn("Model returned unusable recipes", zap.Error(err), zap.Int("answer_len", len(answer)))
		return nil, apperrors.AIServiceError(err)
	}
	if len(recipes) == 0 {
		recipeGenerationsTotal.WithLabelValues("empty").Inc()
		return nil, apperrors.RecipeNotFound()
	}

	recipeGenerationsTotal.WithLabelValues("ok").Inc()
	for i := range recipes {
		if photoURL != "" && recipes[i].ImageURL == nil {
			url := photoURL
			recipes[i].ImageURL = &url
		}
	}
	return recipes, nil
}

// storePhoto keeps a copy of the fridge photo. Failures only cost the image URL.
func (s *recipeService) storePhoto(ctx context.Context, image []byte, filename, contentType string) string {
	if s.storage == nil || s.photosBucket == "" {
		return ""
	}
	name := fmt.Sprintf("fridge/%s%s", uuid.New().String(), imageExtension(filename, contentType))
	url, err := s.storage.Upload(ctx, s.photosBucket, name, bytes.NewReader(image), contentType)
	if err != nil {
		zap.L().Warn("Failed to store fridge photo", zap.String("bucket", s.photosBucket), zap.Error(err))
		return ""
	}
	return url
}

// ParseRecipeAnswer reads the model's answer as a JSON array of recipes, or a
// single recipe object, and normalizes each entry.
func ParseRecipeAnswer(answer string) ([]models.Recipe, error) {
	text := cleanJSONResponse(answer)
	if text == "" {
		return nil, fmt.Errorf("empty model answer")
	}

	var items []json.RawMessage
	if strings.HasPrefix(text, "{") {
		items = []json.RawMessage{json.RawMessage(text)}
	} else if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("parsing model answer: %w", err)
	}

	recipes := make([]models.Recipe, 0, len(items))
	for i, item := range items {
		r, err := models.NormalizeRecipe(item)
		if err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, nil
}

func (s *recipeService) SearchByIngredients(ctx context.Context, query string) ([]models.Recipe, error) {
	terms := splitTerms(query)
	if len(terms) == 0 {
		return []models.Recipe{}, nil
	}
	if len(terms) > MaxSearchTerms {
		terms = terms[:MaxSearchTerms]
	}

	recipes, err := s.recipeRepo.SearchByIngredients(ctx, terms, MaxSearchResults)
	if err != nil {
		return nil, apperrors.DatabaseError("searching recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) SaveRecipe(ctx context.Context, raw []byte) (*models.Recipe, error) {
	recipe, err := models.NormalizeRecipe(raw)
	if err != nil {
		return nil, schemaError(err)
	}

	recipe.ID = uuid.New().String()
	if err := s.recipeRepo.Save(ctx, recipe); err != nil {
		return nil, apperrors.DatabaseError("saving recipe", err)
	}

	zap.L().Info("Saved recipe", zap.String("recipe_id", recipe.ID), zap.String("name", recipe.Name))
	return recipe, nil
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, raw []byte) (*models.FavoriteRecipe, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.InvalidRequest("Invalid request body")
	}

	var userID string
	if v, ok := fields["user_id"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &userID); err != nil {
			return nil, apperrors.InvalidRequestWithDetails("Invalid request body", "user_id must be a string")
		}
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}

	recipe, err := models.NormalizeRecipeFields(fields)
	if err != nil {
		return nil, schemaError(err)
	}
	recipe.ID = uuid.New().String()

	fav := &models.FavoriteRecipe{Recipe: *recipe, UserID: userID}
	if err := s.recipeRepo.AddFavorite(ctx, fav); err != nil {
		return nil, apperrors.DatabaseError("saving favorite recipe", err)
	}

	zap.L().Info("Favorited recipe", zap.String("user_id", userID), zap.String("name", fav.Name))
	return fav, nil
}

func (s *recipeService) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingRequiredField("user_id")
	}
	favorites, err := s.recipeRepo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing favorite recipes", err)
	}
	return favorites, nil
}

func schemaError(err error) error {
	var mismatch *models.SchemaMismatchError
	if errors.As(err, &mismatch) {
		return apperrors.SchemaMismatch(mismatch.Field, mismatch.Reason)
	}
	return apperrors.InvalidRequest("Invalid recipe")
}

func splitTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, part := range strings.Split(query, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}

func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
	}
	if idx := strings.Index(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.Trim(strings.TrimSpace(text), "`")
}
