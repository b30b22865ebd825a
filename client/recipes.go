package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mealmaker-backend/models"
)

// NormalizeRecipe reads a recipe in canonical or legacy casing. Shapes it
// cannot read fail with *models.SchemaMismatchError.
func NormalizeRecipe(raw []byte) (*models.Recipe, error) {
	return models.NormalizeRecipe(raw)
}

func normalizeList(raw []json.RawMessage) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0, len(raw))
	for i, item := range raw {
		recipe, err := NormalizeRecipe(item)
		if err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}

// GenerateRecipes uploads a fridge photo and returns the suggested recipes.
func (c *Client) GenerateRecipes(ctx context.Context, filename string, photo io.Reader) ([]models.Recipe, error) {
	r, err := multipartRequest("/upload-image/", "file", filename, photo, c.timeouts.Upload)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	return normalizeList(raw)
}

// SearchRecipes returns an empty list when the service is unreachable.
func (c *Client) SearchRecipes(ctx context.Context, ingredients []string) ([]models.Recipe, error) {
	path := "/recipes/search?ingredients=" + url.QueryEscape(strings.Join(ingredients, ","))
	var raw []json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: path, timeout: c.timeouts.Read}, &raw); err != nil {
		if ferr := c.fallback(ctx, "search_recipes", err); ferr != nil {
			return nil, ferr
		}
		return []models.Recipe{}, nil
	}
	return normalizeList(raw)
}

func (c *Client) SaveRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r, err := c.jsonRequest(http.MethodPost, "/recipes/save", c.timeouts.Write, recipe)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	return NormalizeRecipe(raw)
}

func (c *Client) FavoriteRecipe(ctx context.Context, userID string, recipe *models.Recipe) (*models.FavoriteRecipe, error) {
	r, err := c.jsonRequest(http.MethodPost, "/recipes/favorite", c.timeouts.Write, models.FavoriteRecipe{
		Recipe: *recipe,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	return normalizeFavorite(raw)
}

// ListFavorites returns an empty list when the service is unreachable.
func (c *Client) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error) {
	path := "/recipes/favorite?user_id=" + url.QueryEscape(userID)
	var raw []json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: path, timeout: c.timeouts.Read}, &raw); err != nil {
		if ferr := c.fallback(ctx, "favorites", err); ferr != nil {
			return nil, ferr
		}
		return []models.FavoriteRecipe{}, nil
	}

	favorites := make([]models.FavoriteRecipe, 0, len(raw))
	for i, item := range raw {
		fav, err := normalizeFavorite(item)
		if err != nil {
			return nil, fmt.Errorf("favorite %d: %w", i, err)
		}
		favorites = append(favorites, *fav)
	}
	return favorites, nil
}

func normalizeFavorite(raw []byte) (*models.FavoriteRecipe, error) {
	recipe, err := NormalizeRecipe(raw)
	if err != nil {
		return nil, err
	}
	var owner struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &owner); err != nil {
		return nil, err
	}
	return &models.FavoriteRecipe{Recipe: *recipe, UserID: owner.UserID}, nil
}
