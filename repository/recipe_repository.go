package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealmaker-backend/database"
	"mealmaker-backend/models"

	"github.com/jackc/pgx/v5"
)

type RecipeRepository interface {
	Save(ctx context.Context, recipe *models.Recipe) error
	SearchByIngredients(ctx context.Context, terms []string, limit int) ([]models.Recipe, error)
	AddFavorite(ctx context.Context, fav *models.FavoriteRecipe) error
	ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error)
}

type recipeRepository struct {
	db *database.DB
}

func NewRecipeRepository(db *database.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Save(ctx context.Context, recipe *models.Recipe) error {
	query := `INSERT INTO recipes (id, name, ingredients, steps, time_minutes, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, query,
		recipe.ID, recipe.Name, recipe.Ingredients, recipe.Steps, recipe.Time, recipe.ImageURL,
	).Scan(&recipe.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving recipe: %w", err)
	}
	return nil
}

// SearchByIngredients matches recipes whose ingredient lines mention every term.
func (r *recipeRepository) SearchByIngredients(ctx context.Context, terms []string, limit int) ([]models.Recipe, error) {
	patterns := make([]string, len(terms))
	for i, t := range terms {
		patterns[i] = "%" + escapeLike(strings.ToLower(t)) + "%"
	}

	query := `
		SELECT id, name, ingredients, steps, time_minutes, image_url, created_at
		FROM recipes r
		WHERE NOT EXISTS (
			SELECT 1 FROM unnest($1::text[]) AS p(pattern)
			WHERE NOT EXISTS (
				SELECT 1 FROM unnest(r.ingredients) AS i(line)
				WHERE lower(i.line) LIKE p.pattern
			)
		)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, patterns, limit)
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var rec models.Recipe
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Ingredients, &rec.Steps, &rec.Time, &rec.ImageURL, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	return recipes, nil
}

// AddFavorite is idempotent per (user, name); a repeat refreshes the stored recipe.
func (r *recipeRepository) AddFavorite(ctx context.Context, fav *models.FavoriteRecipe) error {
	query := `
		INSERT INTO favorite_recipes (id, user_id, name, ingredients, steps, time_minutes, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, name) DO UPDATE SET
			ingredients = EXCLUDED.ingredients,
			steps = EXCLUDED.steps,
			time_minutes = EXCLUDED.time_minutes,
			image_url = COALESCE(EXCLUDED.image_url, favorite_recipes.image_url)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		fav.ID, fav.UserID, fav.Name, fav.Ingredients, fav.Steps, fav.Time, fav.ImageURL,
	).Scan(&fav.ID, &fav.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving favorite recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteRecipe, error) {
	query := `SELECT id, user_id, name, ingredients, steps, time_minutes, image_url, created_at
		FROM favorite_recipes WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorite recipes: %w", err)
	}
	defer rows.Close()

	favorites := []models.FavoriteRecipe{}
	for rows.Next() {
		var f models.FavoriteRecipe
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Ingredients, &f.Steps, &f.Time, &f.ImageURL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite recipe: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorite recipes: %w", err)
	}
	return favorites, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
