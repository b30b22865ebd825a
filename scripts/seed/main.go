package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"mealmaker-backend/catalog"
	"mealmaker-backend/config"
	"mealmaker-backend/database"
	"mealmaker-backend/models"
	"mealmaker-backend/repository"
	"mealmaker-backend/services"
)

type seedUser struct {
	ID     string
	Name   string
	GoalKg float64
}

var users = []seedUser{
	{ID: "user_2alice0000000000000000001", Name: "Alice", GoalKg: 2.0},
	{ID: "user_2bob000000000000000000002", Name: "Bob", GoalKg: 3.5},
	{ID: "user_2charlie00000000000000003", Name: "Charlie", GoalKg: 1.0},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cat, err := catalog.Load(cfg.ImpactCatalogPath)
	if err != nil {
		log.Fatalf("Failed to load impact catalog: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Starting database seeding...")

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := clearDatabase(ctx, db); err != nil {
		log.Printf("Warning: Failed to clear database: %v", err)
		log.Println("Continuing with seeding...")
	}

	impactService := services.NewImpactService(
		repository.NewImpactRepository(db),
		repository.NewStatsRepository(db),
		db,
		cat,
	)
	fridgeService := services.NewFridgeService(repository.NewListingRepository(db), impactService, nil, cfg.SupabaseListingImagesBucket)
	recipeService := services.NewRecipeService(repository.NewRecipeRepository(db), nil, nil, cfg.SupabaseFridgePhotosBucket)

	events, err := seedImpact(ctx, impactService)
	if err != nil {
		log.Fatalf("Failed to seed impact events: %v", err)
	}
	log.Printf("✓ Seeded %d impact events", events)

	listings, err := seedListings(ctx, fridgeService)
	if err != nil {
		log.Fatalf("Failed to seed fridge listings: %v", err)
	}
	log.Printf("✓ Seeded %d fridge listings", listings)

	recipes, err := seedRecipes(ctx, recipeService)
	if err != nil {
		log.Fatalf("Failed to seed recipes: %v", err)
	}
	log.Printf("✓ Seeded %d recipes", recipes)

	log.Println("✓ Database seeding completed successfully!")
}

func clearDatabase(ctx context.Context, db *database.DB) error {
	log.Println("Clearing existing data...")

	tables := []string{
		"favorite_recipes",
		"recipes",
		"fridge_listings",
		"user_badges",
		"user_impact_stats",
		"impact_events",
	}
	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func seedImpact(ctx context.Context, svc services.ImpactService) (int, error) {
	meals := [][]models.IngredientInput{
		{{Name: "tomato", Quantity: float64Ptr(3), Unit: "piece"}, {Name: "onion", Quantity: float64Ptr(1), Unit: "piece"}},
		{{Name: "rice", Quantity: float64Ptr(250), Unit: "g"}, {Name: "egg", Quantity: float64Ptr(2), Unit: "piece"}},
		{{Name: "spinach", Quantity: float64Ptr(1), Unit: "cup"}, {Name: "chicken", Quantity: float64Ptr(0.4), Unit: "kg"}},
		{{Name: "bread", Quantity: float64Ptr(4), Unit: "slice"}, {Name: "cheese", Quantity: float64Ptr(100), Unit: "g"}},
	}

	count := 0
	for i, u := range users {
		if err := svc.UpdateWeeklyGoal(ctx, u.ID, u.GoalKg); err != nil {
			return count, fmt.Errorf("setting goal for %s: %w", u.Name, err)
		}
		for _, meal := range meals[:len(meals)-i] {
			resp, err := svc.CalculateImpact(ctx, &models.ImpactCalculationRequest{
				UserID:      u.ID,
				Ingredients: meal,
				Source:      models.ImpactSourceRecipe,
			})
			if err != nil {
				return count, fmt.Errorf("recording impact for %s: %w", u.Name, err)
			}
			for _, b := range resp.Gamification.NewBadges {
				log.Printf("  %s earned %s", u.Name, b.Name)
			}
			count++
		}
	}
	return count, nil
}

func seedListings(ctx context.Context, svc services.FridgeService) (int, error) {
	requests := []models.CreateListingRequest{
		{
			UserID:             users[0].ID,
			UserDisplayName:    users[0].Name,
			Title:              "Leftover veggies",
			Description:        stringPtr("Half a bag of carrots and some peppers"),
			Items:              []string{"carrot", "bell pepper"},
			ExpiryHint:         stringPtr("Best by Friday"),
			PickupInstructions: stringPtr("Front porch after 6pm"),
		},
		{
			UserID:          users[1].ID,
			UserDisplayName: users[1].Name,
			Title:           "Sourdough loaf",
			Items:           []string{"bread"},
			Quantity:        stringPtr("1 loaf"),
		},
		{
			UserID:          users[2].ID,
			UserDisplayName: users[2].Name,
			Title:           "Yogurt and milk",
			Items:           []string{"yogurt", "milk"},
		},
	}

	created := make([]*models.FridgeListing, 0, len(requests))
	for i := range requests {
		listing, err := svc.CreateListing(ctx, &requests[i])
		if err != nil {
			return len(created), fmt.Errorf("creating listing %q: %w", requests[i].Title, err)
		}
		created = append(created, listing)
	}

	if _, err := svc.ClaimListing(ctx, created[0].ID, &models.ClaimListingRequest{
		ClaimedBy:     users[1].ID,
		ClaimedByName: users[1].Name,
	}); err != nil {
		return len(created), fmt.Errorf("claiming listing: %w", err)
	}

	return len(created), nil
}

func seedRecipes(ctx context.Context, svc services.RecipeService) (int, error) {
	recipes := []map[string]interface{}{
		{
			"name":        "Tomato Egg Fried Rice",
			"ingredients": []string{"2 eggs", "1 cup cooked rice", "2 tomatoes", "1 onion"},
			"steps":       []string{"Scramble the eggs", "Fry onion and tomato", "Add rice and eggs, stir fry 3 minutes"},
			"time":        15,
		},
		{
			"Name":        "Spinach Chicken Skillet",
			"Ingredients": `["400g chicken","1 cup spinach","2 cloves garlic"]`,
			"Steps":       `["Brown the chicken","Wilt spinach with garlic","Combine and season"]`,
			"Time":        25,
		},
		{
			"name":        "Cheesy Toast",
			"ingredients": []string{"4 slices bread", "100g cheese"},
			"steps":       []string{"Top bread with cheese", "Grill until bubbling"},
		},
	}

	for i, r := range recipes {
		raw, err := json.Marshal(r)
		if err != nil {
			return i, err
		}
		if _, err := svc.SaveRecipe(ctx, raw); err != nil {
			return i, fmt.Errorf("saving recipe %d: %w", i, err)
		}
	}

	fav, err := json.Marshal(map[string]interface{}{
		"user_id":     users[0].ID,
		"name":        recipes[0]["name"],
		"ingredients": recipes[0]["ingredients"],
		"steps":       recipes[0]["steps"],
		"time":        recipes[0]["time"],
	})
	if err != nil {
		return len(recipes), err
	}
	if _, err := svc.FavoriteRecipe(ctx, fav); err != nil {
		return len(recipes), fmt.Errorf("favoriting recipe: %w", err)
	}

	return len(recipes), nil
}

func float64Ptr(v float64) *float64 {
	return &v
}

func stringPtr(s string) *string {
	return &s
}
