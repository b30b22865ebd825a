package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"mealmaker-backend/config"
	"mealmaker-backend/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rows, err := db.Pool.Query(ctx, `
		SELECT s.user_id, s.current_streak, s.longest_streak, s.last_active_date, s.weekly_goal_kg,
		       COALESCE(SUM(e.total_waste_kg) FILTER (WHERE e.status = 'active'), 0),
		       COUNT(e.id) FILTER (WHERE e.status = 'active'),
		       (SELECT COUNT(*) FROM user_badges b WHERE b.user_id = s.user_id)
		FROM user_impact_stats s
		LEFT JOIN impact_events e ON e.user_id = s.user_id
		GROUP BY s.user_id, s.current_streak, s.longest_streak, s.last_active_date, s.weekly_goal_kg
		ORDER BY s.user_id ASC`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	fmt.Println("Impact stats per user:")
	fmt.Println("----------------------")
	for rows.Next() {
		var (
			userID           string
			current, longest int
			lastActive       *time.Time
			goalKg, wasteKg  float64
			events, badges   int
		)
		if err := rows.Scan(&userID, &current, &longest, &lastActive, &goalKg, &wasteKg, &events, &badges); err != nil {
			log.Fatal(err)
		}
		last := "never"
		if lastActive != nil {
			last = lastActive.Format("2006-01-02")
		}
		fmt.Printf("%-32s | streak %2d (best %2d, last %s) | %6.2f kg over %3d events | goal %.1f kg | %d badges\n",
			userID, current, longest, last, wasteKg, events, goalKg, badges)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
}
