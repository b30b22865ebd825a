package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"mealmaker-backend/config"
	"mealmaker-backend/middleware"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	userID := flag.String("user", seedUsers[0].id, "user id placed in the sub claim")
	name := flag.String("name", seedUsers[0].name, "display name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET not found in .env")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  *userID,
		"name": *name,
		"iat":  now.Unix(),
		"exp":  now.Add(*ttl).Unix(),
	})

	tokenString, err := token.SignedString(middleware.SigningKey(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("Generated token for %s (%s), valid for %s:\n", *name, *userID, *ttl)
	fmt.Println("-----------------------------------------------")
	fmt.Println(tokenString)
	fmt.Println("-----------------------------------------------")
	fmt.Println("\nSeeded user IDs:")
	for _, u := range seedUsers {
		fmt.Printf("%-8s %s\n", u.name+":", u.id)
	}
}

// Matches the users created by scripts/seed.
var seedUsers = []struct {
	id   string
	name string
}{
	{"user_2alice0000000000000000001", "Alice"},
	{"user_2bob000000000000000000002", "Bob"},
	{"user_2charlie00000000000000003", "Charlie"},
}
