package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port                        string
	Env                         string
	DatabaseURL                 string
	GeminiAPIKey                string
	GeminiModel                 string
	SupabaseURL                 string
	SupabaseStorageURL          string
	SupabaseServiceRoleKey      string
	SupabaseFridgePhotosBucket  string
	SupabaseListingImagesBucket string
	JWTSecret                   string
	ClerkSecretKey              string
	RequireAuth                 bool
	AllowedOrigins              []string
	MaxBodySize                 int64
	ImpactCatalogPath           string
	AIRequestsPerMinute         int
	MetricsUser                 string
	MetricsPass                 string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")
	origins := os.Getenv("ALLOWED_ORIGINS")
	var allowedOrigins []string
	if origins != "" {
		allowedOrigins = splitOrigins(origins)
	} else {
		if env == "production" {
			zap.L().Warn("ALLOWED_ORIGINS not set in production, defaulting to '*'")
		}
		allowedOrigins = []string{"*"}
	}

	maxBodySize, err := getInt64("MAX_BODY_SIZE", 1*1024*1024)
	if err != nil {
		return nil, err
	}
	aiPerMinute, err := getInt64("AI_REQUESTS_PER_MINUTE", 8)
	if err != nil {
		return nil, err
	}
	requireAuth, err := getBool("REQUIRE_AUTH", env == "production")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                        getEnv("PORT", "8000"),
		Env:                         env,
		DatabaseURL:                 getEnv("DATABASE_URL", ""),
		GeminiAPIKey:                getEnv("GEMINI_API_KEY", ""),
		GeminiModel:                 getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SupabaseURL:                 getEnv("SUPABASE_URL", ""),
		SupabaseStorageURL:          getEnv("SUPABASE_STORAGE_URL", ""),
		SupabaseServiceRoleKey:      getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseFridgePhotosBucket:  getEnv("SUPABASE_FRIDGE_PHOTOS_BUCKET", "fridge-photos"),
		SupabaseListingImagesBucket: getEnv("SUPABASE_LISTING_IMAGES_BUCKET", "listing-images"),
		JWTSecret:                   getEnv("JWT_SECRET", ""),
		ClerkSecretKey:              getEnv("CLERK_SECRET_KEY", ""),
		RequireAuth:                 requireAuth,
		AllowedOrigins:              allowedOrigins,
		MaxBodySize:                 maxBodySize,
		ImpactCatalogPath:           getEnv("IMPACT_CATALOG_PATH", ""),
		AIRequestsPerMinute:         int(aiPerMinute),
		MetricsUser:                 getEnv("METRICS_USER", ""),
		MetricsPass:                 getEnv("METRICS_PASS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RequireAuth && cfg.JWTSecret == "" && cfg.ClerkSecretKey == "" {
		return nil, fmt.Errorf("REQUIRE_AUTH needs CLERK_SECRET_KEY or JWT_SECRET")
	}
	if cfg.SupabaseStorageURL == "" && cfg.SupabaseURL != "" {
		cfg.SupabaseStorageURL = strings.TrimSuffix(cfg.SupabaseURL, "/") + "/storage/v1"
	}

	return cfg, nil
}

// StorageEnabled reports whether uploads can reach Supabase Storage.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseStorageURL != "" && c.SupabaseServiceRoleKey != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", key, raw)
	}
	return v, nil
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
