package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealmaker-backend/catalog"
	"mealmaker-backend/config"
	"mealmaker-backend/database"
	"mealmaker-backend/handlers"
	authmiddleware "mealmaker-backend/middleware"
	"mealmaker-backend/repository"
	"mealmaker-backend/services"
	"mealmaker-backend/storage"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	impactCatalog, err := catalog.Load(cfg.ImpactCatalogPath)
	if err != nil {
		logger.Fatal("Failed to load impact catalog", zap.String("path", cfg.ImpactCatalogPath), zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	impactRepo := repository.NewImpactRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	listingRepo := repository.NewListingRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	var storageService storage.Storage
	if cfg.StorageEnabled() {
		storageService = storage.NewSupabaseStorage(cfg.SupabaseStorageURL, cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	} else {
		logger.Warn("Supabase storage not configured, image uploads are disabled")
	}

	var generator services.RecipeGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiRecipeGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AIRequestsPerMinute)
		if err != nil {
			logger.Fatal("Failed to create recipe generator", zap.Error(err))
		}
		defer gemini.Close()
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, photo recipes are disabled")
	}

	impactService := services.NewImpactService(impactRepo, statsRepo, db, impactCatalog)
	fridgeService := services.NewFridgeService(listingRepo, impactService, storageService, cfg.SupabaseListingImagesBucket)
	recipeService := services.NewRecipeService(recipeRepo, generator, storageService, cfg.SupabaseFridgePhotosBucket)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authmiddleware.RegisterMetrics(registry)
	services.RegisterMetrics(registry)

	if cfg.ClerkSecretKey != "" {
		clerk.SetKey(cfg.ClerkSecretKey)
	}
	authMiddleware := authmiddleware.NewAuthMiddleware(cfg.JWTSecret, cfg.ClerkSecretKey != "", cfg.RequireAuth)

	h := handlers.NewHandlers(impactService, fridgeService, recipeService, cfg.RequireAuth)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmiddleware.ZapLogger(logger, "/health"))
	r.Use(authmiddleware.Monitor)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(authmiddleware.SecurityHeaders)
	r.Use(authmiddleware.MaxBodySize(cfg.MaxBodySize, handlers.MaxUploadSize))
	if cfg.Env == "production" {
		r.Use(authmiddleware.StrictTransportSecurity)
	}

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	r.Use(cors.Handler(corsOptions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context(), 2*time.Second); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.MetricsUser == "" && cfg.Env == "production" {
		logger.Warn("METRICS_USER not set, /metrics is unauthenticated")
	}
	r.With(authmiddleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).
		Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(httprate.LimitByIP(services.GeneralRateLimit, 1*time.Minute))
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(services.AIRateLimit, 1*time.Minute))
			r.Post("/upload-image/", h.UploadImage)
		})

		h.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.Bool("require_auth", cfg.RequireAuth))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
