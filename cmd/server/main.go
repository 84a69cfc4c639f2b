package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "planvault-backend/internal/api/http"
	"planvault-backend/internal/cache"
	"planvault-backend/internal/config"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/repository/postgres"
	"planvault-backend/internal/security"
	"planvault-backend/internal/service"
	"planvault-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments use environment variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PlanVault Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Initialize Plan Catalog Cache (optional)
	var planCache *cache.PlanCache
	if cfg.Redis.Host != "" {
		rdb, err := cache.Connect(cfg.GetRedisAddress(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, plan catalog served from database", "error", err)
		} else {
			planCache = cache.NewPlanCache(rdb)
			logger.Info("Redis plan cache connected", "address", cfg.GetRedisAddress())
		}
	}

	// Initialize Storage Service
	var storageService storage.Storage
	var localStorage *storage.LocalStorage
	switch cfg.Storage.Type {
	case "s3":
		s3Storage, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:      cfg.Storage.S3Endpoint,
			Region:        cfg.Storage.S3Region,
			AccessKey:     cfg.Storage.S3AccessKey,
			SecretKey:     cfg.Storage.S3SecretKey,
			Bucket:        cfg.Storage.S3Bucket,
			PublicBaseURL: cfg.Storage.BaseURL,
			UsePathStyle:  cfg.Storage.S3UsePathStyle,
		})
		if err != nil {
			logger.Error("Failed to initialize s3 storage", "error", err)
			log.Fatalf("Failed to initialize s3 storage: %v", err)
		}
		storageService = s3Storage
		logger.Info("Using s3 storage", "bucket", cfg.Storage.S3Bucket)
	default:
		localStorage, err = storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		storageService = localStorage
		logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.AdminEmail,
	)
	referralSvc := service.NewReferralService(store, store.Repos)
	planSvc := service.NewPlanService(store, store.Repos, referralSvc)
	accountSvc := service.NewAccountService(store, store.Repos, planSvc, tokenManager)
	settlementSvc := service.NewSettlementService(store, store.Repos, emailSvc)
	ledgerSvc := service.NewLedgerService(store.Repos)
	catalogSvc := service.NewCatalogService(store.Repos, planCache)
	adminSvc := service.NewAdminService(store, store.Repos)

	// Build the router
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Accounts:    accountSvc,
		Plans:       planSvc,
		Referrals:   referralSvc,
		Settlements: settlementSvc,
		Ledger:      ledgerSvc,
		Catalog:     catalogSvc,
		Admin:       adminSvc,
		Upload:      httpapi.NewUploadHandler(storageService, localStorage, cfg.Storage.MaxFileSizeMB),
		Tokens:      tokenManager,
		AccountRepo: store.Repos.Accounts,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
