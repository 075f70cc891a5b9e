package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/milesync/milesync-backend/internal/clients/redis"
	"github.com/milesync/milesync-backend/internal/db"
	"github.com/milesync/milesync-backend/internal/gapdetect"
	"github.com/milesync/milesync-backend/internal/handlers"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/server"
	"github.com/milesync/milesync-backend/internal/services"
	"github.com/milesync/milesync-backend/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	appLog, err := logger.New(utils.GetEnv("LOG_MODE", "dev", nil))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "", appLog)
	if jwtSecretKey == "" {
		appLog.Fatal("JWT_SECRET_KEY is required")
	}
	accessTTL := time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, appLog)) * time.Second
	refreshTTL := time.Duration(utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, appLog)) * time.Second

	postgresService, err := db.NewPostgresService(appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize postgres", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		appLog.Fatal("Failed to migrate postgres tables", "error", err)
	}
	gormDB := postgresService.DB()

	_, locker, err := redis.NewClient(appLog)
	if err != nil {
		appLog.Warn("Redis unavailable, detection runs unlocked", "error", err)
		locker = nil
	}

	thresholds := gapdetect.Thresholds{
		MaxDailyMiles:    utils.GetEnvAsInt("MAX_DAILY_MILES", 500, appLog),
		MinGapMiles:      utils.GetEnvAsInt("MIN_GAP_MILES", 10, appLog),
		MaxGapDays:       utils.GetEnvAsInt("MAX_GAP_DAYS", 30, appLog),
		OdometerRollover: utils.GetEnvAsInt("ODOMETER_ROLLOVER", 999999, appLog),
	}

	userRepo := repos.NewUserRepo(gormDB, appLog)
	userTokenRepo := repos.NewUserTokenRepo(gormDB, appLog)
	tripRepo := repos.NewTripRepo(gormDB, appLog)
	gapRepo := repos.NewMileageGapRepo(gormDB, appLog)
	uploadRepo := repos.NewUploadedFileRepo(gormDB, appLog)

	authService := services.NewAuthService(gormDB, appLog, userRepo, userTokenRepo, jwtSecretKey, accessTTL, refreshTTL)
	userService := services.NewUserService(gormDB, appLog, userRepo)
	gapService := services.NewGapService(gormDB, appLog, tripRepo, gapRepo, locker, thresholds)
	tripService := services.NewTripService(gormDB, appLog, tripRepo, gapRepo, gapService)
	pdfService := services.NewPDFService(gormDB, appLog, tripRepo, uploadRepo, gapService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	tripHandler := handlers.NewTripHandler(tripService)
	gapHandler := handlers.NewGapHandler(gapService)
	uploadHandler := handlers.NewUploadHandler(pdfService)

	router := server.NewRouter(appLog, authService, authHandler, userHandler, tripHandler, gapHandler, uploadHandler)

	port := utils.GetEnv("PORT", "8080", appLog)
	appLog.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		appLog.Fatal("Server exited", "error", err)
	}
}
