package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dinehub/restaurant-portal/restaurant-portal-backend/internal/auth"
	"dinehub/restaurant-portal/restaurant-portal-backend/internal/config"
	"dinehub/restaurant-portal/restaurant-portal-backend/internal/notifications"
	wsmanager "dinehub/restaurant-portal/restaurant-portal-backend/internal/notifications/websocket"
	"dinehub/restaurant-portal/restaurant-portal-backend/internal/onboarding"
	"dinehub/restaurant-portal/restaurant-portal-backend/internal/staff"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Local overrides for development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// The staff module rides on gorm over the same connection pool
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to open gorm connection", zap.Error(err))
	}

	// Staff invitations
	staffRepo, err := staff.NewGormRepository(gormDB)
	if err != nil {
		logger.Fatal("Failed to prepare staff repository", zap.Error(err))
	}
	staffService := staff.NewService(staffRepo, logger)

	// Progress push
	progressHub := wsmanager.NewManager(logger)

	// Onboarding engine
	whatsappChannel := notifications.NewWhatsAppChannel(cfg.WhatsApp.BaseURL, logger)
	registry := onboarding.NewRegistry(onboarding.HandlerDeps{WhatsApp: whatsappChannel})
	onboardingRepo := onboarding.NewPostgresRepository(db)
	onboardingService := onboarding.NewService(onboardingRepo, registry, staffService, progressHub, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(cfg.Auth.JWTSecret))
	{
		onboardingHandler.RegisterRoutes(api)

		api.GET("/ws/progress", func(c *gin.Context) {
			userID, ok := c.MustGet("user_id").(uuid.UUID)
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
				return
			}
			if err := progressHub.HandleConnection(c.Writer, c.Request, userID); err != nil {
				logger.Error("Failed to upgrade progress connection", zap.Error(err))
			}
		})
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
