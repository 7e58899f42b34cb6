package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"authd/internal/handlers"
	"authd/internal/middleware"
	"authd/internal/repositories"
	"authd/internal/services"

	"authd/internal/jobs/background"
	"authd/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	if err := database.Migrate(ctx, databaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Session TTL in hours, default 24
	sessionTTL := services.DefaultSessionTTL
	if ttlStr := os.Getenv("SESSION_TTL_HOURS"); ttlStr != "" {
		if hours, err := strconv.Atoi(ttlStr); err == nil && hours > 0 {
			sessionTTL = time.Duration(hours) * time.Hour
		}
	}

	bcryptCost := 0 // 0 lets the hasher pick the library default
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		if cost, err := strconv.Atoi(costStr); err == nil {
			bcryptCost = cost
		}
	}

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	sessionRepo := repositories.NewSessionRepo(pool)

	// Create services
	hasher := services.NewBcryptHasher(bcryptCost)
	sessionSvc := services.NewSessionService(sessionRepo, userRepo, sessionTTL)
	accountSvc := services.NewAccountService(userRepo, sessionSvc, hasher)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(accountSvc)
	userHandlers := handlers.NewUserHandlers(accountSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, version)

	// Background session sweep
	scheduler, err := background.NewJobScheduler(sessionSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     []string{corsOrigin},
		AllowCredentials: corsOrigin != "*",
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (token, where needed, is the credential)
	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/logout", authHandlers.Logout)
	auth.GET("/session", authHandlers.ValidateSession)

	// Protected routes (require a valid session)
	protected := v1.Group("")
	protected.Use(middleware.SessionAuth(sessionSvc))

	protected.GET("/me", authHandlers.Me)
	protected.PUT("/users/:id", userHandlers.UpdateProfile)
	protected.POST("/auth/password", userHandlers.ChangePassword)

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	log.Printf("authd v%s starting on %s", version, listenAddr)

	e.Logger.Fatal(e.Start(listenAddr))
}
