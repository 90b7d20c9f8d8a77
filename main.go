// main.go
package main

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"go-meet-stake/controllers"
	"go-meet-stake/events"
	"go-meet-stake/logger"
	"go-meet-stake/middleware"
	"go-meet-stake/services"
	"go-meet-stake/storage/sqlite"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}

	env := getEnv("ENV", "development")
	logger.SetLogLevel(env)
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the SQLite-backed ledger
	dbPath := getEnv("DB_PATH", "./data/meetstake.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		logger.Error.Fatalf("Failed to initialise storage: %v", err)
	}
	defer store.Close()
	logger.Info.Printf("Storage initialised at %s", dbPath)

	// Event side-channel: append-only log, journal, live WebSocket feed
	hub := events.NewHub()
	go hub.Run()
	recorder := events.NewRecorder(store, hub)

	// One lock, one sequential ledger: registry and booking share it
	var ledger sync.Mutex
	registry := services.NewRegistryService(&ledger, store, recorder)
	escrow := services.NewEscrowService(store)
	booking := services.NewBookingService(&ledger, store, registry, escrow, recorder)

	if raw := os.Getenv("GRACE_WINDOW_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			logger.Error.Fatalf("Invalid GRACE_WINDOW_MINUTES: %q", raw)
		}
		booking.GraceWindow = time.Duration(minutes) * time.Minute
	}
	if getEnv("REQUIRE_INVITEE_REGISTRATION", "true") == "false" {
		booking.RequireInviteeRegistration = false
	}

	jwtManager := middleware.NewJWTManager(getEnv("JWT_SECRET", "dev-secret-change-me"), 24*time.Hour)

	// Initialize the router
	router := gin.Default()

	// Initialize session store
	sessionStore := cookie.NewStore([]byte(getEnv("SESSION_SECRET", "dev-session-secret")))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   env == "production",
	})
	router.Use(sessions.Sessions("meetstake", sessionStore))

	authController := controllers.NewAuthController(store, jwtManager)
	walletController := controllers.NewWalletController(store)
	bookingController := controllers.NewBookingController(booking, registry)

	// Public routes
	router.GET("/health", controllers.Health)
	router.GET("/heartbeat", HeartbeatHandler)
	router.POST("/signup", authController.Signup)
	router.POST("/login", authController.Login)
	router.GET("/logout", authController.Logout)
	router.GET("/events", events.ServeWS(hub))

	// Read-only ledger queries
	router.GET("/api/users/:address/registered", bookingController.IsRegistered)
	router.GET("/api/users/:address/meetings", bookingController.GetUserMeetings)
	router.GET("/api/meetings/:id", bookingController.GetMeeting)

	// Protected routes
	protected := router.Group("/api", middleware.AuthRequired(jwtManager))
	{
		protected.POST("/register", bookingController.Register)
		protected.GET("/wallet", walletController.GetWallet)
		protected.POST("/wallet/deposit", walletController.Deposit)
		protected.POST("/meetings", bookingController.BookMeeting)
		protected.POST("/meetings/:id/checkin", bookingController.CheckIn)
		protected.POST("/meetings/:id/resolve", bookingController.Resolve)
		protected.GET("/meetings/:id/qrcode", bookingController.GetMeetingQRCode)
	}

	go CleanupRoutine()

	// Start the server
	port := getEnv("PORT", "8080")
	logger.Info.Printf("Server starting on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logger.Error.Fatalf("Failed to run server: %v", err)
	}
}
