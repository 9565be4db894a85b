package main

import (
	"log"
	"os"
	"time"

	"github.com/courease/courease-backend/internal/database"
	"github.com/courease/courease-backend/internal/handlers"
	"github.com/courease/courease-backend/internal/middleware"
	"github.com/courease/courease-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Payment provider client
	payments := services.NewPaymentClient()

	// Initialize chat hub
	hub := services.NewHub(db)
	go hub.Run()

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve uploaded field images when using local storage
	r.Static("/uploads", "/app/uploads")

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"message":   "Courease API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Public routes
	r.POST("/register", handlers.Register(db))
	r.POST("/register-admin", handlers.RegisterAdmin(db))
	r.POST("/login", handlers.Login(db))
	r.GET("/fields", handlers.GetFields(db))

	// Bookings
	r.POST("/book", handlers.CreateBooking(db))
	r.GET("/bookings", handlers.GetUserBookings(db))

	// Payments; the callback is the provider's webhook and stays unauthenticated
	r.POST("/payment/create", handlers.CreatePayment(db, payments))
	r.POST("/payment/callback", handlers.PaymentCallback(db))
	r.GET("/payment/status/:booking_id", handlers.GetPaymentStatus(db))

	// Chat
	r.GET("/messages/:booking_id", handlers.GetMessages(db))
	r.POST("/messages", handlers.SendMessage(db, hub))

	// Profile
	r.PUT("/user/:id", handlers.UpdateProfile(db))

	// WebSocket connection
	r.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/bookings", handlers.GetAdminBookings(db))
		admin.PATCH("/bookings/:id", handlers.UpdateBookingStatus(db))
		admin.GET("/chats", handlers.GetAdminChats(db))

		admin.POST("/fields", handlers.CreateField(db))
		admin.PUT("/fields/:id", handlers.UpdateField(db))
		admin.POST("/fields/:id/image", handlers.UploadFieldImage(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
