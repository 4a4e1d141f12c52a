package main

import (
	"log"
	"os"
	"time"

	"aluminet/auth"
	"aluminet/db"
	"aluminet/hub"
	"aluminet/main/routes"
	"aluminet/messages"
	"aluminet/notifications"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
}

// Initialize the HTTP server
func main() {
	// Load .env
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	// Env Vars
	port := os.Getenv("PORT")
	dbName := os.Getenv("DB_FILE")
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Init DB
	database, err := db.InitSQLite(dbName)
	if err != nil {
		log.Fatal("Error opening database:", err)
	}
	defer db.CloseDB(database)

	if err := auth.EnsureSchema(database); err != nil {
		log.Fatal("Error creating users schema:", err)
	}
	if err := messages.EnsureSchema(database); err != nil {
		log.Fatal("Error creating messages schema:", err)
	}
	if err := notifications.EnsureSchema(database); err != nil {
		log.Fatal("Error creating notifications schema:", err)
	}

	// Setup Gin
	r := gin.Default()

	// Rate Limit
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: 100, // This makes it so each ip can only make 100 requests per second
	})
	mw := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimitErrorHandler,
		KeyFunc:      keyFunc,
	})
	r.Use(mw)

	// CORS for the REST surface
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Realtime hub
	messageStore := &messages.Store{DB: database}
	notificationStore := &notifications.Store{DB: database}

	h := hub.New(messageStore, auth.IdentityFromToken)
	h.SetAllowedOrigins(hub.ParseAllowedOriginsFromEnv(os.Getenv("ALLOWED_ORIGINS")))

	// Routes
	routes.SetupAPIRoutes(
		r,
		&auth.Handlers{DB: database},
		&messages.Handlers{Store: messageStore},
		&notifications.Handlers{Store: notificationStore, Hub: h},
	)
	routes.SetupWebSocketRoutes(r, h)

	// Start the server
	if err := r.Run(port); err != nil {
		log.Fatal(err)
	}
}
