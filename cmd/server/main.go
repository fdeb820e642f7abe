package main

import (
	"log"
	"strconv"

	"lexhub/config"
	"lexhub/db"
	"lexhub/internal/socratic"
	"lexhub/routes"
	"lexhub/services"
	"lexhub/utils"
	"lexhub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	// Seed the demo case file and load the catalog the engine scores against
	utils.SeedCaseContent()
	content, err := db.LoadCaseContent()
	if err != nil {
		log.Fatalf("Failed to load case content: %v", err)
	}

	// Redis backs the event stream; without it events broadcast in-process
	if cfg.Redis.Addr != "" {
		if err := socratic.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis unavailable, events broadcast locally: %v", err)
		}
	}

	// The Gemini rule cross-check is optional and fail-open
	var checker services.RuleChecker
	if cfg.Gemini.ApiKey != "" {
		if err := services.InitGemini(cfg.Gemini.ApiKey); err != nil {
			log.Printf("Gemini unavailable, rule cross-check disabled: %v", err)
		} else {
			checker = services.NewGeminiRuleChecker(cfg.Gemini.CheckTimeoutSec)
		}
	}

	tuning := services.Tuning{
		HistoryWindow:       cfg.Engine.HistoryWindow,
		EscalateStreak:      cfg.Engine.EscalateStreak,
		EscalateThreshold:   cfg.Engine.EscalateThreshold,
		DeescalateThreshold: cfg.Engine.DeescalateThreshold,
	}

	hub := websocket.NewHub()
	sessions := services.NewSessionService(content, checker, tuning)
	sessions.SetEventCallback(hub.Publish)
	sessions.SetArchiveCallback(db.ArchiveSession)

	routes.Sessions = sessions
	routes.Catalog = content

	router := setupRouter(hub)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(hub *websocket.Hub) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Configure CORS for the frontend (e.g., localhost:5173 for Vite)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	api := router.Group("/")
	{
		routes.SetupSocraticRoutes(api)

		// Live event stream
		api.GET("/socratic/ws", hub.StreamHandler)
	}

	return router
}
