package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"estate-cms/internal/config"
	"estate-cms/internal/gateway"
	"estate-cms/internal/handlers"
	"estate-cms/internal/ratelimit"
	"estate-cms/internal/scheduler"
	"estate-cms/internal/search"
	"estate-cms/internal/uploader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "config/estate.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	rows, closeRows, err := openDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeRows()

	// Object store (hosted storage + auth)
	store := gateway.NewObjectStore(
		getEnvOrConfig(appConfig.Storage.BaseURL, "STORAGE_URL", "http://localhost:8000"),
		getEnvOrConfig(appConfig.Storage.ServiceKey, "STORAGE_SERVICE_KEY", ""),
	)

	// Meilisearch autocomplete index
	meilisearchHost := getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
	meilisearchKey := getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "masterKey123")
	suggest := search.NewSuggestClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)
	if err := suggest.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	limiter := ratelimit.NewUploadLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Upload limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	sched := scheduler.NewScheduler(rows, suggest, appConfig)
	if err := sched.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	uploads := uploader.New(rows, store, uploader.Config{
		Bucket:          appConfig.Storage.Bucket,
		MaxGalleryFiles: appConfig.Upload.MaxGalleryFiles,
		WindowSize:      appConfig.Upload.WindowSize,
		WindowPause:     appConfig.Upload.GetWindowPause(),
		HeroTimeout:     appConfig.Upload.GetHeroTimeout(),
		GalleryTimeout:  appConfig.Upload.GetGalleryTimeout(),
		LinkTimeout:     appConfig.Upload.GetLinkTimeout(),
	})

	engine := search.NewEngine(rows)
	public := handlers.NewPublicHandler(rows, store, engine, suggest, appConfig.Storage.Bucket)
	admin := handlers.NewAdminHandler(rows, store, uploads, suggest, sched, limiter)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthCheck)

	// Public site
	r.GET("/api/properties", public.SearchProperties)
	r.GET("/api/properties/:slug", public.GetProperty)
	r.GET("/api/search/suggest", public.Suggest)
	r.GET("/api/categories", public.GetCategories)

	// Admin API (session-gated; uploads also rate-limited)
	adminGroup := r.Group("/api/admin", admin.RequireSession())
	{
		adminGroup.POST("/properties", admin.RateLimit(), admin.CreateProperty)
		adminGroup.PUT("/properties/:id", admin.RateLimit(), admin.UpdateProperty)
		adminGroup.DELETE("/properties/:id", admin.DeleteProperty)
		adminGroup.POST("/categories", admin.RateLimit(), admin.CreateCategory)
		adminGroup.POST("/blog", admin.RateLimit(), admin.CreateBlogPost)
		adminGroup.POST("/reviews", admin.RateLimit(), admin.CreateReview)

		adminGroup.POST("/search/reindex", admin.TriggerReindex)
		adminGroup.GET("/stats", admin.GetStats)
		adminGroup.GET("/ratelimit/stats", admin.GetRateLimitStats)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openDatabase picks the backend from configuration: MySQL via GORM by
// default, PostgreSQL via database/sql when configured.
func openDatabase(appConfig *config.Config) (gateway.Rows, func(), error) {
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "postgres" {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres
		pg, err := gateway.NewPostgresRows(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "estate_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "estate_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "estate_db"),
			getEnvOrConfig(pgCfg.SSLMode, "DB_SSLMODE", "disable"),
		)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.InitSchema(); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return pg, func() { pg.Close() }, nil
	}

	log.Println("Using MySQL with GORM")
	mysqlCfg := appConfig.Database.MySQL
	db, err := gateway.NewGormRows(
		getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portString(mysqlCfg.Port), "DB_PORT", "3306"),
		getEnvOrConfig(mysqlCfg.User, "DB_USER", "estate_user"),
		getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "estate_pass"),
		getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "estate_db"),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, func() { db.Close() }, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func portString(port int) string {
	if port > 0 {
		return fmt.Sprintf("%d", port)
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to
// environment variable, then default.
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
