package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cookscrape-backend/internal/handler"
	"cookscrape-backend/lib/configutil"
	scraper "cookscrape-backend/lib/scrapers/cooking"
	"cookscrape-backend/lib/scrapers/timesapi"
	"cookscrape-backend/lib/serviceutil"
	"cookscrape-backend/lib/sqliteutil"
	"cookscrape-backend/lib/telemetry"
	"cookscrape-backend/services/cooking"
	cookingdb "cookscrape-backend/services/cooking/db"
)

type ScrapeConfig struct {
	BaseURL           string  `json:"base_url"`
	DelaySeconds      int     `json:"delay_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Config struct {
	Port        int          `json:"port"`
	Database    string       `json:"database"`
	CorsOrigins []string     `json:"cors_origins"`
	Scrape      ScrapeConfig `json:"scrape"`
}

func defaultConfig() Config {
	return Config{
		Port:        8080,
		Database:    "cooking_data.db",
		CorsOrigins: []string{"http://localhost:3000"},
		Scrape: ScrapeConfig{
			BaseURL:      "https://cooking.nytimes.com",
			DelaySeconds: 2,
		},
	}
}

func main() {
	godotenv.Load()
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		config = defaultConfig()
	} else if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = defaultConfig().Port
	}
	if config.Database == "" {
		config.Database = defaultConfig().Database
	}
	if config.Scrape.BaseURL == "" {
		config.Scrape.BaseURL = defaultConfig().Scrape.BaseURL
	}

	t, err := telemetry.SetupFromEnv(ctx, "cookscrape-server")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())

	database, err := sqliteutil.OpenDB(cookingdb.Schema, config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer database.Close()

	store := cooking.NewService(database)

	fetcher, err := scraper.NewClient(scraper.ClientOptions{
		RequestsPerSecond: config.Scrape.RequestsPerSecond,
	})
	if err != nil {
		serviceutil.Fatal("failed to create fetch client", err)
	}
	pipeline, err := scraper.NewScraper(fetcher, store, scraper.Options{
		BaseURL: config.Scrape.BaseURL,
		Delay:   time.Duration(config.Scrape.DelaySeconds) * time.Second,
	})
	if err != nil {
		serviceutil.Fatal("failed to create scraper", err)
	}

	engine := gin.Default()
	engine.Use(cors.New(cors.Config{
		AllowOrigins: config.CorsOrigins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	articles := timesapi.NewClient(timesapi.ClientOptions{
		APIKey: os.Getenv("TIMES_API_KEY"),
	})
	handler.RegisterRoutes(
		engine,
		handler.NewContentHandler(store),
		handler.NewScrapeHandler(pipeline, articles, store),
	)

	go serviceutil.StartHttpServer(config.Port, engine)

	<-ctx.Done()
}
