package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cookscrape-backend/internal/models"
	scraper "cookscrape-backend/lib/scrapers/cooking"
	"cookscrape-backend/lib/scrapers/timesapi"
	"cookscrape-backend/lib/serviceutil"
	"cookscrape-backend/lib/sqliteutil"
	"cookscrape-backend/services/cooking"
	cookingdb "cookscrape-backend/services/cooking/db"
)

var (
	scrapeDb       *string
	scrapeBaseURL  *string
	scrapePages    *int
	scrapeArticles *int
	scrapeDelay    *int
	scrapeUseApi   *bool
	scrapeArchive  *bool
	scrapeRss      *bool
)

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "cooking_data.db", "The database to write scrape results to.")
	scrapeBaseURL = scrapeCmd.Flags().String("base-url", "https://cooking.nytimes.com", "Base url of the cooking site.")
	scrapePages = scrapeCmd.Flags().Int("pages", 3, "Number of recipe listing pages to walk.")
	scrapeArticles = scrapeCmd.Flags().Int("articles", 15, "Maximum number of news articles to scrape.")
	scrapeDelay = scrapeCmd.Flags().Int("delay", 2, "Politeness delay between requests, in seconds.")
	scrapeUseApi = scrapeCmd.Flags().Bool("use-api", false, "Also pull articles from the article APIs (needs TIMES_API_KEY).")
	scrapeArchive = scrapeCmd.Flags().Bool("archive", true, "With --use-api, include the current month's archive.")
	scrapeRss = scrapeCmd.Flags().Bool("rss", true, "With --use-api, include the food RSS feed.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--db <path/to/output.db>]",
	Short: "Runs one full scrape cycle and writes recipes and news to a database.",
	Run: func(cmd *cobra.Command, args []string) {
		godotenv.Load()
		ctx := cmd.Context()

		out, err := sqliteutil.OpenDB(cookingdb.Schema, *scrapeDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer out.Close()
		store := cooking.NewService(out)

		client, err := scraper.NewClient(scraper.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to create fetch client", err)
		}
		s, err := scraper.NewScraper(client, store, scraper.Options{
			BaseURL: *scrapeBaseURL,
			Delay:   time.Duration(*scrapeDelay) * time.Second,
		})
		if err != nil {
			serviceutil.Fatal("failed to create scraper", err)
		}

		t1 := time.Now()

		_, recipeReport, recipeErr := s.ScrapeRecipes(ctx, *scrapePages)
		if recipeErr != nil {
			slog.Error("recipe scrape failed", "err", recipeErr)
		} else {
			slog.Info("recipe scrape done",
				"attempted", recipeReport.Attempted,
				"stored", recipeReport.Stored,
				"failed", recipeReport.Failed)
		}

		_, newsReport, newsErr := s.ScrapeNews(ctx, *scrapeArticles)
		if newsErr != nil {
			slog.Error("news scrape failed", "err", newsErr)
		} else {
			slog.Info("news scrape done",
				"attempted", newsReport.Attempted,
				"stored", newsReport.Stored,
				"failed", newsReport.Failed)
		}

		if *scrapeUseApi {
			scrapeFromApi(cmd, store)
		}

		// individual pages may fail, but if neither source produced a
		// single listing the run as a whole failed
		if recipeErr != nil && newsErr != nil {
			serviceutil.Fatal("source unreachable, nothing scraped", recipeErr)
		}

		slog.Info("scraping time", "seconds", time.Since(t1).Seconds())
	},
}

func scrapeFromApi(cmd *cobra.Command, store cooking.Service) {
	ctx := cmd.Context()

	api := timesapi.NewClient(timesapi.ClientOptions{
		APIKey: os.Getenv("TIMES_API_KEY"),
	})

	var items []models.NewsItem
	found, err := api.SearchCookingArticles(ctx, 2)
	if err != nil {
		slog.Error("article api search failed", "err", err)
	}
	items = append(items, found...)

	if *scrapeArchive {
		now := time.Now()
		found, err := api.ArchiveCookingArticles(ctx, now.Year(), now.Month())
		if err != nil {
			slog.Error("article api archive failed", "err", err)
		}
		items = append(items, found...)
	}
	if *scrapeRss {
		found, err := api.FetchRSSArticles(ctx, "food")
		if err != nil {
			slog.Error("rss feed failed", "err", err)
		}
		items = append(items, found...)
	}

	stored := 0
	for _, item := range items {
		if _, err := store.UpsertNews(ctx, item); err != nil {
			slog.Warn("failed to store api article", "url", item.URL, "err", err)
			continue
		}
		stored++
	}
	slog.Info("article api done", "found", len(items), "stored", stored)
}
