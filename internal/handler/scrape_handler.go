package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"cookscrape-backend/internal/models"
	scraper "cookscrape-backend/lib/scrapers/cooking"
)

// Pipeline is the scrape side the trigger endpoint drives; the cooking
// scraper satisfies it.
type Pipeline interface {
	ScrapeRecipes(ctx context.Context, maxPages int) ([]models.Recipe, scraper.Report, error)
	ScrapeNews(ctx context.Context, maxArticles int) ([]models.NewsItem, scraper.Report, error)
}

// ArticleSource pulls news from the article APIs; the timesapi client
// satisfies it.
type ArticleSource interface {
	SearchCookingArticles(ctx context.Context, maxPages int) ([]models.NewsItem, error)
	ArchiveCookingArticles(ctx context.Context, year int, month time.Month) ([]models.NewsItem, error)
	FetchRSSArticles(ctx context.Context, section string) ([]models.NewsItem, error)
}

type NewsSink interface {
	UpsertNews(ctx context.Context, n models.NewsItem) (int64, error)
}

const (
	defaultMaxPages    = 3
	defaultMaxArticles = 15
)

type ScrapeReport struct {
	Attempted  int      `json:"attempted"`
	Stored     int      `json:"stored"`
	Failed     int      `json:"failed"`
	FailedURLs []string `json:"failed_urls,omitempty"`
}

func toScrapeReport(r scraper.Report) ScrapeReport {
	return ScrapeReport{
		Attempted:  r.Attempted,
		Stored:     r.Stored,
		Failed:     r.Failed,
		FailedURLs: r.FailedURLs,
	}
}

type ScrapeStatus struct {
	Running      bool         `json:"running"`
	LastStarted  string       `json:"last_started,omitempty"`
	LastFinished string       `json:"last_finished,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
	Recipes      ScrapeReport `json:"recipes"`
	News         ScrapeReport `json:"news"`
	Articles     ScrapeReport `json:"articles"`
}

type ScrapeHandler struct {
	pipeline Pipeline
	articles ArticleSource
	sink     NewsSink

	mu      sync.Mutex
	running bool
	status  ScrapeStatus
}

func NewScrapeHandler(pipeline Pipeline, articles ArticleSource, sink NewsSink) *ScrapeHandler {
	return &ScrapeHandler{pipeline: pipeline, articles: articles, sink: sink}
}

type triggerRequest struct {
	MaxPages    int `json:"max_pages"`
	MaxArticles int `json:"max_articles"`
}

// TriggerScrape starts a scrape run in the background and returns
// immediately. Only one run may be active at a time; concurrent triggers
// get a 409 and can poll the status endpoint instead.
func (h *ScrapeHandler) TriggerScrape(c *gin.Context) {
	var req triggerRequest
	// an empty body is fine, defaults apply
	_ = c.ShouldBindJSON(&req)
	if req.MaxPages <= 0 {
		req.MaxPages = defaultMaxPages
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = defaultMaxArticles
	}

	if !h.begin() {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "scrape already running"})
		return
	}

	// the run is detached from the request: it either completes or dies
	// with the process
	go h.run(req.MaxPages, req.MaxArticles)

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Scraping started in background"})
}

type articleTriggerRequest struct {
	MaxPages       int   `json:"max_pages"`
	IncludeArchive *bool `json:"include_archive"`
	IncludeRSS     *bool `json:"include_rss"`
}

// TriggerArticleScrape starts a background pull from the article APIs
// (search, archive, rss) instead of the web scraper. It shares the
// single-run lock with TriggerScrape.
func (h *ScrapeHandler) TriggerArticleScrape(c *gin.Context) {
	var req articleTriggerRequest
	_ = c.ShouldBindJSON(&req)
	if req.MaxPages <= 0 {
		req.MaxPages = defaultMaxPages
	}
	// archive and rss are opt-out, absent means included
	includeArchive := req.IncludeArchive == nil || *req.IncludeArchive
	includeRSS := req.IncludeRSS == nil || *req.IncludeRSS

	if !h.begin() {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "scrape already running"})
		return
	}

	go h.runArticles(req.MaxPages, includeArchive, includeRSS)

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Article API scraping started in background"})
}

// begin claims the single-run lock, resetting the status for a new run.
func (h *ScrapeHandler) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.running = true
	h.status = ScrapeStatus{
		Running:     true,
		LastStarted: time.Now().Format(time.RFC3339),
	}
	return true
}

func (h *ScrapeHandler) finish(update func(*ScrapeStatus)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	h.status.Running = false
	h.status.LastFinished = time.Now().Format(time.RFC3339)
	update(&h.status)
}

func (h *ScrapeHandler) run(maxPages, maxArticles int) {
	ctx := context.Background()

	_, recipeReport, recipeErr := h.pipeline.ScrapeRecipes(ctx, maxPages)
	if recipeErr != nil {
		slog.Error("background recipe scrape failed", "err", recipeErr)
	}
	_, newsReport, newsErr := h.pipeline.ScrapeNews(ctx, maxArticles)
	if newsErr != nil {
		slog.Error("background news scrape failed", "err", newsErr)
	}

	h.finish(func(status *ScrapeStatus) {
		status.Recipes = toScrapeReport(recipeReport)
		status.News = toScrapeReport(newsReport)
		if recipeErr != nil {
			status.LastError = recipeErr.Error()
		} else if newsErr != nil {
			status.LastError = newsErr.Error()
		}
	})
}

func (h *ScrapeHandler) runArticles(maxPages int, includeArchive, includeRSS bool) {
	ctx := context.Background()

	var items []models.NewsItem
	var firstErr error
	keep := func(source string, found []models.NewsItem, err error) {
		if err != nil {
			slog.Error("article source failed", "source", source, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		items = append(items, found...)
	}

	found, err := h.articles.SearchCookingArticles(ctx, maxPages)
	keep("search", found, err)
	if includeArchive {
		now := time.Now()
		found, err := h.articles.ArchiveCookingArticles(ctx, now.Year(), now.Month())
		keep("archive", found, err)
	}
	if includeRSS {
		found, err := h.articles.FetchRSSArticles(ctx, "food")
		keep("rss", found, err)
	}

	report := ScrapeReport{}
	for _, item := range items {
		report.Attempted++
		if _, err := h.sink.UpsertNews(ctx, item); err != nil {
			slog.Warn("failed to store api article", "url", item.URL, "err", err)
			report.Failed++
			report.FailedURLs = append(report.FailedURLs, item.URL)
			continue
		}
		report.Stored++
	}

	h.finish(func(status *ScrapeStatus) {
		status.Articles = report
		if firstErr != nil {
			status.LastError = firstErr.Error()
		}
	})
}

func (h *ScrapeHandler) GetStatus(c *gin.Context) {
	h.mu.Lock()
	status := h.status
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}
