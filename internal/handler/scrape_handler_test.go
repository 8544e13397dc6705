package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cookscrape-backend/internal/models"
	scraper "cookscrape-backend/lib/scrapers/cooking"
)

type fakePipeline struct {
	// when non-nil, ScrapeRecipes blocks until this channel closes
	block chan struct{}

	gotMaxPages    int
	gotMaxArticles int
}

func (f *fakePipeline) ScrapeRecipes(_ context.Context, maxPages int) ([]models.Recipe, scraper.Report, error) {
	f.gotMaxPages = maxPages
	if f.block != nil {
		<-f.block
	}
	return nil, scraper.Report{Attempted: 2, Stored: 2}, nil
}

func (f *fakePipeline) ScrapeNews(_ context.Context, maxArticles int) ([]models.NewsItem, scraper.Report, error) {
	f.gotMaxArticles = maxArticles
	return nil, scraper.Report{Attempted: 1, Stored: 1}, nil
}

type fakeArticleSource struct {
	searchCalled  bool
	archiveCalled bool
	rssCalled     bool
}

func (f *fakeArticleSource) SearchCookingArticles(_ context.Context, maxPages int) ([]models.NewsItem, error) {
	f.searchCalled = true
	return []models.NewsItem{
		{Title: "From search", URL: "https://www.example.com/search-1"},
	}, nil
}

func (f *fakeArticleSource) ArchiveCookingArticles(_ context.Context, year int, month time.Month) ([]models.NewsItem, error) {
	f.archiveCalled = true
	return []models.NewsItem{
		{Title: "From archive", URL: "https://www.example.com/archive-1"},
	}, nil
}

func (f *fakeArticleSource) FetchRSSArticles(_ context.Context, section string) ([]models.NewsItem, error) {
	f.rssCalled = true
	return []models.NewsItem{
		{Title: "From rss", URL: "https://www.example.com/rss-1"},
	}, nil
}

type fakeNewsSink struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeNewsSink) UpsertNews(_ context.Context, n models.NewsItem) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, n.URL)
	return int64(len(f.urls)), nil
}

func newScrapeRouter(pipeline Pipeline, articles ArticleSource, sink NewsSink) (*gin.Engine, *ScrapeHandler) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewScrapeHandler(pipeline, articles, sink)
	r.POST("/api/scrape", h.TriggerScrape)
	r.POST("/api/scrape-articles", h.TriggerArticleScrape)
	r.GET("/api/scrape/status", h.GetStatus)
	return r, h
}

func waitForIdle(t *testing.T, h *ScrapeHandler) {
	t.Helper()
	deadline := time.Now().Add(time.Second * 5)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		running := h.running
		h.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
	t.Fatal("scrape never finished")
}

func TestTriggerScrape(t *testing.T) {
	pipeline := &fakePipeline{}
	r, h := newScrapeRouter(pipeline, &fakeArticleSource{}, &fakeNewsSink{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/scrape", strings.NewReader(`{"max_pages": 2, "max_articles": 5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	waitForIdle(t, h)
	require.Equal(t, 2, pipeline.gotMaxPages)
	require.Equal(t, 5, pipeline.gotMaxArticles)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/scrape/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool         `json:"success"`
		Status  ScrapeStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.False(t, res.Status.Running)
	require.Equal(t, 2, res.Status.Recipes.Stored)
	require.Equal(t, 1, res.Status.News.Stored)
	require.Empty(t, res.Status.LastError)

	// report keys are snake_case like the rest of the api
	body := w.Body.String()
	require.Contains(t, body, `"attempted"`)
	require.Contains(t, body, `"stored"`)
	require.NotContains(t, body, `"Attempted"`)
	require.NotContains(t, body, `"FailedURLs"`)
}

func TestTriggerScrapeDefaults(t *testing.T) {
	pipeline := &fakePipeline{}
	r, h := newScrapeRouter(pipeline, &fakeArticleSource{}, &fakeNewsSink{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	waitForIdle(t, h)
	require.Equal(t, defaultMaxPages, pipeline.gotMaxPages)
	require.Equal(t, defaultMaxArticles, pipeline.gotMaxArticles)
}

func TestTriggerScrapeAlreadyRunning(t *testing.T) {
	pipeline := &fakePipeline{block: make(chan struct{})}
	r, h := newScrapeRouter(pipeline, &fakeArticleSource{}, &fakeNewsSink{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	// the first run is still blocked inside the pipeline
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape", nil))
	require.Equal(t, http.StatusConflict, w.Code)

	// the article trigger shares the same lock
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape-articles", nil))
	require.Equal(t, http.StatusConflict, w.Code)

	close(pipeline.block)
	waitForIdle(t, h)

	// once idle a new trigger is accepted again
	pipeline.block = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	waitForIdle(t, h)
}

func TestTriggerArticleScrape(t *testing.T) {
	articles := &fakeArticleSource{}
	sink := &fakeNewsSink{}
	r, h := newScrapeRouter(&fakePipeline{}, articles, sink)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/scrape-articles", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	waitForIdle(t, h)

	// archive and rss default to included
	require.True(t, articles.searchCalled)
	require.True(t, articles.archiveCalled)
	require.True(t, articles.rssCalled)
	require.ElementsMatch(t, []string{
		"https://www.example.com/search-1",
		"https://www.example.com/archive-1",
		"https://www.example.com/rss-1",
	}, sink.urls)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/scrape/status", nil))

	var res struct {
		Status ScrapeStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 3, res.Status.Articles.Attempted)
	require.Equal(t, 3, res.Status.Articles.Stored)
	require.Empty(t, res.Status.LastError)
}

func TestTriggerArticleScrapeOptOut(t *testing.T) {
	articles := &fakeArticleSource{}
	sink := &fakeNewsSink{}
	r, h := newScrapeRouter(&fakePipeline{}, articles, sink)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/scrape-articles",
		strings.NewReader(`{"include_archive": false, "include_rss": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	waitForIdle(t, h)

	require.True(t, articles.searchCalled)
	require.False(t, articles.archiveCalled)
	require.False(t, articles.rssCalled)
	require.Equal(t, []string{"https://www.example.com/search-1"}, sink.urls)
}
