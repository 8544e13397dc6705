package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/services/cooking"
)

type fakeStore struct {
	recipes []models.Recipe
	recipe  *models.Recipe
	news    []models.NewsItem
	item    *models.NewsItem
	stats   cooking.Stats
	err     error

	lastRecipesReq cooking.ListRecipesRequest
}

func (f *fakeStore) ListRecipes(_ context.Context, req cooking.ListRecipesRequest) ([]models.Recipe, error) {
	f.lastRecipesReq = req
	return f.recipes, f.err
}

func (f *fakeStore) GetRecipe(_ context.Context, id int64) (*models.Recipe, error) {
	return f.recipe, f.err
}

func (f *fakeStore) ListNews(_ context.Context, req cooking.ListNewsRequest) ([]models.NewsItem, error) {
	return f.news, f.err
}

func (f *fakeStore) GetNewsItem(_ context.Context, id int64) (*models.NewsItem, error) {
	return f.item, f.err
}

func (f *fakeStore) Stats(_ context.Context) (cooking.Stats, error) {
	return f.stats, f.err
}

func newTestRouter(store ContentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewContentHandler(store)
	r.GET("/api/recipes", h.GetRecipes)
	r.GET("/api/recipes/:id", h.GetRecipe)
	r.GET("/api/news", h.GetNews)
	r.GET("/api/news/:id", h.GetNewsItem)
	r.GET("/api/stats", h.GetStats)
	return r
}

func TestGetRecipes(t *testing.T) {
	store := &fakeStore{
		recipes: []models.Recipe{{
			ID:          1,
			Title:       "Pasta Primavera",
			URL:         "https://c.example.com/recipes/1",
			Ingredients: []string{"pasta"},
			Difficulty:  models.DifficultyEasy,
			ScrapedAt:   time.Now(),
		}},
	}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/recipes?search=pasta&cuisine=Italian&difficulty=Easy&limit=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res RecipeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, 1, res.Count)
	require.Equal(t, "Pasta Primavera", res.Recipes[0].Title)

	// query params become store filters
	require.Equal(t, "pasta", store.lastRecipesReq.Search)
	require.Equal(t, "Italian", store.lastRecipesReq.Cuisine)
	require.Equal(t, "Easy", store.lastRecipesReq.Difficulty)
	require.EqualValues(t, 10, store.lastRecipesReq.Limit)
}

func TestGetRecipesStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/recipes", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRecipeNotFound(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/recipes/42", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecipeBadId(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/recipes/notanumber", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNewsItem(t *testing.T) {
	store := &fakeStore{item: &models.NewsItem{
		ID:       7,
		Title:    "Knife skills",
		URL:      "https://c.example.com/guides/7",
		Category: "Guides",
	}}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/news/7", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool         `json:"success"`
		News    NewsResponse `json:"news"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, "Knife skills", res.News.Title)
}

func TestGetStats(t *testing.T) {
	store := &fakeStore{stats: cooking.Stats{
		TotalRecipes: 12,
		TotalNews:    3,
	}}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var res StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.EqualValues(t, 12, res.Stats.TotalRecipes)
	require.EqualValues(t, 3, res.Stats.TotalNews)
	require.Equal(t, "", res.Stats.LatestRecipeScrape)
}
