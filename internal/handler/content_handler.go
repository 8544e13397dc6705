// Package handler is the web API: thin gin handlers over the content
// store, plus the background scrape trigger.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/services/cooking"
)

// ContentStore is the read surface the handlers need; the cooking
// service satisfies it.
type ContentStore interface {
	ListRecipes(ctx context.Context, req cooking.ListRecipesRequest) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	ListNews(ctx context.Context, req cooking.ListNewsRequest) ([]models.NewsItem, error)
	GetNewsItem(ctx context.Context, id int64) (*models.NewsItem, error)
	Stats(ctx context.Context) (cooking.Stats, error)
}

type ContentHandler struct {
	store ContentStore
}

func NewContentHandler(store ContentStore) *ContentHandler {
	return &ContentHandler{store: store}
}

func queryInt(c *gin.Context, name string, fallback int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func (h *ContentHandler) GetRecipes(c *gin.Context) {
	recipes, err := h.store.ListRecipes(c.Request.Context(), cooking.ListRecipesRequest{
		Search:     c.Query("search"),
		Cuisine:    c.Query("cuisine"),
		Difficulty: c.Query("difficulty"),
		Limit:      queryInt(c, "limit", 50),
		Offset:     queryInt(c, "offset", 0),
	})
	if err != nil {
		slog.Error("error listing recipes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, toRecipeResponse(r))
	}
	c.JSON(http.StatusOK, RecipeListResponse{Success: true, Recipes: out, Count: len(out)})
}

func (h *ContentHandler) GetRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return
	}

	recipe, err := h.store.GetRecipe(c.Request.Context(), id)
	if err != nil {
		slog.Error("error fetching recipe", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": toRecipeResponse(*recipe)})
}

func (h *ContentHandler) GetNews(c *gin.Context) {
	items, err := h.store.ListNews(c.Request.Context(), cooking.ListNewsRequest{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	})
	if err != nil {
		slog.Error("error listing news", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	out := make([]NewsResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toNewsResponse(n))
	}
	c.JSON(http.StatusOK, NewsListResponse{Success: true, News: out, Count: len(out)})
}

func (h *ContentHandler) GetNewsItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return
	}

	item, err := h.store.GetNewsItem(c.Request.Context(), id)
	if err != nil {
		slog.Error("error fetching news item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "News article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "news": toNewsResponse(*item)})
}

func (h *ContentHandler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		slog.Error("error fetching stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}
