package handler

import (
	"time"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/services/cooking"
	"cookscrape-backend/services/cooking/db"
)

type RecipeResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	Ingredients   []string `json:"ingredients"`
	Instructions  string   `json:"instructions"`
	CookingTime   string   `json:"cooking_time"`
	Difficulty    string   `json:"difficulty"`
	Cuisine       string   `json:"cuisine"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"image_url"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"published_date"`
	ScrapedDate   string   `json:"scraped_date"`
}

func toRecipeResponse(r models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:            r.ID,
		Title:         r.Title,
		URL:           r.URL,
		Description:   r.Description,
		Ingredients:   r.Ingredients,
		Instructions:  r.Instructions,
		CookingTime:   r.CookingTime,
		Difficulty:    r.Difficulty,
		Cuisine:       r.Cuisine,
		Tags:          r.Tags,
		ImageURL:      r.ImageURL,
		Author:        r.Author,
		PublishedDate: r.PublishedDate,
		ScrapedDate:   formatTime(r.ScrapedAt),
	}
}

type NewsResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	Author        string `json:"author"`
	PublishedDate string `json:"published_date"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	ScrapedDate   string `json:"scraped_date"`
}

func toNewsResponse(n models.NewsItem) NewsResponse {
	return NewsResponse{
		ID:            n.ID,
		Title:         n.Title,
		URL:           n.URL,
		Summary:       n.Summary,
		Content:       n.Content,
		Author:        n.Author,
		PublishedDate: n.PublishedDate,
		Category:      n.Category,
		ImageURL:      n.ImageURL,
		ScrapedDate:   formatTime(n.ScrapedAt),
	}
}

type RecipeListResponse struct {
	Success bool             `json:"success"`
	Recipes []RecipeResponse `json:"recipes"`
	Count   int              `json:"count"`
}

type NewsListResponse struct {
	Success bool           `json:"success"`
	News    []NewsResponse `json:"news"`
	Count   int            `json:"count"`
}

type FacetResponse struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		TotalRecipes       int64           `json:"total_recipes"`
		TotalNews          int64           `json:"total_news"`
		LatestRecipeScrape string          `json:"latest_recipe_scrape"`
		LatestNewsScrape   string          `json:"latest_news_scrape"`
		Cuisines           []FacetResponse `json:"cuisines"`
		Categories         []FacetResponse `json:"categories"`
	} `json:"stats"`
}

func toStatsResponse(stats cooking.Stats) StatsResponse {
	var res StatsResponse
	res.Success = true
	res.Stats.TotalRecipes = stats.TotalRecipes
	res.Stats.TotalNews = stats.TotalNews
	res.Stats.LatestRecipeScrape = formatTime(stats.LatestRecipeScrape)
	res.Stats.LatestNewsScrape = formatTime(stats.LatestNewsScrape)
	res.Stats.Cuisines = toFacets(stats.Cuisines)
	res.Stats.Categories = toFacets(stats.Categories)
	return res
}

func toFacets(facets []db.FacetCount) []FacetResponse {
	out := make([]FacetResponse, 0, len(facets))
	for _, f := range facets {
		out = append(out, FacetResponse{Value: f.Value, Count: f.Count})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
