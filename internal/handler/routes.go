package handler

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, content *ContentHandler, scrape *ScrapeHandler) {
	api := r.Group("/api")
	api.GET("/recipes", content.GetRecipes)
	api.GET("/recipes/:id", content.GetRecipe)
	api.GET("/news", content.GetNews)
	api.GET("/news/:id", content.GetNewsItem)
	api.GET("/stats", content.GetStats)
	api.POST("/scrape", scrape.TriggerScrape)
	api.POST("/scrape-articles", scrape.TriggerArticleScrape)
	api.GET("/scrape/status", scrape.GetStatus)
}
