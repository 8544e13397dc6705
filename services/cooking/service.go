// Package cooking implements the content store: upsert-by-URL persistence
// of scraped recipes and news, plus the filtered query surface the web
// API reads from.
package cooking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/services/cooking/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/cooking")

const defaultListLimit = 50

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// UpsertRecipe inserts the recipe or, when its URL is already known,
// replaces every field of the existing row. ScrapedAt is stamped here so
// it always reflects the latest successful extraction.
func (s Service) UpsertRecipe(ctx context.Context, r models.Recipe) (int64, error) {
	ctx, span := tracer.Start(ctx, "UpsertRecipe")
	defer span.End()
	span.SetAttributes(attribute.String("url", r.URL))

	if r.Title == "" || r.URL == "" {
		err := fmt.Errorf("recipe is missing a title or url: %q", r.URL)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	r.ScrapedAt = time.Now()
	id, err := s.qry.UpsertRecipe(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return id, nil
}

func (s Service) UpsertNews(ctx context.Context, n models.NewsItem) (int64, error) {
	ctx, span := tracer.Start(ctx, "UpsertNews")
	defer span.End()
	span.SetAttributes(attribute.String("url", n.URL))

	if n.Title == "" || n.URL == "" {
		err := fmt.Errorf("news item is missing a title or url: %q", n.URL)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	n.ScrapedAt = time.Now()
	id, err := s.qry.UpsertNews(ctx, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return id, nil
}

type ListRecipesRequest struct {
	Cuisine    string
	Difficulty string
	Search     string
	Limit      int64
	Offset     int64
}

// ListRecipes returns recipes matching every provided filter, newest
// scrape first. An empty filter field means no constraint on that field.
func (s Service) ListRecipes(ctx context.Context, req ListRecipesRequest) ([]models.Recipe, error) {
	ctx, span := tracer.Start(ctx, "ListRecipes")
	defer span.End()

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	recipes, err := s.qry.ListRecipes(ctx, db.ListRecipesParams{
		Cuisine:    req.Cuisine,
		Difficulty: req.Difficulty,
		Search:     req.Search,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return recipes, nil
}

type ListNewsRequest struct {
	Category string
	Search   string
	Limit    int64
	Offset   int64
}

func (s Service) ListNews(ctx context.Context, req ListNewsRequest) ([]models.NewsItem, error) {
	ctx, span := tracer.Start(ctx, "ListNews")
	defer span.End()

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	items, err := s.qry.ListNews(ctx, db.ListNewsParams{
		Category: req.Category,
		Search:   req.Search,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return items, nil
}

// GetRecipe returns nil without an error when the id is unknown.
func (s Service) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	ctx, span := tracer.Start(ctx, "GetRecipe")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	recipe, err := s.qry.GetRecipe(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return recipe, nil
}

func (s Service) GetNewsItem(ctx context.Context, id int64) (*models.NewsItem, error) {
	ctx, span := tracer.Start(ctx, "GetNewsItem")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	item, err := s.qry.GetNewsItem(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return item, nil
}

type Stats struct {
	TotalRecipes       int64
	TotalNews          int64
	LatestRecipeScrape time.Time
	LatestNewsScrape   time.Time
	Cuisines           []db.FacetCount
	Categories         []db.FacetCount
}

func (s Service) Stats(ctx context.Context) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Stats")
	defer span.End()

	fail := func(err error) (Stats, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stats{}, err
	}

	var stats Stats
	var err error
	if stats.TotalRecipes, err = s.qry.CountRecipes(ctx); err != nil {
		return fail(err)
	}
	if stats.TotalNews, err = s.qry.CountNews(ctx); err != nil {
		return fail(err)
	}
	if stats.LatestRecipeScrape, err = s.qry.LatestRecipeScrape(ctx); err != nil {
		return fail(err)
	}
	if stats.LatestNewsScrape, err = s.qry.LatestNewsScrape(ctx); err != nil {
		return fail(err)
	}
	if stats.Cuisines, err = s.qry.CuisineCounts(ctx); err != nil {
		return fail(err)
	}
	if stats.Categories, err = s.qry.CategoryCounts(ctx); err != nil {
		return fail(err)
	}
	return stats, nil
}
