package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"cookscrape-backend/internal/models"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertRecipe = `
INSERT INTO recipes (
    title, url, description, ingredients, instructions, cooking_time,
    difficulty, cuisine, tags, image_url, author, published_date, scraped_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    ingredients = excluded.ingredients,
    instructions = excluded.instructions,
    cooking_time = excluded.cooking_time,
    difficulty = excluded.difficulty,
    cuisine = excluded.cuisine,
    tags = excluded.tags,
    image_url = excluded.image_url,
    author = excluded.author,
    published_date = excluded.published_date,
    scraped_at = excluded.scraped_at
RETURNING id
`

func (q *Queries) UpsertRecipe(ctx context.Context, r models.Recipe) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, upsertRecipe,
		r.Title, r.URL, r.Description,
		models.EncodeList(r.Ingredients), r.Instructions, r.CookingTime,
		r.Difficulty, r.Cuisine, models.EncodeList(r.Tags),
		r.ImageURL, r.Author, r.PublishedDate, r.ScrapedAt.Unix(),
	).Scan(&id)
	return id, err
}

const upsertNews = `
INSERT INTO news (
    title, url, summary, content, author, published_date,
    category, image_url, scraped_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
    title = excluded.title,
    summary = excluded.summary,
    content = excluded.content,
    author = excluded.author,
    published_date = excluded.published_date,
    category = excluded.category,
    image_url = excluded.image_url,
    scraped_at = excluded.scraped_at
RETURNING id
`

func (q *Queries) UpsertNews(ctx context.Context, n models.NewsItem) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, upsertNews,
		n.Title, n.URL, n.Summary, n.Content, n.Author,
		n.PublishedDate, n.Category, n.ImageURL, n.ScrapedAt.Unix(),
	).Scan(&id)
	return id, err
}

const recipeColumns = `id, title, url, description, ingredients, instructions,
cooking_time, difficulty, cuisine, tags, image_url, author, published_date, scraped_at`

func scanRecipe(row interface{ Scan(...any) error }) (models.Recipe, error) {
	var r models.Recipe
	var ingredients, tags string
	var scrapedAt int64
	err := row.Scan(
		&r.ID, &r.Title, &r.URL, &r.Description, &ingredients,
		&r.Instructions, &r.CookingTime, &r.Difficulty, &r.Cuisine,
		&tags, &r.ImageURL, &r.Author, &r.PublishedDate, &scrapedAt,
	)
	if err != nil {
		return models.Recipe{}, err
	}
	r.Ingredients = models.DecodeList(ingredients)
	r.Tags = models.DecodeList(tags)
	r.ScrapedAt = time.Unix(scrapedAt, 0)
	return r, nil
}

func (q *Queries) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	row := q.db.QueryRowContext(
		ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id,
	)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type ListRecipesParams struct {
	Cuisine    string
	Difficulty string
	Search     string
	Limit      int64
	Offset     int64
}

func (q *Queries) ListRecipes(ctx context.Context, params ListRecipesParams) ([]models.Recipe, error) {
	var where []string
	var args []any

	if params.Cuisine != "" {
		where = append(where, "cuisine = ?")
		args = append(args, params.Cuisine)
	}
	if params.Difficulty != "" {
		where = append(where, "difficulty = ?")
		args = append(args, params.Difficulty)
	}
	if params.Search != "" {
		where = append(where, "(instr(lower(title), lower(?)) > 0 OR instr(lower(description), lower(?)) > 0)")
		args = append(args, params.Search, params.Search)
	}

	query := "SELECT " + recipeColumns + " FROM recipes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scraped_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, params.Limit, params.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

const newsColumns = `id, title, url, summary, content, author,
published_date, category, image_url, scraped_at`

func scanNews(row interface{ Scan(...any) error }) (models.NewsItem, error) {
	var n models.NewsItem
	var scrapedAt int64
	err := row.Scan(
		&n.ID, &n.Title, &n.URL, &n.Summary, &n.Content, &n.Author,
		&n.PublishedDate, &n.Category, &n.ImageURL, &scrapedAt,
	)
	if err != nil {
		return models.NewsItem{}, err
	}
	n.ScrapedAt = time.Unix(scrapedAt, 0)
	return n, nil
}

func (q *Queries) GetNewsItem(ctx context.Context, id int64) (*models.NewsItem, error) {
	row := q.db.QueryRowContext(
		ctx, "SELECT "+newsColumns+" FROM news WHERE id = ?", id,
	)
	n, err := scanNews(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type ListNewsParams struct {
	Category string
	Search   string
	Limit    int64
	Offset   int64
}

func (q *Queries) ListNews(ctx context.Context, params ListNewsParams) ([]models.NewsItem, error) {
	var where []string
	var args []any

	if params.Category != "" {
		where = append(where, "category = ?")
		args = append(args, params.Category)
	}
	if params.Search != "" {
		where = append(where, "(instr(lower(title), lower(?)) > 0 OR instr(lower(summary), lower(?)) > 0)")
		args = append(args, params.Search, params.Search)
	}

	query := "SELECT " + newsColumns + " FROM news"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scraped_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, params.Limit, params.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

type FacetCount struct {
	Value string
	Count int64
}

func (q *Queries) countFacet(ctx context.Context, query string) ([]FacetCount, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facets []FacetCount
	for rows.Next() {
		var f FacetCount
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, err
		}
		facets = append(facets, f)
	}
	return facets, rows.Err()
}

func (q *Queries) CuisineCounts(ctx context.Context) ([]FacetCount, error) {
	return q.countFacet(ctx, `
		SELECT cuisine, COUNT(*) FROM recipes
		WHERE cuisine != '' GROUP BY cuisine ORDER BY cuisine
	`)
}

func (q *Queries) CategoryCounts(ctx context.Context) ([]FacetCount, error) {
	return q.countFacet(ctx, `
		SELECT category, COUNT(*) FROM news
		WHERE category != '' GROUP BY category ORDER BY category
	`)
}

func (q *Queries) CountRecipes(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&count)
	return count, err
}

func (q *Queries) CountNews(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM news").Scan(&count)
	return count, err
}

func (q *Queries) LatestRecipeScrape(ctx context.Context) (time.Time, error) {
	return q.latestScrape(ctx, "SELECT COALESCE(MAX(scraped_at), 0) FROM recipes")
}

func (q *Queries) LatestNewsScrape(ctx context.Context) (time.Time, error) {
	return q.latestScrape(ctx, "SELECT COALESCE(MAX(scraped_at), 0) FROM news")
}

func (q *Queries) latestScrape(ctx context.Context, query string) (time.Time, error) {
	var unix int64
	err := q.db.QueryRowContext(ctx, query).Scan(&unix)
	if err != nil {
		return time.Time{}, err
	}
	if unix == 0 {
		return time.Time{}, nil
	}
	return time.Unix(unix, 0), nil
}
