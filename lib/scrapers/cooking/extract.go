package cooking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/lib/textutil"
)

// ErrUnparseable means the fetched content could not be treated as HTML
// at all. This is the only hard extraction failure; a page that parses
// but is missing fields just produces defaults.
var ErrUnparseable = errors.New("document is not parseable html")

func parseDocument(content string) (*goquery.Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrUnparseable
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return doc, nil
}

var recipeTitleRules = []rule{
	{selector: "[data-testid='recipe-title']"},
	{selector: "h1"},
	{selector: "h3"},
}

var recipeDescriptionRules = []rule{
	{selector: "[data-testid='recipe-description']"},
	{selector: ".recipe-description"},
	{selector: "meta[name='description']", attr: "content"},
	{selector: "p"},
}

var ingredientRules = []rule{
	{selector: "[data-testid='ingredient']"},
	{selector: ".ingredient"},
	{selector: "ul.recipe-ingredients li"},
	{selector: "[itemprop='recipeIngredient']"},
}

var instructionRules = []rule{
	{selector: "[data-testid='instruction']"},
	{selector: ".instruction"},
	{selector: "ol.recipe-steps li"},
	{selector: "[itemprop='recipeInstructions'] li"},
}

var cookingTimeRules = []rule{
	{selector: "[data-testid='cooking-time']"},
	{selector: ".cooking-time"},
	{selector: "[itemprop='totalTime']"},
}

var difficultyRules = []rule{
	{selector: "[data-testid='difficulty']"},
	{selector: ".difficulty"},
}

var cuisineRules = []rule{
	{selector: "[data-testid='cuisine']"},
	{selector: ".cuisine"},
	{selector: "[itemprop='recipeCuisine']"},
}

var tagRules = []rule{
	{selector: "[data-testid='tag']"},
	{selector: ".tag"},
	{selector: ".category"},
}

var imageRules = []rule{
	{selector: "meta[property='og:image']", attr: "content"},
	{selector: "[data-testid='recipe-image']", attr: "src"},
	{selector: "img", attr: "src"},
}

var authorRules = []rule{
	{selector: "[data-testid='author']"},
	{selector: ".author"},
	{selector: ".byline"},
}

var publishedRules = []rule{
	{selector: "time", attr: "datetime"},
	{selector: "[data-testid='published-date']"},
	{selector: "meta[property='article:published_time']", attr: "content"},
}

func normalizeDifficulty(text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "easy":
		return models.DifficultyEasy
	case "medium", "intermediate":
		return models.DifficultyMedium
	case "hard", "advanced":
		return models.DifficultyHard
	default:
		return models.DifficultyUnknown
	}
}

// ExtractRecipe maps a fetched recipe page to a Recipe. The url
// parameter becomes the record's natural key as-is; it is never reparsed
// from the page. Missing fields fall back to defaults, never errors.
func ExtractRecipe(content, url string) (models.Recipe, error) {
	doc, err := parseDocument(content)
	if err != nil {
		return models.Recipe{}, err
	}

	title := firstMatch(doc, recipeTitleRules)
	if title == "" {
		title = models.DefaultRecipeTitle
	}

	// some pages put all tags into one comma-separated element
	tags := firstMatchList(doc, tagRules)
	if len(tags) == 1 {
		tags = textutil.SplitList(tags[0])
	}

	return models.Recipe{
		Title:         title,
		URL:           url,
		Description:   firstMatch(doc, recipeDescriptionRules),
		Ingredients:   firstMatchList(doc, ingredientRules),
		Instructions:  strings.Join(firstMatchList(doc, instructionRules), "\n"),
		CookingTime:   firstMatch(doc, cookingTimeRules),
		Difficulty:    normalizeDifficulty(firstMatch(doc, difficultyRules)),
		Cuisine:       firstMatch(doc, cuisineRules),
		Tags:          tags,
		ImageURL:      firstMatch(doc, imageRules),
		Author:        firstMatch(doc, authorRules),
		PublishedDate: firstMatch(doc, publishedRules),
	}, nil
}

var newsTitleRules = []rule{
	{selector: "[data-testid='article-title']"},
	{selector: "h1"},
	{selector: "h2"},
	{selector: "h3"},
}

var newsSummaryRules = []rule{
	{selector: "[data-testid='summary']"},
	{selector: ".summary"},
	{selector: "meta[name='description']", attr: "content"},
	{selector: "p"},
}

var newsContentRules = []rule{
	{selector: "[data-testid='article-body'] p"},
	{selector: "article p"},
	{selector: "p"},
}

var newsCategoryRules = []rule{
	{selector: "[data-testid='category']"},
	{selector: ".category"},
	{selector: "meta[property='article:section']", attr: "content"},
}

// ExtractNews is ExtractRecipe's counterpart for news/guide pages.
func ExtractNews(content, url string) (models.NewsItem, error) {
	doc, err := parseDocument(content)
	if err != nil {
		return models.NewsItem{}, err
	}

	title := firstMatch(doc, newsTitleRules)
	if title == "" {
		title = models.DefaultNewsTitle
	}
	category := firstMatch(doc, newsCategoryRules)
	if category == "" {
		category = models.DefaultNewsCategory
	}

	summary := firstMatch(doc, newsSummaryRules)
	body := strings.Join(firstMatchList(doc, newsContentRules), "\n")
	if body == "" {
		body = summary
	}

	return models.NewsItem{
		Title:         title,
		URL:           url,
		Summary:       summary,
		Content:       body,
		Author:        firstMatch(doc, authorRules),
		PublishedDate: firstMatch(doc, publishedRules),
		Category:      category,
		ImageURL:      firstMatch(doc, imageRules),
	}, nil
}
