// Package cooking scrapes recipe and news content from the cooking site
// and hands normalized records to the store. Fetching, extraction and
// persistence proceed item by item; one bad page never aborts a run.
package cooking

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/lib/htmlutil"
)

var tracer = otel.Tracer("lib/scrapers/cooking")

// RecordSink receives successfully extracted records. The cooking store
// service satisfies this.
type RecordSink interface {
	UpsertRecipe(ctx context.Context, r models.Recipe) (int64, error)
	UpsertNews(ctx context.Context, n models.NewsItem) (int64, error)
}

type Options struct {
	// base url of the source site, e.g. https://cooking.example.com
	BaseURL string
	// politeness delay between item requests
	Delay time.Duration
}

type Scraper struct {
	fetcher Fetcher
	sink    RecordSink
	base    *url.URL
	delay   time.Duration

	itemsStored metric.Int64Counter
	itemsFailed metric.Int64Counter
}

func NewScraper(fetcher Fetcher, sink RecordSink, opts Options) (*Scraper, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q is missing a scheme or host", opts.BaseURL)
	}

	meter := otel.Meter("lib/scrapers/cooking")
	stored, err := meter.Int64Counter("scraper.items_stored")
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("scraper.items_failed")
	if err != nil {
		return nil, err
	}

	return &Scraper{
		fetcher:     fetcher,
		sink:        sink,
		base:        base,
		delay:       opts.Delay,
		itemsStored: stored,
		itemsFailed: failed,
	}, nil
}

// Report summarizes one scrape run for logging and status polling.
type Report struct {
	Attempted  int
	Stored     int
	Failed     int
	FailedURLs []string
}

// listing card selectors tried in order; the catch-all keeps discovery
// working when the card markup changes
var listingAnchorSelectors = []string{
	"[data-testid='recipe-card'] a",
	"article a",
	"a",
}

func (s *Scraper) listingURL(page int) string {
	if page == 1 {
		return s.base.JoinPath("recipes").String()
	}
	return s.base.JoinPath("recipes").String() + fmt.Sprintf("?page=%d", page)
}

// sectionPrefix is the item-path prefix for a listing section, resolved
// against the base so a base url carrying a path component still matches
// the links its own listings produce.
func (s *Scraper) sectionPrefix(section string) string {
	return s.base.JoinPath(section).Path + "/"
}

func (s *Scraper) discoverLinks(ctx context.Context, doc *goquery.Document, pathPrefix string, seen map[string]bool) []string {
	var links []string
	for _, selector := range listingAnchorSelectors {
		anchors := htmlutil.GetAnchors(ctx, doc.Find(selector), s.base)
		for _, a := range anchors {
			link, err := url.Parse(a.Href)
			if err != nil {
				continue
			}
			if link.Host != s.base.Host {
				continue
			}
			if !strings.HasPrefix(link.Path, pathPrefix) || len(link.Path) == len(pathPrefix) {
				continue
			}
			// natural key: scheme://host/path, query and fragment dropped
			link.RawQuery = ""
			link.Fragment = ""
			href := link.String()
			if seen[href] {
				continue
			}
			seen[href] = true
			links = append(links, href)
		}
		if len(links) > 0 {
			break
		}
	}
	return links
}

// ScrapeRecipes walks listing pages 1..maxPages, discovers item links,
// then fetches and extracts each recipe, storing it on success. Results
// come back in discovery order. The error is non-nil only when no
// listing page could be fetched at all.
func (s *Scraper) ScrapeRecipes(ctx context.Context, maxPages int) ([]models.Recipe, Report, error) {
	ctx, span := tracer.Start(ctx, "ScrapeRecipes")
	defer span.End()
	span.SetAttributes(attribute.Int("max_pages", maxPages))

	seen := map[string]bool{}
	var itemURLs []string
	listingsFetched := 0
	var lastErr error

	for page := 1; page <= maxPages; page++ {
		listing := s.listingURL(page)
		content, err := s.fetcher.Fetch(ctx, listing)
		if err != nil {
			slog.WarnContext(ctx, "failed to fetch listing page", "url", listing, "err", err)
			lastErr = err
			continue
		}
		listingsFetched++

		doc, err := parseDocument(content)
		if err != nil {
			slog.WarnContext(ctx, "failed to parse listing page", "url", listing, "err", err)
			lastErr = err
			continue
		}

		links := s.discoverLinks(ctx, doc, s.sectionPrefix("recipes"), seen)
		slog.InfoContext(ctx, "discovered recipe links", "page", page, "count", len(links))
		itemURLs = append(itemURLs, links...)

		s.sleep(ctx)
	}

	if listingsFetched == 0 {
		err := fmt.Errorf("no listing pages could be fetched: %w", lastErr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, Report{}, err
	}

	var recipes []models.Recipe
	report := Report{}
	for _, itemURL := range itemURLs {
		report.Attempted++
		recipe, err := s.scrapeRecipe(ctx, itemURL)
		if err != nil {
			slog.WarnContext(ctx, "skipping recipe", "url", itemURL, "err", err)
			report.Failed++
			report.FailedURLs = append(report.FailedURLs, itemURL)
			s.itemsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "recipe")))
			continue
		}
		recipes = append(recipes, recipe)
		report.Stored++
		s.itemsStored.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "recipe")))

		s.sleep(ctx)
	}

	slog.InfoContext(ctx, "recipe scrape finished",
		"attempted", report.Attempted, "stored", report.Stored, "failed", report.Failed)
	return recipes, report, nil
}

func (s *Scraper) scrapeRecipe(ctx context.Context, itemURL string) (models.Recipe, error) {
	content, err := s.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		return models.Recipe{}, err
	}
	recipe, err := ExtractRecipe(content, itemURL)
	if err != nil {
		return models.Recipe{}, err
	}
	id, err := s.sink.UpsertRecipe(ctx, recipe)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("storing recipe: %w", err)
	}
	recipe.ID = id
	return recipe, nil
}

// ScrapeNews fetches the guides listing and extracts up to maxArticles
// linked articles.
func (s *Scraper) ScrapeNews(ctx context.Context, maxArticles int) ([]models.NewsItem, Report, error) {
	ctx, span := tracer.Start(ctx, "ScrapeNews")
	defer span.End()
	span.SetAttributes(attribute.Int("max_articles", maxArticles))

	listing := s.base.JoinPath("guides").String()
	content, err := s.fetcher.Fetch(ctx, listing)
	if err != nil {
		err = fmt.Errorf("fetching news listing: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, Report{}, err
	}
	doc, err := parseDocument(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, Report{}, err
	}

	itemURLs := s.discoverLinks(ctx, doc, s.sectionPrefix("guides"), map[string]bool{})
	if len(itemURLs) > maxArticles {
		itemURLs = itemURLs[:maxArticles]
	}
	slog.InfoContext(ctx, "discovered article links", "count", len(itemURLs))

	var items []models.NewsItem
	report := Report{}
	for _, itemURL := range itemURLs {
		report.Attempted++
		item, err := s.scrapeNewsItem(ctx, itemURL)
		if err != nil {
			slog.WarnContext(ctx, "skipping article", "url", itemURL, "err", err)
			report.Failed++
			report.FailedURLs = append(report.FailedURLs, itemURL)
			s.itemsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "news")))
			continue
		}
		items = append(items, item)
		report.Stored++
		s.itemsStored.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "news")))

		s.sleep(ctx)
	}

	slog.InfoContext(ctx, "news scrape finished",
		"attempted", report.Attempted, "stored", report.Stored, "failed", report.Failed)
	return items, report, nil
}

func (s *Scraper) scrapeNewsItem(ctx context.Context, itemURL string) (models.NewsItem, error) {
	content, err := s.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		return models.NewsItem{}, err
	}
	item, err := ExtractNews(content, itemURL)
	if err != nil {
		return models.NewsItem{}, err
	}
	id, err := s.sink.UpsertNews(ctx, item)
	if err != nil {
		return models.NewsItem{}, fmt.Errorf("storing news item: %w", err)
	}
	item.ID = id
	return item, nil
}

func (s *Scraper) sleep(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
}
