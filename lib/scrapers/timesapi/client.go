// Package timesapi is a client for the newspaper's article APIs, used as
// an additional news source alongside web scraping.
package timesapi

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"cookscrape-backend/internal/models"
	"cookscrape-backend/lib/textutil"
)

const (
	defaultBaseURL    = "https://api.nytimes.com/svc"
	defaultRSSBaseURL = "https://rss.nytimes.com/services/xml/rss/nyt"
)

// ErrNoAPIKey is returned by every call when the client was built
// without a key; API sourcing is simply unavailable then.
var ErrNoAPIKey = errors.New("article api key is not configured")

// cookingKeywords filter archive results down to food content, the
// archive endpoint has no query parameter of its own.
var cookingKeywords = []string{"cooking", "recipe", "food", "chef", "restaurant", "dining"}

type ClientOptions struct {
	APIKey string
	// overridable for tests, default to the production endpoints
	BaseURL    string
	RSSBaseURL string
}

type Client struct {
	http   *resty.Client
	rss    *resty.Client
	apiKey string
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.RSSBaseURL == "" {
		opts.RSSBaseURL = defaultRSSBaseURL
	}
	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	httpClient.SetTimeout(time.Second * 30)
	rssClient := resty.New()
	rssClient.SetBaseURL(opts.RSSBaseURL)
	rssClient.SetTimeout(time.Second * 30)
	return &Client{
		http:   httpClient,
		rss:    rssClient,
		apiKey: opts.APIKey,
	}
}

type searchResponse struct {
	Response struct {
		Docs []articleDoc `json:"docs"`
	} `json:"response"`
}

type articleDoc struct {
	WebURL   string `json:"web_url"`
	Snippet  string `json:"snippet"`
	LeadPara string `json:"lead_paragraph"`
	PubDate  string `json:"pub_date"`
	Section  string `json:"section_name"`
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	Byline struct {
		Person []struct {
			Name string `json:"name"`
		} `json:"person"`
	} `json:"byline"`
}

func (d articleDoc) toNewsItem() models.NewsItem {
	var authors []string
	for _, p := range d.Byline.Person {
		if p.Name != "" {
			authors = append(authors, p.Name)
		}
	}

	title := d.Headline.Main
	if title == "" {
		title = models.DefaultNewsTitle
	}
	category := d.Section
	if category == "" {
		category = models.DefaultNewsCategory
	}

	return models.NewsItem{
		Title:         title,
		URL:           d.WebURL,
		Summary:       d.Snippet,
		Content:       d.LeadPara,
		Author:        strings.Join(authors, ", "),
		PublishedDate: d.PubDate,
		Category:      category,
	}
}

// SearchCookingArticles pages through the article search API with a
// cooking query and maps the docs to news items. Pages after the first
// failing page are abandoned, whatever was already collected is
// returned.
func (c *Client) SearchCookingArticles(ctx context.Context, maxPages int) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var items []models.NewsItem
	for page := 0; page < maxPages; page++ {
		var result searchResponse
		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"api-key": c.apiKey,
				"q":       "cooking OR recipe OR food",
				"page":    fmt.Sprintf("%d", page),
				"sort":    "newest",
			}).
			SetResult(&result).
			Get("/search/v2/articlesearch.json")
		if err != nil {
			if page > 0 {
				slog.WarnContext(ctx, "article search page failed, stopping", "page", page, "err", err)
				break
			}
			return nil, fmt.Errorf("article search: %w", err)
		}
		if res.IsError() {
			if page > 0 {
				slog.WarnContext(ctx, "article search page failed, stopping", "page", page, "status", res.StatusCode())
				break
			}
			return nil, fmt.Errorf("article search: status %d", res.StatusCode())
		}

		for _, doc := range result.Response.Docs {
			if doc.WebURL == "" {
				continue
			}
			items = append(items, doc.toNewsItem())
		}
		if len(result.Response.Docs) == 0 {
			break
		}
	}
	return items, nil
}

// ArchiveCookingArticles pulls one month from the archive API and keeps
// only articles whose headline or snippet mentions a cooking keyword.
func (c *Client) ArchiveCookingArticles(ctx context.Context, year int, month time.Month) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var result searchResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api-key", c.apiKey).
		SetResult(&result).
		Get(fmt.Sprintf("/archive/v1/%d/%d.json", year, int(month)))
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("archive: status %d", res.StatusCode())
	}

	var items []models.NewsItem
	for _, doc := range result.Response.Docs {
		if doc.WebURL == "" {
			continue
		}
		if !textutil.ContainsAny(doc.Headline.Main, cookingKeywords) &&
			!textutil.ContainsAny(doc.Snippet, cookingKeywords) {
			continue
		}
		items = append(items, doc.toNewsItem())
	}
	return items, nil
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Creator     string   `xml:"creator"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

func (it rssItem) toNewsItem() models.NewsItem {
	title := it.Title
	if title == "" {
		title = models.DefaultNewsTitle
	}
	category := models.DefaultNewsCategory
	if len(it.Categories) > 0 {
		category = it.Categories[0]
	}
	return models.NewsItem{
		Title:         title,
		URL:           it.Link,
		Summary:       it.Description,
		Content:       it.Description,
		Author:        it.Creator,
		PublishedDate: it.PubDate,
		Category:      category,
	}
}

// FetchRSSArticles pulls the section feed (food by default) and maps its
// entries to news items. The feeds are public, no API key involved.
func (c *Client) FetchRSSArticles(ctx context.Context, section string) ([]models.NewsItem, error) {
	if section == "" {
		section = "food"
	}

	res, err := c.rss.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s.xml", section))
	if err != nil {
		return nil, fmt.Errorf("rss feed %s: %w", section, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("rss feed %s: status %d", section, res.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(res.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parsing rss feed %s: %w", section, err)
	}

	var items []models.NewsItem
	for _, it := range feed.Channel.Items {
		if it.Link == "" {
			continue
		}
		items = append(items, it.toNewsItem())
	}
	return items, nil
}
