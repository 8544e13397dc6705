package timesapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const searchDoc = `{
	"web_url": "https://www.example.com/2024/09/12/dining/pasta.html",
	"snippet": "A pasta story.",
	"lead_paragraph": "It begins with pasta.",
	"pub_date": "2024-09-12T10:00:00+0000",
	"section_name": "Food",
	"headline": {"main": "The Pasta Piece"},
	"byline": {"person": [{"name": "A. Writer"}, {"name": "B. Editor"}]}
}`

func TestSearchCookingArticles(t *testing.T) {
	var requestedPages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/v2/articlesearch.json", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		page := r.URL.Query().Get("page")
		requestedPages = append(requestedPages, page)

		w.Header().Set("Content-Type", "application/json")
		if page == "0" {
			fmt.Fprintf(w, `{"response": {"docs": [%s]}}`, searchDoc)
			return
		}
		fmt.Fprint(w, `{"response": {"docs": []}}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL})
	items, err := client.SearchCookingArticles(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1"}, requestedPages)

	require.Len(t, items, 1)
	require.Equal(t, "The Pasta Piece", items[0].Title)
	require.Equal(t, "https://www.example.com/2024/09/12/dining/pasta.html", items[0].URL)
	require.Equal(t, "A pasta story.", items[0].Summary)
	require.Equal(t, "It begins with pasta.", items[0].Content)
	require.Equal(t, "A. Writer, B. Editor", items[0].Author)
	require.Equal(t, "Food", items[0].Category)
}

func TestSearchWithoutKey(t *testing.T) {
	client := NewClient(ClientOptions{})
	_, err := client.SearchCookingArticles(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSearchFirstPageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.SearchCookingArticles(context.Background(), 2)
	require.Error(t, err)
}

func TestFetchRSSArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/food.xml", r.URL.Path)
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>Food</title>
<item>
<title>A Better Braise</title>
<link>https://www.example.com/2024/09/12/dining/braise.html</link>
<description>Low and slow wins.</description>
<dc:creator>A. Writer</dc:creator>
<pubDate>Thu, 12 Sep 2024 10:00:00 +0000</pubDate>
<category>Techniques</category>
<category>Dinner</category>
</item>
<item>
<title>No link, skipped</title>
<description>Malformed entry.</description>
</item>
</channel>
</rss>`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{RSSBaseURL: server.URL})
	items, err := client.FetchRSSArticles(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, items, 1)
	require.Equal(t, "A Better Braise", items[0].Title)
	require.Equal(t, "https://www.example.com/2024/09/12/dining/braise.html", items[0].URL)
	require.Equal(t, "Low and slow wins.", items[0].Summary)
	require.Equal(t, "A. Writer", items[0].Author)
	require.Equal(t, "Techniques", items[0].Category)
}

func TestFetchRSSArticlesBadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<rss><channel><item><title>broken`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{RSSBaseURL: server.URL})
	_, err := client.FetchRSSArticles(context.Background(), "food")
	require.Error(t, err)
}

func TestArchiveFiltersByKeyword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/archive/v1/2024/9.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response": {"docs": [
			{"web_url": "https://www.example.com/a", "headline": {"main": "A new restaurant opens"}},
			{"web_url": "https://www.example.com/b", "headline": {"main": "Markets rally"}},
			{"web_url": "https://www.example.com/c", "headline": {"main": "Nothing here"}, "snippet": "the chef speaks"}
		]}}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL})
	items, err := client.ArchiveCookingArticles(context.Background(), 2024, time.September)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "https://www.example.com/a", items[0].URL)
	require.Equal(t, "https://www.example.com/c", items[1].URL)
}
