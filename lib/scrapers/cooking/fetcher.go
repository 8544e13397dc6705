package cooking

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the raw content of a page. Implementations that
// execute client-side rendering can be swapped in behind this interface;
// the orchestrator does not care how the bytes were produced.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError is a network failure, a non-success status or an empty
// response body. Re-running the pipeline later may succeed; nothing
// retries automatically within a run.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ClientOptions struct {
	UserAgent string
	Timeout   time.Duration
	// requests per second against the source, 0 means the default of 2
	RequestsPerSecond float64
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Client is the production Fetcher: resty with a cookie jar, the
// cloudflare bypass transport and a rate limit on outgoing requests.
type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)

	// max burst >= limit just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	return &Client{http: httpClient}, nil
}

func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode()}
	}
	body := string(res.Body())
	if body == "" {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode(), Err: fmt.Errorf("empty response body")}
	}
	return body, nil
}
