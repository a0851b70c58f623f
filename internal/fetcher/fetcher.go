package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/gocolly/colly/v2"
	"github.com/renovaverde/sitegen/internal/utils"
)

type Fetcher struct {
	config *FetcherConfig
}

type FetcherConfig struct {
	APIBaseURL string
	UserAgent  string
}

func NewFetcher(config *FetcherConfig) *Fetcher {
	return &Fetcher{config: config}
}

// ArticlesURL is the published articles listing under the API base URL.
func ArticlesURL(apiBaseURL string) string {
	return strings.TrimRight(apiBaseURL, "/") + "/articles?published=true"
}

func (f *Fetcher) Endpoint() string {
	return ArticlesURL(f.config.APIBaseURL)
}

// Fetch performs a single GET of the published articles and returns the raw
// body. Network failures and non-2xx statuses are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
	)
	c.WithTransport(&utils.ContextTransport{Ctx: ctx})

	var (
		body     []byte
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("unexpected status code %d from %s: %w", r.StatusCode, r.Request.URL, err)
			return
		}
		fetchErr = err
	})

	endpoint := f.Endpoint()
	if err := c.Visit(endpoint); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, fetchErr)
	}
	if body == nil {
		return nil, fmt.Errorf("failed to fetch %s: empty response", endpoint)
	}

	return body, nil
}
