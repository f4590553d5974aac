// Package fetch retrieves an article over HTTP and extracts its readable
// text, so a submission can start from a URL instead of pasted content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Article is the readable content extracted from a page.
type Article struct {
	Title string
	Text  string
}

// Fetcher downloads pages and extracts article text.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher. timeout bounds the whole download.
func New(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch downloads articleURL and returns its title and extracted text.
func (f *Fetcher) Fetch(ctx context.Context, articleURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "propex/1.0 (article fetcher)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: %s", articleURL, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", articleURL, err)
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting content from %s: %w", articleURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < 100 {
		return nil, fmt.Errorf("no extractable article content at %s", articleURL)
	}

	return &Article{Title: strings.TrimSpace(article.Title), Text: text}, nil
}
