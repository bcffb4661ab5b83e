package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pep299/study-planner/internal/cache"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	maxPageBytes     = 2 << 20
)

// FetchError describes a failed search or page fetch. Research treats it as
// routine: the source is dropped and the run continues.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status code: %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configures a Client
type Options struct {
	SearchURL     string
	SearchTimeout time.Duration
	FetchTimeout  time.Duration
	MaxConcurrent int
	Pages         *cache.Manager
}

// Client searches the web and extracts page text
type Client struct {
	httpClient    *http.Client
	searchURL     string
	userAgent     string
	searchTimeout time.Duration
	fetchTimeout  time.Duration
	maxConcurrent int
	pages         *cache.Manager
	log           *logger.Logger
}

// NewClient creates a new research client
func NewClient(opts Options, log *logger.Logger) *Client {
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 30 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		httpClient:    &http.Client{},
		searchURL:     opts.SearchURL,
		userAgent:     defaultUserAgent,
		searchTimeout: opts.SearchTimeout,
		fetchTimeout:  opts.FetchTimeout,
		maxConcurrent: opts.MaxConcurrent,
		pages:         opts.Pages,
		log:           log.With("component", "research"),
	}
}

// Search issues one query against the search endpoint and returns results in
// ranking order. Results without a resolvable URL are skipped and don't count
// toward maxResults.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", "us-en")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{Op: "search", URL: c.searchURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "search", URL: c.searchURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "search", URL: c.searchURL, Status: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &FetchError{Op: "search", URL: c.searchURL, Err: fmt.Errorf("parsing results: %w", err)}
	}

	return parseSearchResults(doc, maxResults), nil
}

// FetchText downloads a page and returns its visible text. Any failure is
// logged and reported as ok=false.
func (c *Client) FetchText(ctx context.Context, pageURL string) (string, bool) {
	if text, ok, err := c.pages.GetPage(ctx, pageURL); err != nil {
		c.log.Warn("page cache lookup failed", "url", pageURL, "error", err)
	} else if ok {
		return text, true
	}

	text, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		c.log.Warn("page fetch failed", "url", pageURL, "error", err)
		return "", false
	}
	if text == "" {
		return "", false
	}

	if err := c.pages.SetPage(ctx, pageURL, text); err != nil {
		c.log.Warn("page cache store failed", "url", pageURL, "error", err)
	}
	return text, true
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Op: "fetch", URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Op: "fetch", URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Op: "fetch", URL: pageURL, Status: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &FetchError{Op: "fetch", URL: pageURL, Err: fmt.Errorf("parsing page: %w", err)}
	}
	return ExtractText(doc), nil
}

// IsFetchError reports whether err came from a search or page fetch
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
