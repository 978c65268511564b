package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/infrastructure/parser"
)

const (
	// DefaultMaxPages is the page budget of a multi-page crawl.
	DefaultMaxPages = 10
	// DefaultUserAgent mimics a desktop browser; many sites refuse Go's default agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultMaxBodyBytes = 5 << 20
	minPageTextLength   = 50
	maxFilenameLength   = 255
	maxRedirects        = 10
)

var errOffHost = errors.New("redirect leaves the crawled host")

// Skip reasons reported for pages that produced no document.
const (
	SkipFetchError = "fetch_error"
	SkipBadStatus  = "bad_status"
	SkipNotHTML    = "not_html"
	SkipParseError = "parse_error"
	SkipTooShort   = "too_short"
	SkipOffHost    = "off_host"
	SkipDuplicate  = "duplicate"
)

var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {}, ".bmp": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {},
	".css": {}, ".js": {}, ".mjs": {}, ".json": {}, ".xml": {},
	".pdf": {}, ".mp3": {}, ".mp4": {}, ".webm": {}, ".avi": {}, ".mov": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".exe": {}, ".dmg": {},
}

// Recorder receives one outcome per dequeued page ("extracted" or a skip reason).
type Recorder interface {
	ObservePage(outcome string)
}

// Options tune a Crawler.
type Options struct {
	MaxPages     int
	UserAgent    string
	MaxBodyBytes int64
	Recorder     Recorder
}

// Skip records why a visited page produced no document.
type Skip struct {
	URL    string
	Reason string
}

// Result is the outcome of one crawl invocation.
type Result struct {
	Documents []domain.Document
	Titles    []string
	Visited   int
	Skipped   []Skip
}

// Crawler performs bounded breadth-first crawls, one fetch at a time.
type Crawler struct {
	client       *http.Client
	logger       *slog.Logger
	maxPages     int
	userAgent    string
	maxBodyBytes int64
	recorder     Recorder
}

// New wires an HTTP client; zero options fall back to defaults.
func New(client *http.Client, logger *slog.Logger, opts Options) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	crawlClient := *client
	crawlClient.CheckRedirect = sameHostRedirect(client.CheckRedirect)
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Crawler{
		client:       &crawlClient,
		logger:       logger,
		maxPages:     opts.MaxPages,
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
		recorder:     opts.Recorder,
	}
}

// Crawl visits seed and, when follow is set, same-host pages reachable from it.
// At most one page is kept without follow, MaxPages with it. Documents are returned
// unsaved; domain.ErrNoReadableContent is returned when none qualified.
func (c *Crawler) Crawl(ctx context.Context, seed string, follow bool) (Result, error) {
	seedURL, err := url.Parse(strings.TrimSpace(seed))
	if err != nil || (seedURL.Scheme != "http" && seedURL.Scheme != "https") || seedURL.Hostname() == "" {
		return Result{}, fmt.Errorf("%w: invalid url %q", domain.ErrValidation, seed)
	}
	seed = parser.CanonicalURL(seedURL)
	host := seedURL.Hostname()

	budget := 1
	if follow {
		budget = c.maxPages
	}

	frontier := NewFrontier(seed)
	var result Result

	for frontier.Len() > 0 && len(result.Documents) < budget {
		if ctx.Err() != nil {
			c.warn("crawl interrupted", "seed", seed, "error", ctx.Err())
			break
		}

		next, _ := frontier.Pop()
		if !frontier.Visit(next) {
			continue
		}

		page, reason, err := c.fetchPage(ctx, next, host)
		if err != nil {
			c.warn("skip page", "url", next, "reason", reason, "error", err)
			c.observe(reason)
			result.Skipped = append(result.Skipped, Skip{URL: next, Reason: reason})
			continue
		}

		// A redirect onto an already crawled page yields nothing new.
		if page.URL != next && !frontier.Visit(page.URL) {
			c.debug("skip page", "url", next, "reason", SkipDuplicate, "final_url", page.URL)
			c.observe(SkipDuplicate)
			result.Skipped = append(result.Skipped, Skip{URL: next, Reason: SkipDuplicate})
			continue
		}

		if utf8.RuneCountInString(page.Text) > minPageTextLength {
			result.Documents = append(result.Documents, newPageDocument(page.URL, page.Extracted))
			result.Titles = append(result.Titles, page.Title)
			c.observe("extracted")
			c.debug("page extracted", "url", page.URL, "title", page.Title, "chars", len(page.Text))
		} else {
			c.observe(SkipTooShort)
			result.Skipped = append(result.Skipped, Skip{URL: next, Reason: SkipTooShort})
		}

		if !follow {
			continue
		}
		for _, link := range page.Links {
			if c.shouldEnqueue(link, host, frontier) {
				frontier.Push(link)
			}
		}
	}

	result.Visited = frontier.VisitedCount()
	c.info("crawl finished", "seed", seed, "follow", follow, "visited", result.Visited,
		"documents", len(result.Documents), "skipped", len(result.Skipped))

	if len(result.Documents) == 0 {
		return result, domain.ErrNoReadableContent
	}
	return result, nil
}

// fetchedPage is a parsed page and the URL it was finally served from.
type fetchedPage struct {
	parser.Page
	URL string
}

// fetchPage follows redirects; links resolve against the final URL, and a
// final URL on another host is skipped.
func (c *Crawler) fetchPage(ctx context.Context, pageURL, host string) (fetchedPage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fetchedPage{}, SkipFetchError, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if errors.Is(err, errOffHost) {
		return fetchedPage{}, SkipOffHost, err
	}
	if err != nil {
		return fetchedPage{}, SkipFetchError, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		if resp.Request.URL.Hostname() != host {
			return fetchedPage{}, SkipOffHost, fmt.Errorf("redirected off host to %s", resp.Request.URL.Hostname())
		}
		finalURL = parser.CanonicalURL(resp.Request.URL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fetchedPage{}, SkipBadStatus, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/html") {
		return fetchedPage{}, SkipNotHTML, fmt.Errorf("content type %q is not html", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return fetchedPage{}, SkipFetchError, fmt.Errorf("read body: %w", err)
	}

	page, err := parser.ParsePage(body, finalURL)
	if err != nil {
		return fetchedPage{}, SkipParseError, err
	}
	return fetchedPage{Page: page, URL: finalURL}, "", nil
}

// sameHostRedirect refuses redirects to another hostname before they are followed.
func sameHostRedirect(next func(*http.Request, []*http.Request) error) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if req.URL.Hostname() != via[0].URL.Hostname() {
			return errOffHost
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
}

func (c *Crawler) shouldEnqueue(link, host string, frontier *Frontier) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Hostname() != host || frontier.Visited(link) {
		return false
	}
	_, binary := binaryExtensions[strings.ToLower(path.Ext(u.Path))]
	return !binary
}

func newPageDocument(pageURL string, page parser.Extracted) domain.Document {
	u := pageURL
	return domain.Document{
		Filename: truncateRunes(fmt.Sprintf("%s [%s]", page.Title, pageURL), maxFilenameLength),
		Content:  fmt.Sprintf("URL: %s\nTITLE: %s\n\n%s", pageURL, page.Title, page.Text),
		Status:   domain.StatusReady,
		Type:     domain.TypeURL,
		URL:      &u,
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func (c *Crawler) observe(outcome string) {
	if c.recorder != nil {
		c.recorder.ObservePage(outcome)
	}
}

func (c *Crawler) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Crawler) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Crawler) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
