package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

const maxPageBytes = 4 << 20

var detailHrefRe = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)

// Paths that look like vehicle detail pages on the vendor sites in scope.
var detailPathHints = []string{
	"/vehicle",
	"/vehicule",
	"/vehicules",
	"/inventory/",
	"/inventaire/",
	"/occasion/",
	"/detail",
	"/listing/",
}

// Fetcher retrieves vendor pages with a browser-like user agent and a hard
// per-request timeout.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logg       *logger.Logger
}

// NewFetcher builds a page fetcher.
func NewFetcher(timeout time.Duration, userAgent string, logg *logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logg:       logg,
	}
}

// FetchPage GETs one URL and returns the body as a string.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}

// DiscoverListings paginates the vendor's listing index collecting detail
// page URLs. Pagination stops at maxPages or on the first page fetch error;
// partial discovery never fails the caller, the URLs found so far are
// returned.
func (f *Fetcher) DiscoverListings(ctx context.Context, listingURL string, maxPages int) ([]string, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	seen := make(map[string]struct{})
	var detailURLs []string
	for page := 1; page <= maxPages; page++ {
		pageURL := listingURL
		if page > 1 {
			pageURL = withPageParam(listingURL, page)
		}

		html, err := f.FetchPage(ctx, pageURL)
		if err != nil {
			if f.logg != nil {
				warnCtx := f.logg.WithFields(ctx, map[string]any{
					"page_url": pageURL,
					"error":    err.Error(),
				})
				f.logg.Warn(warnCtx, "listing page fetch failed, stopping pagination")
			}
			break
		}

		found := 0
		for _, href := range extractDetailLinks(html, base) {
			if _, ok := seen[href]; ok {
				continue
			}
			seen[href] = struct{}{}
			detailURLs = append(detailURLs, href)
			found++
		}
		// A page contributing nothing new means pagination ran past the end.
		if found == 0 {
			break
		}
	}
	return detailURLs, nil
}

func withPageParam(listingURL string, page int) string {
	sep := "?"
	if strings.Contains(listingURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", listingURL, sep, page)
}

func extractDetailLinks(html string, base *url.URL) []string {
	var links []string
	for _, m := range detailHrefRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		if !looksLikeDetailPath(href) {
			continue
		}
		parsed, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(parsed)
		// Stay on the vendor's own host.
		if resolved.Host != base.Host {
			continue
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	}
	return links
}

func looksLikeDetailPath(href string) bool {
	lowered := strings.ToLower(href)
	for _, hint := range detailPathHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}
