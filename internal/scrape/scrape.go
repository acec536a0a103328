// Package scrape is the page-to-playlist collaborator: given a media page
// URL it extracts the HLS playlist URLs advertised by the page's <source>
// elements, plus a human-readable title.
package scrape

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hlsget/hlsget/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// MIME types that mark a <source> element as an HLS playlist.
var hlsMIMETypes = map[string]bool{
	"application/x-mpegurl":         true,
	"application/vnd.apple.mpegurl": true,
}

type Scraper struct {
	client       *http.Client
	allowedHosts map[string]bool
}

// New builds a Scraper. An empty allowedHosts list permits any host.
func New(timeout time.Duration, allowedHosts []string) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var allowed map[string]bool
	if len(allowedHosts) > 0 {
		allowed = make(map[string]bool, len(allowedHosts))
		for _, h := range allowedHosts {
			allowed[strings.ToLower(h)] = true
		}
	}

	return &Scraper{
		client:       &http.Client{Timeout: timeout},
		allowedHosts: allowed,
	}
}

// Resolve fetches the page and returns every playlist URL found, in
// document order, with relative references resolved against the page URL.
func (s *Scraper) Resolve(ctx context.Context, pageURL string) ([]string, string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, "", domain.Errf(domain.CodeInvalidInput, "invalid page URL: %s", pageURL)
	}

	if s.allowedHosts != nil && !s.allowedHosts[strings.ToLower(base.Hostname())] {
		return nil, "", domain.Errf(domain.CodeInvalidInput, "host %q is not allowed", base.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", domain.WrapErr(domain.CodeInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", domain.WrapErr(domain.CodeTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", domain.Errf(domain.CodeTransport, "HTTP %d fetching page %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", domain.WrapErr(domain.CodeInternal, err)
	}

	return extract(doc, base)
}

func extract(doc *goquery.Document, base *url.URL) ([]string, string, error) {
	// Prefer the page's panel title; fall back to <title>.
	title := strings.TrimSpace(doc.Find("h3.panel-title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var sources []string
	doc.Find("source").Each(func(_ int, sel *goquery.Selection) {
		mime, _ := sel.Attr("type")
		if !hlsMIMETypes[strings.ToLower(strings.TrimSpace(mime))] {
			return
		}

		src, ok := sel.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			return
		}
		if !ref.IsAbs() {
			ref = base.ResolveReference(ref)
		}
		sources = append(sources, ref.String())
	})

	if len(sources) == 0 {
		return nil, title, domain.Errf(domain.CodeInvalidInput, "no valid M3U8 URL found on page")
	}

	return sources, title, nil
}
