package skills

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "log/slog"

	"zara/internal/opener"
	"zara/internal/router"
)

const (
	duckDuckGoHTML = "https://html.duckduckgo.com/html/"
	googleSearch   = "https://www.google.com/search"
)

// Search reads the top result titles from DuckDuckGo's HTML endpoint and opens
// the query in the browser.
type Search struct {
	Client *http.Client
	Opener opener.Opener
	// ResultsURL overrides the DuckDuckGo endpoint.
	ResultsURL string
	// BrowseURL overrides the page opened in the browser.
	BrowseURL string
	Limit     int
}

func (s Search) Handle(ctx context.Context, req router.Request) (string, error) {
	query := strings.TrimSpace(strings.TrimPrefix(req.Payload, "for "))
	if query == "" {
		return "What should I search for?", nil
	}
	return s.Query(ctx, query)
}

// Query runs a web search for query. Open uses it when a file is not found.
func (s Search) Query(ctx context.Context, query string) (string, error) {
	browse := s.BrowseURL
	if browse == "" {
		browse = googleSearch
	}
	if err := s.Opener.Open(ctx, browse+"?"+url.Values{"q": {query}}.Encode()); err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	titles, err := s.titles(ctx, query)
	if err != nil {
		log.Warn("search results unavailable", "query", query, "err", err)
	}
	if len(titles) == 0 {
		return "Here are the search results for " + query + ".", nil
	}
	return fmt.Sprintf("Here is what I found for %s: %s.", query, strings.Join(titles, "; ")), nil
}

func (s Search) titles(ctx context.Context, query string) ([]string, error) {
	base := s.ResultsURL
	if base == "" {
		base = duckDuckGoHTML
	}
	limit := s.Limit
	if limit <= 0 {
		limit = 3
	}

	body, status, err := get(ctx, s.Client, base+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("status %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var titles []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			titles = append(titles, t)
		}
		return len(titles) < limit
	})
	return titles, nil
}
