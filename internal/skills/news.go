package skills

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"zara/internal/router"
)

const newsAPI = "https://newsapi.org"

// News reads the top headlines from newsapi.org.
type News struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
	Country string
	Limit   int
}

func (n News) Handle(ctx context.Context, _ router.Request) (string, error) {
	if n.APIKey == "" {
		return "", fmt.Errorf("news: %w", ErrNotConfigured)
	}

	base := n.BaseURL
	if base == "" {
		base = newsAPI
	}
	country := n.Country
	if country == "" {
		country = "us"
	}
	limit := n.Limit
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{"country": {country}, "pageSize": {fmt.Sprint(limit)}}
	res, status, err := getJSON(ctx, n.Client, base+"/v2/top-headlines?"+q.Encode(), http.Header{
		"X-Api-Key": {n.APIKey},
	})
	if err != nil {
		return "", fmt.Errorf("news: %w", err)
	}
	if status != http.StatusOK || res.Get("status").String() != "ok" {
		return "", fmt.Errorf("news: status %d: %s", status, res.Get("message").String())
	}

	var headlines []string
	for _, t := range res.Get("articles.#.title").Array() {
		if h := strings.TrimSpace(t.String()); h != "" {
			headlines = append(headlines, h)
		}
		if len(headlines) == limit {
			break
		}
	}
	if len(headlines) == 0 {
		return "There are no headlines right now.", nil
	}

	var sb strings.Builder
	sb.WriteString("Here are the top news headlines.")
	for i, h := range headlines {
		fmt.Fprintf(&sb, " %d. %s.", i+1, strings.TrimSuffix(h, "."))
	}
	return sb.String(), nil
}
