package skills

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"zara/internal/router"
)

const wikipediaAPI = "https://en.wikipedia.org/api/rest_v1"

type Wikipedia struct {
	Client    *http.Client
	BaseURL   string
	Sentences int
}

func (w Wikipedia) Handle(ctx context.Context, req router.Request) (string, error) {
	topic := strings.TrimSpace(strings.TrimPrefix(req.Payload, "for "))
	if topic == "" {
		return "What should I look up?", nil
	}

	base := w.BaseURL
	if base == "" {
		base = wikipediaAPI
	}
	title := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))

	res, status, err := getJSON(ctx, w.Client, base+"/page/summary/"+title+"?redirect=true", nil)
	if err != nil {
		return "", fmt.Errorf("wikipedia: %w", err)
	}
	switch {
	case status == http.StatusNotFound:
		return "", router.NotFound("Sorry, I couldn't find any information on that topic.")
	case status != http.StatusOK:
		return "", fmt.Errorf("wikipedia: status %d", status)
	}

	if res.Get("type").String() == "disambiguation" {
		return "There are multiple entries for this topic. Please be more specific.", nil
	}

	extract := strings.TrimSpace(res.Get("extract").String())
	if extract == "" {
		return "", router.NotFound("Sorry, I couldn't find any information on that topic.")
	}

	n := w.Sentences
	if n <= 0 {
		n = 2
	}
	return firstSentences(extract, n), nil
}

// firstSentences keeps the first n sentences, splitting on ". ", "! " and "? ".
func firstSentences(text string, n int) string {
	count := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				count++
				if count == n {
					return text[:i+1]
				}
			}
		}
	}
	return text
}
