package skills

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	log "log/slog"

	"zara/internal/opener"
	"zara/internal/router"
)

const youtubeURL = "https://www.youtube.com"

// YouTube plays the first result for the spoken query. When the results page
// cannot be read it opens the results page itself.
type YouTube struct {
	Client  *http.Client
	Opener  opener.Opener
	BaseURL string
}

var videoIDRe = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

func (y YouTube) Handle(ctx context.Context, req router.Request) (string, error) {
	query := strings.TrimSpace(req.Payload)
	query = strings.TrimSuffix(query, " on youtube")
	query = strings.TrimSuffix(query, " in youtube")
	if query == "" || query == "on youtube" {
		return "What should I play?", nil
	}

	base := y.BaseURL
	if base == "" {
		base = youtubeURL
	}
	results := base + "/results?" + url.Values{"search_query": {query}}.Encode()

	target := results
	if body, status, err := get(ctx, y.Client, results, nil); err != nil {
		log.Warn("youtube lookup failed, opening results page", "err", err)
	} else if status == http.StatusOK {
		if m := videoIDRe.FindSubmatch(body); m != nil {
			target = base + "/watch?v=" + string(m[1])
		}
	}

	if err := y.Opener.Open(ctx, target); err != nil {
		return "", fmt.Errorf("youtube: %w", err)
	}
	return "Playing " + query, nil
}
