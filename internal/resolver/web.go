package resolver

import (
	"regexp"
	"strings"
)

// KnownSites maps spoken site names (spaces removed) to canonical URLs.
var KnownSites = map[string]string{
	"youtube":       "https://youtube.com",
	"youtubemusic":  "https://music.youtube.com",
	"google":        "https://google.com",
	"gmail":         "https://mail.google.com",
	"googledrive":   "https://drive.google.com",
	"maps":          "https://maps.google.com",
	"googlemaps":    "https://maps.google.com",
	"github":        "https://github.com",
	"stackoverflow": "https://stackoverflow.com",
	"wikipedia":     "https://wikipedia.org",
	"facebook":      "https://facebook.com",
	"instagram":     "https://instagram.com",
	"twitter":       "https://x.com",
	"linkedin":      "https://linkedin.com",
	"reddit":        "https://reddit.com",
	"netflix":       "https://netflix.com",
	"amazon":        "https://amazon.com",
	"spotify":       "https://open.spotify.com",
	"whatsapp":      "https://web.whatsapp.com",
	"chatgpt":       "https://chatgpt.com",
}

var domainRe = regexp.MustCompile(`(?i)[a-z0-9-]\.(com|org|net|io|dev|edu|gov|co|in|ai|app|me|uk|us|info|tv|ly|gg|xyz)(\b|/|$)`)

func looksLikeURL(phrase string) bool {
	lower := strings.ToLower(phrase)
	if strings.Contains(lower, "://") || strings.Contains(lower, "www.") {
		return true
	}
	return domainRe.MatchString(lower)
}

func normalizeURL(phrase string) string {
	u := strings.Join(strings.Fields(phrase), "")
	lower := strings.ToLower(u)
	if strings.Contains(lower, "://") {
		return u
	}
	if !strings.Contains(u, ".") {
		u += ".com"
	}
	return "https://" + u
}

func bareDomain(phrase string) string {
	return "https://" + strings.ToLower(strings.Join(strings.Fields(phrase), "")) + ".com"
}
