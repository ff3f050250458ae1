package skills

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"zara/internal/router"
)

const weatherAPI = "https://api.weatherapi.com"

// Weather reads current conditions from weatherapi.com.
type Weather struct {
	Client      *http.Client
	APIKey      string
	BaseURL     string
	DefaultCity string
	// Facts supplies the user's "city" when the command names none.
	Facts FactStore
}

var cityRe = regexp.MustCompile(`\bweather (?:like )?(?:in|for|at|of) (.+)$`)

func (w Weather) Handle(ctx context.Context, req router.Request) (string, error) {
	if w.APIKey == "" {
		return "", fmt.Errorf("weather: %w", ErrNotConfigured)
	}

	city := w.city(ctx, req.Command)
	if city == "" {
		return "Which city should I check the weather for?", nil
	}

	base := w.BaseURL
	if base == "" {
		base = weatherAPI
	}
	q := url.Values{"key": {w.APIKey}, "q": {city}, "aqi": {"no"}}

	res, status, err := getJSON(ctx, w.Client, base+"/v1/current.json?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("weather: %w", err)
	}
	if status != http.StatusOK {
		// 1006: no matching location
		if res.Get("error.code").Int() == 1006 {
			return "", router.NotFound(fmt.Sprintf("I couldn't find a place called %s.", city))
		}
		return "", fmt.Errorf("weather: status %d: %s", status, res.Get("error.message").String())
	}

	location := res.Get("location.name").String()
	temp := res.Get("current.temp_c").Float()
	cond := strings.ToLower(res.Get("current.condition.text").String())

	text := fmt.Sprintf("The temperature in %s is %s degrees Celsius", location, trimFloat(temp))
	if cond != "" {
		text += " and it is " + cond
	}
	return text + ".", nil
}

func (w Weather) city(ctx context.Context, cmd string) string {
	if m := cityRe.FindStringSubmatch(cmd); m != nil {
		c := strings.TrimSpace(m[1])
		c = strings.TrimSuffix(c, " today")
		c = strings.TrimSuffix(c, " right now")
		if c != "" {
			return c
		}
	}
	if w.Facts != nil {
		if c, ok, err := w.Facts.Fact(ctx, "city"); err == nil && ok && c != "" {
			return c
		}
	}
	return w.DefaultCity
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
