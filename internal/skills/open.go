package skills

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"zara/internal/opener"
	"zara/internal/resolver"
	"zara/internal/router"
)

// Open resolves a spoken phrase to a file or website and opens it.
type Open struct {
	Resolver Resolver
	Opener   opener.Opener
	// Search, when set, turns a file miss into a web search.
	Search *Search
}

func (o Open) Handle(ctx context.Context, req router.Request) (string, error) {
	phrase := strings.TrimSpace(req.Payload)
	if phrase == "" {
		return "What should I open?", nil
	}

	target, err := o.Resolver.Resolve(phrase)
	if errors.Is(err, resolver.ErrNotFound) {
		if o.Search != nil {
			return o.Search.Query(ctx, phrase)
		}
		return "", router.NotFound(fmt.Sprintf("I couldn't find a file called %s.", phrase))
	}
	if err != nil {
		return "", fmt.Errorf("open %q: %w", phrase, err)
	}

	switch target.Kind {
	case resolver.KindURL:
		if err := o.Opener.Open(ctx, target.URL); err != nil {
			return "", fmt.Errorf("open website: %w", err)
		}
		return "Opening website " + target.URL, nil
	default:
		if err := o.Opener.Open(ctx, target.Path); err != nil {
			return "", fmt.Errorf("open file: %w", err)
		}
		return "Opening file " + filepath.Base(target.Path), nil
	}
}
