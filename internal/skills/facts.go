package skills

import (
	"context"
	"fmt"
	"strings"

	"zara/internal/router"
)

// Remember stores "my <key> is <value>" as a fact.
type Remember struct {
	Facts FactStore
}

func (r Remember) Handle(ctx context.Context, req router.Request) (string, error) {
	p := strings.TrimSpace(req.Payload)
	p = strings.TrimPrefix(p, "that ")
	p = strings.TrimPrefix(p, "my ")

	key, value, ok := strings.Cut(p, " is ")
	if !ok {
		key, value, ok = strings.Cut(p, " are ")
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if !ok || key == "" || value == "" {
		return "Tell me what to remember, like: remember that my city is London.", nil
	}

	if err := r.Facts.SetFact(ctx, key, value); err != nil {
		return "", fmt.Errorf("remember %q: %w", key, err)
	}
	return fmt.Sprintf("Okay, I'll remember that your %s is %s.", key, value), nil
}

// Recall answers "what is my <key>".
type Recall struct {
	Facts FactStore
}

func (r Recall) Handle(ctx context.Context, req router.Request) (string, error) {
	key := strings.TrimSpace(req.Payload)
	key = strings.TrimPrefix(key, "my ")
	if key == "" {
		return "What should I recall?", nil
	}

	value, ok, err := r.Facts.Fact(ctx, key)
	if err != nil {
		return "", fmt.Errorf("recall %q: %w", key, err)
	}
	if !ok {
		return "", router.NotFound(fmt.Sprintf("I don't know your %s yet.", key))
	}
	return fmt.Sprintf("Your %s is %s.", key, value), nil
}
