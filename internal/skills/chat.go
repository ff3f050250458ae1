package skills

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	log "log/slog"

	"zara/internal/llm"
	"zara/internal/memory"
	"zara/internal/router"
)

type Asker interface {
	Ask(ctx context.Context, history []llm.Message, prompt string) (string, error)
}

type History interface {
	Recent(ctx context.Context, limit int) ([]memory.Turn, error)
}

var (
	wittyPrefixes = []string{
		"Well, let me think. ",
		"Good question! ",
		"Ah, I know this one. ",
	}
	wittySuffixes = []string{
		" Anything else I can help with?",
		" Hope that helps!",
		" I'm always learning, so ask me anything.",
	}
)

// Chat answers free-form questions with the language model, using the most
// recent conversation turns as context.
type Chat struct {
	LLM     Asker
	History History
	Turns   int
	// Roll returns a float in [0, 1). Below WitRate the answer gets a playful
	// prefix or postscript.
	Roll    func() float64
	WitRate float64
}

func (c Chat) Handle(ctx context.Context, req router.Request) (string, error) {
	if c.LLM == nil {
		return "", fmt.Errorf("chat: %w", ErrNotConfigured)
	}

	prompt := strings.TrimSpace(req.Payload)
	if prompt == "" {
		prompt = req.Command
	}

	answer, err := c.LLM.Ask(ctx, c.history(ctx), prompt)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return c.wit(answer), nil
}

func (c Chat) history(ctx context.Context) []llm.Message {
	if c.History == nil {
		return nil
	}
	n := c.Turns
	if n <= 0 {
		n = 5
	}

	turns, err := c.History.Recent(ctx, n)
	if err != nil {
		log.Warn("chat history unavailable", "err", err)
		return nil
	}

	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == memory.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return msgs
}

func (c Chat) wit(answer string) string {
	if c.Roll == nil || c.Roll() >= c.WitRate {
		return answer
	}
	if rand.IntN(2) == 0 {
		return wittyPrefixes[rand.IntN(len(wittyPrefixes))] + answer
	}
	return answer + wittySuffixes[rand.IntN(len(wittySuffixes))]
}
