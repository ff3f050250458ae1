// Package llm talks to an OpenAI-compatible chat completion backend. Pointing
// the base URL at a local Ollama works the same way.
package llm

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

const systemPrompt = `
You are Zara, a personal voice assistant.
Your answers are spoken aloud by a speech synthesiser, so:
1. Answer in one to three short sentences.
2. Do NOT use markdown, lists, code blocks or emoji.
3. Spell out symbols that do not read well aloud.
4. If you do not know, say so briefly.
`

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type Client struct {
	api   openai.Client
	model string
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("llm: api key or base url required")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.ChatModelGPT5Nano)
	}

	opts := []option.RequestOption{option.WithMaxRetries(1)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		// local backends ignore the key but the SDK insists on one
		opts = append(opts, option.WithAPIKey("local"))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: cfg.Model,
	}, nil
}

// Ask sends prompt with history (oldest first) and returns the reply text.
func (c *Client) Ask(ctx context.Context, history []Message, prompt string) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty message content")
	}

	log.Debug("Completion", "model", c.model, "chars", len(content))

	return content, nil
}
