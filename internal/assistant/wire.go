package assistant

import (
	"math/rand/v2"
	"net/http"

	log "log/slog"

	"zara/internal/config"
	"zara/internal/llm"
	"zara/internal/memory"
	"zara/internal/opener"
	"zara/internal/resolver"
	"zara/internal/router"
	"zara/internal/skills"
	"zara/internal/vision"
)

// Deps are the collaborators shared by every entry point.
type Deps struct {
	Store  *memory.Store
	HTTP   *http.Client
	Opener opener.Opener
}

// Wire builds the assistant with every skill bound from cfg. Skills whose
// keys are missing stay routed and answer with an apology.
func Wire(cfg config.Config, d Deps) *Assistant {
	chat := skills.Chat{History: d.Store, Turns: cfg.History, Roll: rand.Float64, WitRate: 0.1}
	if model, err := llm.New(llm.Config{
		APIKey:     cfg.OpenAIKey,
		BaseURL:    cfg.LLMURL,
		Model:      cfg.LLMModel,
		HTTPClient: d.HTTP,
	}); err != nil {
		log.Warn("Language model disabled", "err", err)
	} else {
		chat.LLM = model
	}

	search := skills.Search{Client: d.HTTP, Opener: d.Opener}
	open := skills.Open{Resolver: resolver.New(resolver.Options{}), Opener: d.Opener}
	if cfg.SearchOnMiss {
		open.Search = &search
	}

	sight := skills.Vision{Camera: vision.NewSource(cfg.Camera, d.HTTP, nil)}
	if cfg.VisionURL != "" {
		sight.Detector = vision.HTTPDetector{Client: d.HTTP, URL: cfg.VisionURL}
	}

	h := Handlers{
		AI:       chat,
		Exit:     skills.Goodbye,
		Remember: skills.Remember{Facts: d.Store},
		Recall:   skills.Recall{Facts: d.Store},
		Clock:    skills.Clock{},
		Weather: skills.Weather{
			Client:      d.HTTP,
			APIKey:      cfg.WeatherKey,
			DefaultCity: cfg.DefaultCity,
			Facts:       d.Store,
		},
		News:      skills.News{Client: d.HTTP, APIKey: cfg.NewsKey, Country: cfg.NewsCountry},
		Wikipedia: skills.Wikipedia{Client: d.HTTP},
		YouTube:   skills.YouTube{Client: d.HTTP, Opener: d.Opener},
		Joke:      skills.Joke{},
		Search:    search,
		Open:      open,
		Email: skills.Email{
			Mailer: skills.NewSMTP(skills.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.User,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			}),
			Facts: d.Store,
		},
		Vision: sight,
	}

	return New(Options{
		Router:   router.New(DefaultRules(h), chat),
		Journal:  d.Store,
		WakeWord: cfg.WakeWord,
	})
}
