// Package config gathers settings from command-line flags, the environment
// and an optional .env file. Flags win over the environment, which wins over
// defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"
)

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Config struct {
	EnvFile  string
	LogLevel string
	Proxy    string

	DB          string
	Backups     string
	KeepBackups int

	WhisperModel  string
	Language      string
	WakeWord      string
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
	Voice         string
	Loop          bool
	Duck          bool

	OpenAIKey string
	LLMURL    string
	LLMModel  string
	History   int

	WeatherKey   string
	NewsKey      string
	NewsCountry  string
	DefaultCity  string
	SearchOnMiss bool
	SMTP         SMTP

	// Camera is a snapshot URL or a frame file kept fresh by a capture tool.
	Camera    string
	VisionURL string

	Socket string
	BusURL string
}

// Default returns the settings used when neither a flag nor the environment
// says otherwise.
func Default() Config {
	return Config{
		EnvFile:       ".env",
		LogLevel:      "info",
		DB:            "data/zara.db",
		Backups:       "data/backups",
		KeepBackups:   5,
		WhisperModel:  "third_party/whisper.cpp/models/ggml-base.en.bin",
		Language:      "en",
		WakeWord:      "zara",
		ListenTimeout: 5 * time.Second,
		PhraseLimit:   10 * time.Second,
		Voice:         "en",
		Duck:          true,
		History:       5,
		NewsCountry:   "us",
		DefaultCity:   "London",
		SMTP:          SMTP{Port: 587},
		Socket:        "/tmp/zara.sock",
		BusURL:        "ws://localhost:8092/ws",
	}
}

// Load parses args (without the program name). The .env file named by --env
// is loaded into the process environment before environment lookups; a
// missing file is not an error.
func Load(name string, args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := cli.NewFlagSet(name, cli.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	fs.StringVarP(&cfg.EnvFile, "env", "e", cfg.EnvFile, "Env file path")
	fs.StringVarP(&cfg.LogLevel, "log", "l", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVarP(&cfg.Proxy, "proxy", "p", cfg.Proxy, "SOCKS5 proxy address for outbound HTTP")
	fs.StringVar(&cfg.DB, "db", cfg.DB, "SQLite database path")
	fs.StringVar(&cfg.Backups, "backups", cfg.Backups, "Backup directory, empty to disable")
	fs.StringVarP(&cfg.WhisperModel, "model", "m", cfg.WhisperModel, "Whisper model path")
	fs.StringVar(&cfg.LLMURL, "llm-url", cfg.LLMURL, "OpenAI-compatible endpoint")
	fs.StringVarP(&cfg.WakeWord, "wake-word", "w", cfg.WakeWord, "Wake word stripped from utterances")
	fs.StringVarP(&cfg.Socket, "socket", "s", cfg.Socket, "Control socket path")
	fs.DurationVar(&cfg.ListenTimeout, "listen-timeout", cfg.ListenTimeout, "How long to wait for speech to start")
	fs.DurationVar(&cfg.PhraseLimit, "phrase-limit", cfg.PhraseLimit, "Longest phrase recorded")
	fs.IntVar(&cfg.History, "history", cfg.History, "Conversation turns sent to the language model")
	fs.BoolVar(&cfg.SearchOnMiss, "search-on-miss", cfg.SearchOnMiss, "Search the web when a file is not found")
	fs.StringVar(&cfg.Voice, "voice", cfg.Voice, "espeak-ng voice")
	fs.StringVar(&cfg.BusURL, "bus", cfg.BusURL, "Bus websocket URL")
	fs.StringVar(&cfg.Camera, "camera", cfg.Camera, "Camera snapshot URL or frame file")
	fs.StringVar(&cfg.VisionURL, "vision-url", cfg.VisionURL, "Object-detection endpoint")
	fs.BoolVar(&cfg.Loop, "loop", cfg.Loop, "Listen continuously instead of waiting for triggers")
	fs.BoolVar(&cfg.Duck, "duck", cfg.Duck, "Lower other audio streams while listening and speaking")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", cfg.EnvFile, err)
	}

	env := envReader{fs: fs}
	env.str(&cfg.DB, "db", "ZARA_DB")
	env.str(&cfg.Backups, "backups", "ZARA_BACKUPS")
	env.str(&cfg.WhisperModel, "model", "WHISPER_MODEL")
	env.str(&cfg.LLMURL, "llm-url", "LLM_BASE_URL")
	env.str(&cfg.WakeWord, "wake-word", "WAKE_WORD")
	env.str(&cfg.Socket, "socket", "ZARA_SOCKET")
	env.str(&cfg.BusURL, "bus", "BUS_URL")
	env.str(&cfg.Proxy, "proxy", "ZARA_PROXY")
	env.str(&cfg.Camera, "camera", "ZARA_CAMERA")
	env.str(&cfg.VisionURL, "vision-url", "VISION_URL")

	env.str(&cfg.OpenAIKey, "", "OPENAI_API_KEY")
	env.str(&cfg.LLMModel, "", "LLM_MODEL")
	env.str(&cfg.WeatherKey, "", "WEATHER_API_KEY")
	env.str(&cfg.NewsKey, "", "NEWS_API_KEY")
	env.str(&cfg.NewsCountry, "", "NEWS_COUNTRY")
	env.str(&cfg.DefaultCity, "", "DEFAULT_CITY")
	env.str(&cfg.Language, "", "WHISPER_LANGUAGE")
	env.str(&cfg.SMTP.Host, "", "SMTP_HOST")
	env.integer(&cfg.SMTP.Port, "", "SMTP_PORT")
	env.str(&cfg.SMTP.User, "", "SMTP_USER")
	env.str(&cfg.SMTP.Password, "", "SMTP_PASSWORD")
	env.str(&cfg.SMTP.From, "", "SMTP_FROM")
	if env.err != nil {
		return Config{}, env.err
	}

	if cfg.History < 0 {
		return Config{}, fmt.Errorf("--history must not be negative, got %d", cfg.History)
	}
	if cfg.PhraseLimit <= 0 || cfg.ListenTimeout <= 0 {
		return Config{}, errors.New("--listen-timeout and --phrase-limit must be positive")
	}
	return cfg, nil
}

// envReader fills a field from the environment unless its flag was given.
type envReader struct {
	fs  *cli.FlagSet
	err error
}

func (e *envReader) lookup(flag, key string) (string, bool) {
	if flag != "" && e.fs.Changed(flag) {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(dst *string, flag, key string) {
	if v, ok := e.lookup(flag, key); ok {
		*dst = v
	}
}

func (e *envReader) integer(dst *int, flag, key string) {
	v, ok := e.lookup(flag, key)
	if !ok || e.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = n
}
