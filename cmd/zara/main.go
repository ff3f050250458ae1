package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"zara/internal/assistant"
	"zara/internal/config"
	"zara/internal/logging"
	"zara/internal/memory"
	"zara/internal/opener"
	"zara/internal/proxy"
	"zara/internal/shard"
	"zara/pkg/audioconv"
	"zara/pkg/stt"
)

func main() {
	cfg, err := config.Load("zara", os.Args[1:], os.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Setup(cfg.LogLevel, os.Stdout)
	log.Info("Starting Zara shard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := proxy.NewClient(cfg.Proxy, 0)
	if err != nil {
		log.Error("Failed to set up proxy", "proxy", cfg.Proxy, "err", err)
		os.Exit(1)
	}

	store, err := memory.Open(ctx, cfg.DB)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.DB, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	asst := assistant.Wire(cfg, assistant.Deps{
		Store:  store,
		HTTP:   httpClient,
		Opener: opener.NewSystem(),
	})

	s := &shard.Shard{Name: "zara", Assistant: asst}

	// Audio support is optional on the bus; text commands work without a model.
	if whisper, err := stt.NewTranscriber(cfg.WhisperModel); err != nil {
		log.Warn("Bus audio disabled", "model", cfg.WhisperModel, "err", err)
	} else {
		defer whisper.Close()
		s.Transcribe = func(ctx context.Context, clip []byte, format string) (string, error) {
			pcm, err := audioconv.Decode(clip, format, audioconv.Options{
				MaxSamples: int(cfg.PhraseLimit.Seconds() * audioconv.TargetRate),
			})
			if err != nil {
				return "", err
			}
			res, err := whisper.TranscribePCM(ctx, pcm, stt.Options{Language: cfg.Language})
			if err != nil {
				return "", err
			}
			return res.Text, nil
		}
	}

	dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	bus, err := shard.Dial(dctx, cfg.BusURL)
	cancel()
	if err != nil {
		log.Error("Failed to connect to bus", "url", cfg.BusURL, "err", err)
		os.Exit(1)
	}
	s.Bus = bus

	if err := s.Run(ctx); err != nil {
		log.Error("Shard stopped", "err", err)
		os.Exit(1)
	}
}
