package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"zara/internal/assistant"
	"zara/internal/audio"
	"zara/internal/config"
	"zara/internal/ipc"
	"zara/internal/logging"
	"zara/internal/memory"
	"zara/internal/notify"
	"zara/internal/opener"
	"zara/internal/proxy"
	"zara/internal/tts"
	"zara/pkg/stt"
)

func main() {
	cfg, err := config.Load("zara-daemon", os.Args[1:], os.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Setup(cfg.LogLevel, os.Stdout)
	log.Info("Booting up")

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

	if cfg.Backups != "" {
		if path, err := store.Backup(ctx, cfg.Backups, cfg.KeepBackups); err != nil {
			log.Warn("Backup failed", "dir", cfg.Backups, "err", err)
		} else {
			log.Debug("Backed up database", "path", path)
		}
	}
	log.Debug("Loaded memory", "session", store.Session())

	asst := assistant.Wire(cfg, assistant.Deps{
		Store:  store,
		HTTP:   httpClient,
		Opener: opener.NewSystem(),
	})

	rec := audio.NewRecorder(audio.SegmentOptions{
		ListenTimeout: cfg.ListenTimeout,
		PhraseLimit:   cfg.PhraseLimit,
	})
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()
	log.Debug("Loaded recorder")

	whisper, err := stt.NewTranscriber(cfg.WhisperModel)
	if err != nil {
		log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
		os.Exit(1)
	}
	defer whisper.Close()
	log.Debug("Loaded whisper")

	d := &daemon{
		assistant: asst,
		recorder:  rec,
		stt:       whisper,
		language:  cfg.Language,
		voice:     tts.Voice{Language: cfg.Voice},
		desktop:   notify.NewDesktop("zara"),
		earcon:    "beep.mp3",
		quit:      stop,
	}
	if cfg.Duck {
		d.ducker = audio.NewDucker([]string{"zara", "zara-daemon"}, 10)
	}

	srv, err := ipc.Listen(cfg.Socket, d.control)
	if err != nil {
		log.Error("Failed ipc server", "socket", cfg.Socket, "err", err)
		os.Exit(1)
	}
	defer srv.Close()

	log.Info("Boot up - successful", "socket", srv.Path(), "loop", cfg.Loop)

	if cfg.Loop {
		go d.loop(ctx)
	}

	if err := srv.Serve(ctx); err != nil {
		log.Error("Control server stopped", "err", err)
	}
	log.Info("Shutting down")
}
