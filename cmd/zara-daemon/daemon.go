package main

import (
	"context"
	"errors"
	"sync"
	"time"

	log "log/slog"

	"zara/internal/audio"
	"zara/internal/ipc"
	"zara/internal/logging"
	"zara/internal/notify"
	"zara/internal/router"
	"zara/pkg/stt"
)

type (
	turner interface {
		Turn(ctx context.Context, transcript string) router.Reply
	}
	microphone interface {
		Listen(ctx context.Context) ([]float32, error)
	}
	transcriber interface {
		TranscribePCM(ctx context.Context, pcm16k []float32, opt stt.Options) (stt.Result, error)
	}
	speaker interface {
		Speak(text string) error
	}
	notifier interface {
		Notify(ctx context.Context, summary, body string) error
	}
)

type daemon struct {
	assistant turner
	recorder  microphone
	stt       transcriber
	language  string
	voice     speaker
	desktop   notifier
	ducker    *audio.Ducker
	earcon    string
	quit      func()

	// the loop and the control socket share one microphone
	mic sync.Mutex
}

func (d *daemon) control(ctx context.Context, msg ipc.ControlMessage) ipc.Response {
	ctx = logging.With(ctx, log.Default().With("source", "socket", "cmd", msg.Cmd))

	switch msg.Cmd {
	case ipc.CmdPing:
		return ipc.Response{OK: true, Text: "pong"}
	case ipc.CmdTrigger:
		reply, err := d.listenOnce(ctx)
		if silent(err) {
			return response(d.notUnderstood(ctx))
		}
		if err != nil {
			return ipc.Response{Error: err.Error()}
		}
		return response(reply)
	case ipc.CmdSay:
		if msg.Text == "" {
			return ipc.Response{Error: "say needs text"}
		}
		return response(d.answer(ctx, msg.Text))
	case ipc.CmdQuit:
		d.quit()
		return ipc.Response{OK: true, Text: "bye"}
	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Response{Error: "unknown command " + msg.Cmd}
	}
}

func response(r router.Reply) ipc.Response {
	return ipc.Response{
		OK:       r.Status == router.StatusOK,
		Text:     r.Text,
		Category: string(r.Category),
		Status:   string(r.Status),
	}
}

// silent reports whether a listen ended without usable speech.
func silent(err error) bool {
	return errors.Is(err, audio.ErrNothingHeard) || errors.Is(err, stt.ErrNoSpeech)
}

// loop listens continuously until ctx ends or the user says goodbye.
func (d *daemon) loop(ctx context.Context) {
	log.Info("Listening continuously")
	ctx = logging.With(ctx, log.Default().With("source", "mic"))
	for ctx.Err() == nil {
		reply, err := d.listenOnce(ctx)
		switch {
		case silent(err):
			continue
		case err != nil:
			if ctx.Err() == nil {
				log.Error("Listen failed", "err", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if reply.Exit {
			d.quit()
			return
		}
	}
}

// listenOnce records one phrase, answers it and speaks the reply.
func (d *daemon) listenOnce(ctx context.Context) (router.Reply, error) {
	d.mic.Lock()
	defer d.mic.Unlock()
	l := logging.From(ctx)

	if d.earcon != "" {
		if err := notify.Beep(d.earcon); err != nil {
			l.Debug("No earcon", "err", err)
		}
	}
	if err := d.desktop.Notify(ctx, "Listening...", ""); err != nil {
		l.Debug("No desktop notification", "err", err)
	}

	var pcm []float32
	err := d.ducked(ctx, func() error {
		var err error
		pcm, err = d.recorder.Listen(ctx)
		return err
	})
	if errors.Is(err, audio.ErrNothingHeard) {
		l.Info("Nothing heard")
		return router.Reply{}, err
	}
	if err != nil {
		return router.Reply{}, err
	}
	l.Info("Recorded", "samples", len(pcm))

	tctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := d.stt.TranscribePCM(tctx, pcm, stt.Options{Language: d.language})
	if errors.Is(err, stt.ErrNoSpeech) {
		l.Info("No speech in recording")
		return router.Reply{}, err
	}
	if err != nil {
		return router.Reply{}, err
	}
	l.Info("Transcribed", "text", res.Text, "lang", res.Language)

	return d.answer(ctx, res.Text), nil
}

func (d *daemon) answer(ctx context.Context, text string) router.Reply {
	reply := d.assistant.Turn(ctx, text)
	d.say(ctx, reply.Text)
	return reply
}

// notUnderstood is the reply to a triggered listen that caught no speech.
func (d *daemon) notUnderstood(ctx context.Context) router.Reply {
	reply := router.Reply{Text: router.NotUnderstoodText, Status: router.StatusNotUnderstood}
	d.say(ctx, reply.Text)
	return reply
}

func (d *daemon) say(ctx context.Context, text string) {
	if err := d.desktop.Notify(ctx, "Zara", text); err != nil {
		log.Debug("No desktop notification", "err", err)
	}
	if err := d.ducked(ctx, func() error { return d.voice.Speak(text) }); err != nil {
		logging.From(ctx).Error("Failed to voice out", "err", err)
	}
}

func (d *daemon) ducked(ctx context.Context, fn func() error) error {
	if d.ducker == nil {
		return fn()
	}
	return d.ducker.While(ctx, fn)
}
