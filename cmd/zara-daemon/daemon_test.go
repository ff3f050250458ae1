package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zara/internal/audio"
	"zara/internal/ipc"
	"zara/internal/router"
	"zara/pkg/stt"
)

type fakeTurner struct {
	heard []string
}

func (f *fakeTurner) Turn(_ context.Context, transcript string) router.Reply {
	f.heard = append(f.heard, transcript)
	if transcript == "goodbye" {
		return router.Reply{Category: router.CategoryExit, Text: "Goodbye!", Status: router.StatusOK, Exit: true}
	}
	return router.Reply{Category: router.CategoryFallback, Text: "you said " + transcript, Status: router.StatusOK}
}

type take struct {
	text string
	err  error
}

// fakeMic hands out one take per Listen. Each take's text goes straight
// through fakeSTT.
type fakeMic struct {
	mu    sync.Mutex
	takes []take
	last  take
}

func (m *fakeMic) Listen(ctx context.Context) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.takes) == 0 {
		return nil, context.Canceled
	}
	m.last, m.takes = m.takes[0], m.takes[1:]
	if errors.Is(m.last.err, audio.ErrNothingHeard) {
		return nil, m.last.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeSTT struct{ mic *fakeMic }

func (s fakeSTT) TranscribePCM(context.Context, []float32, stt.Options) (stt.Result, error) {
	if s.mic.last.err != nil {
		return stt.Result{}, s.mic.last.err
	}
	return stt.Result{Text: s.mic.last.text}, nil
}

type fakeSpeaker struct{ said []string }

func (s *fakeSpeaker) Speak(text string) error {
	s.said = append(s.said, text)
	return nil
}

type quietDesktop struct{}

func (quietDesktop) Notify(context.Context, string, string) error { return nil }

func newDaemon(takes ...take) (*daemon, *fakeTurner, *fakeSpeaker, *int) {
	mic := &fakeMic{takes: takes}
	turner := &fakeTurner{}
	voice := &fakeSpeaker{}
	quits := 0
	d := &daemon{
		assistant: turner,
		recorder:  mic,
		stt:       fakeSTT{mic: mic},
		voice:     voice,
		desktop:   quietDesktop{},
		quit:      func() { quits++ },
	}
	return d, turner, voice, &quits
}

func TestTriggerWithoutSpeechIsNotUnderstood(t *testing.T) {
	for _, err := range []error{audio.ErrNothingHeard, stt.ErrNoSpeech} {
		t.Run(err.Error(), func(t *testing.T) {
			d, turner, voice, _ := newDaemon(take{err: err})

			resp := d.control(context.Background(), ipc.ControlMessage{Cmd: ipc.CmdTrigger})
			assert.Equal(t, ipc.Response{
				Text:   router.NotUnderstoodText,
				Status: string(router.StatusNotUnderstood),
			}, resp)
			assert.Equal(t, []string{router.NotUnderstoodText}, voice.said)
			assert.Empty(t, turner.heard)
		})
	}
}

func TestTriggerAnswers(t *testing.T) {
	d, turner, voice, _ := newDaemon(take{text: "hello"})

	resp := d.control(context.Background(), ipc.ControlMessage{Cmd: ipc.CmdTrigger})
	assert.Equal(t, ipc.Response{OK: true, Text: "you said hello", Category: "fallback", Status: "ok"}, resp)
	assert.Equal(t, []string{"hello"}, turner.heard)
	assert.Equal(t, []string{"you said hello"}, voice.said)
}

func TestTriggerRecorderFailure(t *testing.T) {
	d, _, voice, _ := newDaemon(take{err: errors.New("whisper crashed")})

	resp := d.control(context.Background(), ipc.ControlMessage{Cmd: ipc.CmdTrigger})
	assert.False(t, resp.OK)
	assert.Equal(t, "whisper crashed", resp.Error)
	assert.Empty(t, voice.said)
}

func TestControlCommands(t *testing.T) {
	d, turner, _, quits := newDaemon()
	ctx := context.Background()

	assert.Equal(t, ipc.Response{OK: true, Text: "pong"}, d.control(ctx, ipc.ControlMessage{Cmd: ipc.CmdPing}))
	assert.NotEmpty(t, d.control(ctx, ipc.ControlMessage{Cmd: ipc.CmdSay}).Error)
	assert.NotEmpty(t, d.control(ctx, ipc.ControlMessage{Cmd: "dance"}).Error)

	resp := d.control(ctx, ipc.ControlMessage{Cmd: ipc.CmdSay, Text: "hi"})
	assert.True(t, resp.OK)
	assert.Equal(t, []string{"hi"}, turner.heard)

	d.control(ctx, ipc.ControlMessage{Cmd: ipc.CmdQuit})
	assert.Equal(t, 1, *quits)
}

func TestLoopSkipsSilenceAndStopsOnExit(t *testing.T) {
	d, turner, voice, quits := newDaemon(
		take{err: audio.ErrNothingHeard},
		take{err: stt.ErrNoSpeech},
		take{text: "goodbye"},
		take{text: "never heard"},
	)

	d.loop(context.Background())

	require.Equal(t, 1, *quits)
	assert.Equal(t, []string{"goodbye"}, turner.heard)
	assert.Equal(t, []string{"Goodbye!"}, voice.said)
}
