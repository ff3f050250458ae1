// Package stt transcribes 16 kHz mono speech with whisper.cpp.
package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// ErrNoSpeech means the audio decoded to nothing but silence markers.
var ErrNoSpeech = errors.New("no speech recognised")

type Options struct {
	Language      string // "auto", "en", ...
	TranslateToEn bool
	Threads       int // <=0 => NumCPU()
	InitialPrompt string
	BeamSize      int // 0 = greedy
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string
}

type Transcriber struct {
	model whisper.Model

	// a whisper model runs one context at a time
	mu sync.Mutex
}

func NewTranscriber(modelPath string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	return &Transcriber{model: m}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// TranscribePCM transcribes mono 16 kHz samples in [-1, 1]. It returns
// ErrNoSpeech when whisper hears only silence.
func (t *Transcriber) TranscribePCM(ctx context.Context, pcm16k []float32, opt Options) (Result, error) {
	if t.model == nil {
		return Result{}, errors.New("nil model")
	}
	if len(pcm16k) == 0 {
		return Result{}, ErrNoSpeech
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	if opt.Language == "" {
		opt.Language = "auto"
	}
	if err := wctx.SetLanguage(opt.Language); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(opt.TranslateToEn)

	threads := opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if opt.BeamSize > 0 {
		wctx.SetBeamSize(opt.BeamSize)
	}
	if opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(opt.InitialPrompt)
	}

	if err := wctx.Process(pcm16k, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var (
		segs  []Segment
		parts []string
	)
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}

		text := Clean(s.Text)
		if text == "" {
			continue
		}
		segs = append(segs, Segment{
			Text:     text,
			StartSec: s.Start.Seconds(),
			EndSec:   s.End.Seconds(),
		})
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return Result{}, ErrNoSpeech
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = wctx.Language()
	}

	return Result{
		Text:     strings.Join(parts, " "),
		Segments: segs,
		Language: lang,
	}, nil
}

// markerRe matches whisper's non-speech annotations such as [BLANK_AUDIO],
// (music) or *coughs*.
var markerRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// Clean drops non-speech markers and collapses whitespace.
func Clean(text string) string {
	text = markerRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
