package audio

import (
	"errors"
	"math"
	"time"
)

// ErrNothingHeard means the listen timeout passed without any speech.
var ErrNothingHeard = errors.New("nothing heard")

type SegmentOptions struct {
	SampleRate int
	FrameSize  int
	// Threshold is the frame RMS above which a frame counts as speech.
	Threshold float64
	// ListenTimeout bounds the wait for speech to start.
	ListenTimeout time.Duration
	// PhraseLimit bounds the length of the captured phrase.
	PhraseLimit time.Duration
	// Trailing is the silence that ends a phrase.
	Trailing time.Duration
}

func (o SegmentOptions) withDefaults() SegmentOptions {
	if o.SampleRate <= 0 {
		o.SampleRate = 16000
	}
	if o.FrameSize <= 0 {
		o.FrameSize = o.SampleRate / 50 // 20ms
	}
	if o.Threshold <= 0 {
		o.Threshold = 0.015
	}
	if o.ListenTimeout <= 0 {
		o.ListenTimeout = 5 * time.Second
	}
	if o.PhraseLimit <= 0 {
		o.PhraseLimit = 10 * time.Second
	}
	if o.Trailing <= 0 {
		o.Trailing = 600 * time.Millisecond
	}
	return o
}

func (o SegmentOptions) frames(d time.Duration) int {
	n := int(int64(d) * int64(o.SampleRate) / (int64(o.FrameSize) * int64(time.Second)))
	if n < 1 {
		n = 1
	}
	return n
}

// Segmenter cuts one phrase out of a stream of fixed-size frames.
type Segmenter struct {
	opt SegmentOptions

	waitFrames     int
	maxFrames      int
	trailingFrames int

	waited   int
	captured int
	silent   int
	speaking bool
	done     bool
	out      []float32
}

func NewSegmenter(opt SegmentOptions) *Segmenter {
	opt = opt.withDefaults()
	return &Segmenter{
		opt:            opt,
		waitFrames:     opt.frames(opt.ListenTimeout),
		maxFrames:      opt.frames(opt.PhraseLimit),
		trailingFrames: opt.frames(opt.Trailing),
		out:            make([]float32, 0, opt.SampleRate*3),
	}
}

// Feed consumes one frame and reports whether the phrase is complete.
func (s *Segmenter) Feed(frame []float32) bool {
	if s.done {
		return true
	}

	loud := frameRMS(frame) > s.opt.Threshold

	if !s.speaking {
		if !loud {
			s.waited++
			if s.waited >= s.waitFrames {
				s.done = true
			}
			return s.done
		}
		s.speaking = true
	}

	s.out = append(s.out, frame...)
	s.captured++

	if loud {
		s.silent = 0
	} else {
		s.silent++
	}

	if s.silent >= s.trailingFrames || s.captured >= s.maxFrames {
		s.done = true
	}
	return s.done
}

// Result returns the captured samples, or ErrNothingHeard when speech never
// started.
func (s *Segmenter) Result() ([]float32, error) {
	if !s.speaking {
		return nil, ErrNothingHeard
	}
	return s.out, nil
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
