// Package audio captures speech from the default microphone and lowers other
// applications' volume while the assistant is busy.
package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

type Recorder struct {
	opt SegmentOptions
}

func NewRecorder(opt SegmentOptions) *Recorder {
	return &Recorder{opt: opt.withDefaults()}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Listen waits up to the listen timeout for speech and records one phrase of
// 16 kHz mono samples. It returns ErrNothingHeard when nobody spoke.
func (r *Recorder) Listen(ctx context.Context) ([]float32, error) {
	buf := make([]float32, r.opt.FrameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.opt.SampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	seg := NewSegmenter(r.opt)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		if seg.Feed(buf) {
			break
		}
	}
	return seg.Result()
}
