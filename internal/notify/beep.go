// Package notify tells the user the assistant is listening: an earcon on the
// speakers and a desktop notification.
package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

// Beep plays the mp3 at path and returns when it has finished.
func Beep(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open earcon: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode earcon: %w", err)
	}
	defer streamer.Close()

	speakerOnce.Do(func() {
		speakerRate = format.SampleRate
		speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("init speaker: %w", speakerErr)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != speakerRate {
		s = beep.Resample(4, format.SampleRate, speakerRate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
