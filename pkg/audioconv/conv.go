// Package audioconv decodes compressed speech clips into the 16 kHz mono
// float32 samples whisper expects.
package audioconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	// MaxSamples truncates the output; 0 keeps everything.
	MaxSamples int
}

type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
	FormatUnknown Format = ""
)

// Sniff guesses the container from the first bytes, falling back to the
// file extension in hint.
func Sniff(head []byte, hint string) Format {
	switch {
	case bytes.HasPrefix(head, []byte("RIFF")):
		return FormatWAV
	case bytes.HasPrefix(head, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(head, []byte("ID3")),
		len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3
	}

	ext := filepath.Ext(hint)
	if ext == "" {
		ext = hint
	}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav", "wave":
		return FormatWAV
	case "mp3":
		return FormatMP3
	case "ogg", "oga", "opus":
		return FormatOgg
	}
	return FormatUnknown
}

// Decode reads a whole clip and converts it. hint is a file name or
// extension used when the content does not identify itself.
func Decode(data []byte, hint string, opt Options) ([]float32, error) {
	var (
		x   []float32
		err error
	)
	switch f := Sniff(data, hint); f {
	case FormatWAV:
		x, err = decodeWAV(bytes.NewReader(data))
	case FormatMP3:
		x, err = decodeMP3(bytes.NewReader(data))
	case FormatOgg:
		x, err = decodeOggVorbis(bytes.NewReader(data))
		if err != nil {
			var opusErr error
			if x, opusErr = decodeOggOpus(bytes.NewReader(data)); opusErr != nil {
				err = fmt.Errorf("ogg: vorbis: %v; opus: %w", err, opusErr)
			} else {
				err = nil
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, hint)
	}
	if err != nil {
		return nil, err
	}

	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x, nil
}

func DecodeFile(path string, opt Options) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path, opt)
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, errors.New("empty wav")
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}

	ch, sr := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			sr = pb.Format.SampleRate
		}
	}
	return toMono16k(intsToFloat32(pb.Data, bd), ch, sr), nil
}

func decodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	ints := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(ints)*2]), binary.LittleEndian, ints); err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}
	// go-mp3 always produces interleaved stereo
	return toMono16k(int16sToFloat32(ints), 2, sr), nil
}

func decodeOggVorbis(r io.Reader) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}
	return toMono16k(pcm, format.Channels, format.SampleRate), nil
}

func toMono16k(x []float32, channels, rate int) []float32 {
	x = downmixInterleaved(x, channels)
	return resampleLinear(x, rate, TargetRate)
}

func intsToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		out[i] = float32(clamp(float64(v)*scale, -1.0, 1.0))
	}
	return out
}

func int16sToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func downmixInterleaved(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resampleLinear(in []float32, inSR, outSR int) []float32 {
	if inSR == outSR || len(in) == 0 {
		return in
	}
	ratio := float64(outSR) / float64(inSR)
	outN := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, outN)
	for i := 0; i < outN; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		switch {
		case i0 >= len(in):
			out[i] = in[len(in)-1]
		case i1 >= len(in):
			out[i] = in[i0]
		default:
			a := float32(src - float64(i0))
			out[i] = in[i0]*(1-a) + in[i1]*a
		}
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
