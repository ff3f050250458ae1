//go:build opus

package audioconv

import (
	"fmt"
	"io"

	popus "github.com/pekim/opus"
)

func decodeOggOpus(r io.ReadSeeker) ([]float32, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opus: %w", err)
	}
	defer dec.Destroy()

	ch := max(dec.ChannelCount(), 1)

	// libopusfile decodes at 48 kHz; read about half a second per call
	var (
		pcm48 []float32
		buf   = make([]int16, 48_000*ch/2)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm48 = append(pcm48, int16sToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus: %w", err)
		}
	}

	if len(pcm48) == 0 {
		return nil, fmt.Errorf("opus: empty stream")
	}
	return toMono16k(pcm48, ch, 48000), nil
}
