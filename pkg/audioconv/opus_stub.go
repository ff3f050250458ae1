//go:build !opus

package audioconv

import (
	"fmt"
	"io"
)

func decodeOggOpus(io.ReadSeeker) ([]float32, error) {
	return nil, fmt.Errorf("%w: ogg/opus needs a build with -tags opus", ErrUnsupported)
}
