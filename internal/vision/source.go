package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// File reads the latest frame a capture tool keeps writing to Path.
type File struct {
	Fs   afero.Fs
	Path string
}

func (f File) Capture(context.Context) ([]byte, error) {
	fsys := f.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	img, err := afero.ReadFile(fsys, f.Path)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("read frame: %s is empty", f.Path)
	}
	return img, nil
}

// Snapshot fetches a still from a camera's HTTP snapshot endpoint.
type Snapshot struct {
	Client *http.Client
	URL    string
}

func (s Snapshot) Capture(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := client(s.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot: status %d", resp.StatusCode)
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImage))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return img, nil
}

// NewSource picks a Snapshot for http(s) URLs and a File otherwise. An empty
// camera gives nil.
func NewSource(camera string, c *http.Client, fsys afero.Fs) Source {
	switch {
	case camera == "":
		return nil
	case strings.HasPrefix(camera, "http://"), strings.HasPrefix(camera, "https://"):
		return Snapshot{Client: c, URL: camera}
	default:
		return File{Fs: fsys, Path: camera}
	}
}

const maxImage = 16 << 20

func client(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 30 * time.Second}
}
