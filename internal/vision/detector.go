package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// HTTPDetector posts the image to an inference server and reads back
//
//	{"detections": [{"label": "person", "confidence": 0.93,
//	                 "box": {"x1": 10, "y1": 20, "x2": 110, "y2": 220}}]}
//
// Detections at or below MinConfidence are dropped.
type HTTPDetector struct {
	Client *http.Client
	URL    string
}

func (d HTTPDetector) Detect(ctx context.Context, image []byte) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))

	resp, err := client(d.Client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detect: status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error").String())
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("detect: invalid json")
	}

	var out []Detection
	for _, r := range gjson.GetBytes(body, "detections").Array() {
		conf := r.Get("confidence").Float()
		if conf <= MinConfidence {
			continue
		}
		out = append(out, Detection{
			Label:      r.Get("label").String(),
			Confidence: conf,
			Box: Box{
				X1: int(r.Get("box.x1").Int()),
				Y1: int(r.Get("box.y1").Int()),
				X2: int(r.Get("box.x2").Int()),
				Y2: int(r.Get("box.y2").Int()),
			},
		})
	}
	return out, nil
}
