package skills

import (
	"context"
	"fmt"

	"zara/internal/router"
	"zara/internal/vision"
)

// Vision captures one frame and says what the detector found in it.
type Vision struct {
	Camera   vision.Source
	Detector vision.Detector
}

func (v Vision) Handle(ctx context.Context, _ router.Request) (string, error) {
	if v.Camera == nil || v.Detector == nil {
		return "", fmt.Errorf("vision: %w", ErrNotConfigured)
	}

	img, err := v.Camera.Capture(ctx)
	if err != nil {
		return "", fmt.Errorf("vision: %w", err)
	}
	dets, err := v.Detector.Detect(ctx, img)
	if err != nil {
		return "", fmt.Errorf("vision: %w", err)
	}

	seen := vision.Describe(dets)
	if seen == "" {
		return "I don't see anything I recognise.", nil
	}
	return "I can see " + seen + ".", nil
}
