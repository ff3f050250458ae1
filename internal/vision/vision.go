// Package vision asks an object-detection service what is in front of the
// camera and phrases the answer.
package vision

import (
	"context"
	"fmt"
	"strings"
)

// MinConfidence is the score a detection must exceed to be reported.
const MinConfidence = 0.2

type Box struct {
	X1, Y1, X2, Y2 int
}

type Detection struct {
	Label      string
	Confidence float64
	Box        Box
}

// Detector finds labelled objects in an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// Source produces one encoded still image.
type Source interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Describe counts detections per label, in order of first appearance:
// "a person, 2 cups and an apple".
func Describe(dets []Detection) string {
	var order []string
	counts := make(map[string]int)
	for _, d := range dets {
		label := strings.ToLower(strings.TrimSpace(d.Label))
		if label == "" {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	parts := make([]string, 0, len(order))
	for _, label := range order {
		parts = append(parts, count(label, counts[label]))
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func count(label string, n int) string {
	if n > 1 {
		if !strings.HasSuffix(label, "s") {
			label += "s"
		}
		return fmt.Sprintf("%d %s", n, label)
	}
	if strings.ContainsRune("aeiou", rune(label[0])) {
		return "an " + label
	}
	return "a " + label
}
