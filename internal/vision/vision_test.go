package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		labels []string
		want   string
	}{
		{nil, ""},
		{[]string{"person"}, "a person"},
		{[]string{"apple"}, "an apple"},
		{[]string{"Car", "car"}, "2 cars"},
		{[]string{"person", "cup", "cup", "orange"}, "a person, 2 cups and an orange"},
		{[]string{"bus", "bus", ""}, "2 bus"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var dets []Detection
			for _, l := range tt.labels {
				dets = append(dets, Detection{Label: l, Confidence: 0.9})
			}
			assert.Equal(t, tt.want, Describe(dets))
		})
	}
}

func TestHTTPDetector(t *testing.T) {
	var gotBody []byte
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"detections": [
			{"label": "person", "confidence": 0.95, "box": {"x1": 10, "y1": 20, "x2": 110, "y2": 220}},
			{"label": "dog", "confidence": 0.2, "box": {"x1": 0, "y1": 0, "x2": 1, "y2": 1}},
			{"label": "car", "confidence": 0.1}
		]}`)
	}))
	defer srv.Close()

	png := []byte("\x89PNG\r\n\x1a\nrest")
	dets, err := HTTPDetector{URL: srv.URL}.Detect(context.Background(), png)
	require.NoError(t, err)
	assert.Equal(t, []Detection{
		{Label: "person", Confidence: 0.95, Box: Box{X1: 10, Y1: 20, X2: 110, Y2: 220}},
	}, dets)
	assert.Equal(t, png, gotBody)
	assert.Equal(t, "image/png", gotType)
}

func TestHTTPDetectorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			io.WriteString(w, "<html>")
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error": "model loading"}`)
	}))
	defer srv.Close()

	_, err := HTTPDetector{URL: srv.URL}.Detect(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model loading")

	_, err = HTTPDetector{URL: srv.URL + "/broken"}.Detect(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snapshot.jpg" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "jpeg bytes")
	}))
	defer srv.Close()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/run/zara/frame.jpg", []byte("frame"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/run/zara/empty.jpg", nil, 0o644))
	ctx := context.Background()

	assert.Nil(t, NewSource("", nil, fsys))

	img, err := NewSource(srv.URL+"/snapshot.jpg", nil, fsys).Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(img))

	_, err = NewSource(srv.URL+"/missing.jpg", nil, fsys).Capture(ctx)
	assert.Error(t, err)

	img, err = NewSource("/run/zara/frame.jpg", nil, fsys).Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "frame", string(img))

	_, err = NewSource("/run/zara/empty.jpg", nil, fsys).Capture(ctx)
	assert.Error(t, err)
	_, err = NewSource("/run/zara/none.jpg", nil, fsys).Capture(ctx)
	assert.Error(t, err)
}
