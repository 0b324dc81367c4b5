package imagenorm

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient(&http.Client{Transport: rt})
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()

	require.True(t, strings.HasPrefix(dataURL, pngDataPrefix), "unexpected prefix: %.40s", dataURL)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataPrefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalizePassesEmbeddedImagesThrough(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL)
		return nil, nil
	}))

	src := "data:image/jpeg;base64,/9j/4AAQ"
	got, err := client.Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestNormalizeScalesFetchedImage(t *testing.T) {
	body := samplePNG(t, 40, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	got, err := NewClient(server.Client()).Normalize(context.Background(), server.URL+"/cat.png")
	require.NoError(t, err)

	img := decodeDataURL(t, got)
	assert.Equal(t, Size, img.Bounds().Dx())
	assert.Equal(t, Size, img.Bounds().Dy())
}

func TestNormalizeIsDeterministic(t *testing.T) {
	body := samplePNG(t, 8, 8)
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}))

	first, err := client.Normalize(context.Background(), "https://img.example/a.png")
	require.NoError(t, err)
	second, err := client.Normalize(context.Background(), "https://img.example/a.png")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		rt   roundTripperFunc
	}{
		{
			name: "non-200 status",
			src:  "https://img.example/missing.png",
			rt: func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusNotFound,
					Body:       io.NopCloser(bytes.NewReader(nil)),
					Header:     make(http.Header),
				}, nil
			},
		},
		{
			name: "transport error",
			src:  "https://img.example/down.png",
			rt: func(r *http.Request) (*http.Response, error) {
				return nil, io.ErrUnexpectedEOF
			},
		},
		{
			name: "not an image",
			src:  "https://img.example/page.html",
			rt: func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader("<html></html>")),
					Header:     make(http.Header),
				}, nil
			},
		},
		{
			name: "unsupported scheme",
			src:  "images/cat.png",
			rt: func(r *http.Request) (*http.Response, error) {
				t.Fatalf("unexpected request to %s", r.URL)
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(tt.rt).Normalize(context.Background(), tt.src)
			assert.ErrorIs(t, err, ErrImageFetch)
		})
	}
}

func TestPlaceholderIsEmbedded(t *testing.T) {
	assert.True(t, IsEmbedded(Placeholder))
}
