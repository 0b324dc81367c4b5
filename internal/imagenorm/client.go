package imagenorm

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// Size is the width and height of every normalized image.
	Size = 250

	DefaultTimeout = 10 * time.Second

	embeddedPrefix = "data:image"
	pngDataPrefix  = "data:image/png;base64,"
	maxImageBytes  = 16 << 20
)

// Placeholder stands in for any image that could not be fetched or decoded.
const Placeholder = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMjUwIiBoZWlnaHQ9IjI1MCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMjUwIiBoZWlnaHQ9IjI1MCIgZmlsbD0iIzMzMyIvPjx0ZXh0IHg9IjUwJSIgeT0iNTAlIiBmaWxsPSIjZmZmIiBmb250LXNpemU9IjE2IiB0ZXh0LWFuY2hvcj0ibWlkZGxlIiBkeT0iLjNlbSI+SW1hZ2UgRmFpbGVkPC90ZXh0Pjwvc3ZnPg=="

var ErrImageFetch = errors.New("image fetch failed")

// Normalizer turns an image source into an embedded image.
type Normalizer interface {
	Normalize(ctx context.Context, src string) (string, error)
}

type Client struct {
	httpClient *http.Client
}

// NewClient builds a normalizer around httpClient. A nil client gets one with
// DefaultTimeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

// IsEmbedded reports whether src already carries its image bytes.
func IsEmbedded(src string) bool {
	return strings.HasPrefix(src, embeddedPrefix)
}

// Normalize passes embedded images through unchanged. Anything else is fetched,
// scaled to Size x Size and returned as a PNG data URL. Every failure wraps
// ErrImageFetch.
func (c *Client) Normalize(ctx context.Context, src string) (string, error) {
	if IsEmbedded(src) {
		return src, nil
	}

	raw, err := c.fetch(ctx, src)
	if err != nil {
		return "", errors.Wrapf(ErrImageFetch, "%s: %v", src, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrapf(ErrImageFetch, "%s: decode: %v", src, err)
	}

	encoded, err := encodePNG(resize(img))
	if err != nil {
		return "", errors.Wrapf(ErrImageFetch, "%s: encode: %v", src, err)
	}

	glog.V(2).Infof("normalized %s image from %s (%dx%d)", format, src, img.Bounds().Dx(), img.Bounds().Dy())
	return pngDataPrefix + encoded, nil
}

func (c *Client) fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return nil, errors.New("unsupported image source")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("image host returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// resize stretches img onto a Size x Size canvas without keeping the aspect ratio.
func resize(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
