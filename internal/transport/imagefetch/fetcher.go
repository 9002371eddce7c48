// Package imagefetch downloads and decodes product photos.
package imagefetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // register decoder

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 10 << 20

// Fetcher loads images over HTTP(S) or from the local filesystem.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a Fetcher. timeout bounds each download.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

// Fetch returns the raw bytes and detected MIME type of the image at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	if location == "" {
		return nil, "", fmt.Errorf("no image location: %w", domain.ErrInvalidImage)
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		data, err = f.download(ctx, location)
	} else {
		data, err = f.readFile(strings.TrimPrefix(location, "file://"))
	}
	if err != nil {
		return nil, "", err
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", fmt.Errorf("%s is %s: %w", location, mime, domain.ErrInvalidImage)
	}
	return data, mime, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d: %w", url, resp.StatusCode, domain.ErrInvalidImage)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = fh.Close() }()
	return f.readLimited(fh)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes: %w", f.maxBytes, domain.ErrInvalidImage)
	}
	return data, nil
}

// Decode parses JPEG, PNG, GIF or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, domain.ErrInvalidImage)
	}
	return img, nil
}
