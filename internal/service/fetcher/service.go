package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/slidesdown/converter/internal/infra/httpclient"
	"github.com/slidesdown/converter/internal/infra/logger"
)

var (
	ErrInvalidURL  = errors.New("invalid URL")
	ErrUndecodable = errors.New("undecodable image")
	ErrTooLarge    = errors.New("image too large")
	ErrTimeout     = errors.New("timeout")
)

type Options struct {
	Timeout       time.Duration
	MaxImageBytes int64
	JPEGQuality   int
}

type Service struct {
	client      *httpclient.Client
	timeout     time.Duration
	maxBytes    int64
	jpegQuality int
	logger      *logger.Logger
}

func New(client *httpclient.Client, opts Options, log *logger.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 32 << 20
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}
	return &Service{
		client:      client,
		timeout:     opts.Timeout,
		maxBytes:    opts.MaxImageBytes,
		jpegQuality: opts.JPEGQuality,
		logger:      log,
	}
}

// Fetch retrieves and normalizes one remote image. It never returns an error
// past its boundary: all failures land in Outcome.Err.
func (s *Service) Fetch(ctx context.Context, rawURL string, index int) Outcome {
	out := Outcome{Index: index, SourceURL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		out.Err = ErrInvalidURL
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Get(ctx, rawURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			out.Err = ErrTimeout
		} else {
			out.Err = fmt.Errorf("fetch failed: %w", err)
		}
		s.logger.Warn("image fetch failed", "url", rawURL, "index", index, "error", err)
		return out
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		s.logger.Warn("image fetch failed", "url", rawURL, "index", index, "status", resp.StatusCode)
		return out
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			out.Err = ErrTimeout
		} else {
			out.Err = fmt.Errorf("read failed: %w", err)
		}
		return out
	}
	if int64(len(data)) > s.maxBytes {
		out.Err = ErrTooLarge
		return out
	}

	img, err := s.normalize(rawURL, data)
	if err != nil {
		out.Err = err
		s.logger.Warn("image decode failed", "url", rawURL, "index", index, "error", err)
		return out
	}

	out.Image = img
	s.logger.Debug("image fetched",
		"url", rawURL,
		"index", index,
		"width", img.Width,
		"height", img.Height,
		"mime", img.MimeType,
	)
	return out
}

// normalize validates that the payload decodes as an image and converts it
// into a format assemblers can embed. JPEG bytes and embeddable PNG bytes
// pass through untouched; everything else decodable (WebP, GIF, 16-bit or
// interlaced PNG) is re-encoded to JPEG.
func (s *Service) normalize(rawURL string, data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodable
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUndecodable
	}

	switch format {
	case "jpeg":
		return &Image{
			SourceURL: rawURL,
			Data:      data,
			Width:     cfg.Width,
			Height:    cfg.Height,
			MimeType:  "image/jpeg",
		}, nil
	case "png":
		if pngEmbeddable(data, cfg) {
			return &Image{
				SourceURL: rawURL,
				Data:      data,
				Width:     cfg.Width,
				Height:    cfg.Height,
				MimeType:  "image/png",
			}, nil
		}
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodable
	}

	// 16-bit depth images are cloned down to 8-bit NRGBA before JPEG encoding.
	switch decoded.(type) {
	case *image.Gray16, *image.NRGBA64, *image.RGBA64:
		decoded = imaging.Clone(decoded)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.JPEG, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		return nil, fmt.Errorf("re-encode %s to jpeg: %w", format, err)
	}

	bounds := decoded.Bounds()
	return &Image{
		SourceURL: rawURL,
		Data:      buf.Bytes(),
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		MimeType:  "image/jpeg",
	}, nil
}

// pngEmbeddable reports whether PNG bytes can be placed in a document
// unchanged. 16-bit depth and interlaced PNGs must be re-encoded first.
func pngEmbeddable(data []byte, cfg image.Config) bool {
	switch cfg.ColorModel {
	case color.Gray16Model, color.NRGBA64Model, color.RGBA64Model:
		return false
	}
	// The interlace method is the last byte of the IHDR chunk, which always
	// directly follows the 8-byte signature.
	if len(data) > 28 && data[28] != 0 {
		return false
	}
	return true
}
