package assembler

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/fetcher"
)

func testImage(t *testing.T, w, h int, mimeType string) *fetcher.Image {
	t.Helper()
	raster := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			raster.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		require.NoError(t, png.Encode(&buf, raster))
	case "image/jpeg":
		require.NoError(t, jpeg.Encode(&buf, raster, nil))
	default:
		t.Fatalf("unsupported test mime type %s", mimeType)
	}

	return &fetcher.Image{
		SourceURL: "https://example.com/img",
		Data:      buf.Bytes(),
		Width:     w,
		Height:    h,
		MimeType:  mimeType,
	}
}

// mixedSet returns a set with the given images plus one failed entry, placed
// in the middle when there is room, to make sure assemblers skip failures
// without disturbing order.
func mixedSet(images ...*fetcher.Image) fetcher.Set {
	set := make(fetcher.Set, 0, len(images)+1)
	addFailure := func() {
		set = append(set, fetcher.Outcome{
			Index:     len(set),
			SourceURL: "https://example.com/broken",
			Err:       errors.New("unexpected status 404"),
		})
	}
	for i, img := range images {
		if i == 1 {
			addFailure()
		}
		set = append(set, fetcher.Outcome{Index: len(set), SourceURL: img.SourceURL, Image: img})
	}
	if len(images) < 2 {
		addFailure()
	}
	return set
}

func allFailedSet(n int) fetcher.Set {
	set := make(fetcher.Set, n)
	for i := range set {
		set[i] = fetcher.Outcome{
			Index:     i,
			SourceURL: "https://example.com/broken",
			Err:       errors.New("connection refused"),
		}
	}
	return set
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
