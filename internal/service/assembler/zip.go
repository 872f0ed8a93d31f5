package assembler

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/fetcher"
	"github.com/slidesdown/converter/pkg/util"
)

// ZIP emits one archive entry per successful image. Entry names carry a
// zero-padded 1-based index so that lexical sort order reconstructs the
// original presentation order.
type ZIP struct {
	logger *logger.Logger
}

func NewZIP(log *logger.Logger) *ZIP {
	return &ZIP{logger: log}
}

func (a *ZIP) Assemble(set fetcher.Set, title string) (*Document, error) {
	images := set.Successes()
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, img := range images {
		name := fmt.Sprintf("slide_%03d%s", i+1, util.ExtensionForMime(img.MimeType))
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", name, err)
		}
		if _, err := w.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	a.logger.Info("zip assembled", "entries", len(images), "size_bytes", buf.Len())

	return &Document{
		Bytes:       buf.Bytes(),
		ContentType: "application/zip",
		Filename:    filenameFor(title, ".zip"),
	}, nil
}
