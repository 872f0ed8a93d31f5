package assembler

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/fetcher"
	"github.com/slidesdown/converter/pkg/util"
)

// PDF emits one page per successful image. Each page is sized to the image
// itself (1 px = 1 pt) rather than scaling the image into a fixed page.
type PDF struct {
	logger *logger.Logger
}

func NewPDF(log *logger.Logger) *PDF {
	return &PDF{logger: log}
}

func (a *PDF) Assemble(set fetcher.Set, title string) (*Document, error) {
	images := set.Successes()
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(util.SanitizeTitle(title), true)

	for i, img := range images {
		w := float64(img.Width)
		h := float64(img.Height)

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		imageType := "JPG"
		if img.MimeType == "image/png" {
			imageType = "PNG"
		}

		name := fmt.Sprintf("image%d", i)
		opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if pdf.Err() {
			return nil, fmt.Errorf("add page %d: %w", i+1, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	a.logger.Info("pdf assembled", "pages", len(images), "size_bytes", buf.Len())

	return &Document{
		Bytes:       buf.Bytes(),
		ContentType: "application/pdf",
		Filename:    filenameFor(title, ".pdf"),
	}, nil
}
