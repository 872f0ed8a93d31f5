// Package assembler turns an ordered set of fetched images into a single
// downloadable document. The three variants (PDF, PPTX, ZIP) are a closed
// set selected by the requested format.
package assembler

import (
	"errors"

	"github.com/slidesdown/converter/internal/service/fetcher"
	"github.com/slidesdown/converter/pkg/util"
)

const (
	FormatPDF = "pdf"
	FormatPPT = "ppt"
	FormatZIP = "zip"
)

// ErrNoImages is returned when every entry in the set failed to fetch.
var ErrNoImages = errors.New("no valid images to assemble")

// Document is the final binary artifact handed back to the transport layer.
type Document struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

// Assembler consumes an image set plus a title and emits one document.
type Assembler interface {
	Assemble(set fetcher.Set, title string) (*Document, error)
}

// KnownFormat reports whether format names one of the three variants.
func KnownFormat(format string) bool {
	switch format {
	case FormatPDF, FormatPPT, FormatZIP:
		return true
	}
	return false
}

// filenameFor derives the suggested download filename from the title.
// Blank titles fall back to the default stem.
func filenameFor(title, ext string) string {
	return util.SanitizeTitle(title) + ext
}
