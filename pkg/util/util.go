package util

import (
	"strings"
	"unicode"
)

// DefaultTitle is substituted when a request carries a blank title.
const DefaultTitle = "presentation"

// SanitizeTitle turns a user-supplied title into a safe filename stem.
// Blank or whitespace-only titles fall back to DefaultTitle.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}

	var b strings.Builder
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == '"' || r == ':':
			b.WriteRune('_')
		case unicode.IsControl(r):
			// drop
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return DefaultTitle
	}
	return out
}

// ExtensionForMime maps an image mime type to a file extension.
func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
