package export

import (
	"regexp"
	"strings"

	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

// Format selects the artifact type produced by an export.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat accepts "pdf" or "png" in any case. Empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", apperrors.InvalidInput("format must be one of: pdf, png")
	}
}

// ContentType returns the MIME type of the artifact.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "application/pdf"
}

// Artifact is a fully rendered export, ready to be written to a response.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename derives the download name from the folder name, e.g.
// "Kit Verão 2024" -> "Kit_Verão_2024_catalogo.pdf".
func Filename(folderName string, f Format) string {
	base := whitespaceRun.ReplaceAllString(strings.TrimSpace(folderName), "_")
	if base == "" {
		base = "pasta"
	}
	return base + "_catalogo." + string(f)
}
