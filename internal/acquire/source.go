// Package acquire turns inbound documents into text and, for XML, a
// queryable tree.
package acquire

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"faturas/internal/domain"
)

// Source is the acquired content of one document.
type Source struct {
	Path   string
	Format domain.SourceFormat
	// Text is the flattened document text.
	Text string
	// Tree is the parsed XML document; nil for PDFs.
	Tree *xmlquery.Node
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// NormalizeText applies the page flattening used for every text source:
// newlines become spaces, whitespace runs collapse to one space, and the
// result is trimmed.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// JoinPages normalizes each page and joins the non-empty ones with a space.
func JoinPages(pages []string) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = NormalizeText(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FormatOf returns the source format for path based on its extension,
// case-insensitively.
func FormatOf(path string) (domain.SourceFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(path))
	}
	return f, nil
}

// Read dispatches on the file extension.
func Read(path string) (*Source, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, &domain.AcquisitionError{Path: path, Err: err}
	}
	switch format {
	case domain.SourceFormatXML:
		return ReadXML(path)
	default:
		return ReadPDF(path)
	}
}
