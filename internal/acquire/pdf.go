package acquire

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"faturas/internal/domain"
)

// ReadPDF extracts the text of every page in order and flattens it.
func ReadPDF(path string) (*Source, error) {
	pages, err := extractPages(path)
	if err != nil {
		return nil, &domain.AcquisitionError{Path: path, Err: err}
	}
	text := JoinPages(pages)
	if text == "" {
		return nil, &domain.AcquisitionError{Path: path, Err: domain.ErrNoText}
	}
	return &Source{Path: path, Format: domain.SourceFormatPDF, Text: text}, nil
}

func extractPages(path string) (pages []string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if n == 0 {
		return nil, domain.ErrNoText
	}

	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			font := page.Font(name)
			fonts[name] = &font
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
