package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/eslsoft/neurostudy/internal/usecase"
)

// ErrNoTextLayer is returned for PDFs whose pages carry no extractable text,
// such as scanned documents.
var ErrNoTextLayer = errors.New("pdf has no text layer")

var _ usecase.DocumentExtractor = PDFExtractor{}

// PDFExtractor reads the plain text of every page of a PDF.
type PDFExtractor struct{}

// NewPDFExtractor constructs the extractor.
func NewPDFExtractor() PDFExtractor { return PDFExtractor{} }

// Extract joins the text of each page with newlines.
func (PDFExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	return joinPages(ctx, reader.NumPage(), func(i int) (string, error) {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", nil
		}
		return page.GetPlainText(nil)
	})
}

func joinPages(ctx context.Context, pages int, pageText func(i int) (string, error)) (string, error) {
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageText(i)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrNoTextLayer
	}
	return text, nil
}
