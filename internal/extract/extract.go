// Package extract turns raw document bytes into ordered pages.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Mikedodunnit/Chatpdf/internal/domain/document"
)

var pdfMagic = []byte("%PDF-")

// formFeed separates pages in plain-text documents.
const formFeed = "\f"

// Extractor picks a PDF or plain-text parser based on the content signature.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor { return &Extractor{} }

// Pages returns the document's pages numbered from 1. A page without text is
// kept as an empty page so numbering matches the source.
func (e *Extractor) Pages(ctx context.Context, raw []byte) ([]document.Page, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if bytes.HasPrefix(raw, pdfMagic) {
		return pdfPages(ctx, raw)
	}
	return textPages(raw), nil
}

func textPages(raw []byte) []document.Page {
	parts := strings.Split(string(bytes.ToValidUTF8(raw, nil)), formFeed)
	pages := make([]document.Page, len(parts))
	for i, p := range parts {
		pages[i] = document.Page{Number: i + 1, Text: p}
	}
	return pages
}

func pdfPages(ctx context.Context, raw []byte) (pages []document.Page, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages = make([]document.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := document.Page{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i, err)
			}
			page.Text = text
		}
		pages = append(pages, page)
	}
	return pages, nil
}
