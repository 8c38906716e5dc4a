package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF reads the plain text of every page of a PDF document. The
// document title comes from the Info dictionary when present.
func ExtractPDF(data []byte) (*Content, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	title := strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())
	return &Content{
		Title:  title,
		Text:   strings.Join(strings.Fields(b.String()), " "),
		Method: "pdf",
	}, nil
}
