// Package extract turns uploaded privacy policies into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/complyai/comply/internal/domain"
	"github.com/ledongthuc/pdf"
)

// SupportedExtensions lists the upload formats Extract understands.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// maxPDFText caps the text pulled out of one PDF so a crafted file cannot
// balloon memory after passing the upload limit.
const maxPDFText = 8 << 20

// Extractor implements domain.DocumentExtractor.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	op := "extracting " + filepath.Base(filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := pdfText(data)
		if err != nil {
			return "", domain.WrapError(domain.KindInput, op, err)
		}
		return text, nil
	case ".txt", ".md":
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		if !utf8.Valid(data) {
			return "", domain.Errorf(domain.KindInput, op, "file is not valid UTF-8 text")
		}
		return string(data), nil
	default:
		return "", domain.Errorf(domain.KindInput, op, "%w %q (supported: %s)",
			domain.ErrUnsupportedFile, filepath.Ext(filename), strings.Join(SupportedExtensions, ", "))
	}
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(plain, maxPDFText)); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
