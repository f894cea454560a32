// Package parser converts uploaded file bytes into plain text, dispatching
// on the declared MIME type over a closed set of supported formats.
package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/ledongthuc/pdf"
)

// Type identifies a supported upload format.
type Type int

const (
	TypeUnsupported Type = iota
	TypePDF
	TypeDOCX
	TypePlainText
)

var (
	// ErrUnsupportedType indicates a declared MIME type outside the supported set.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrDecode indicates a plain-text file whose bytes are not valid UTF-8.
	ErrDecode = errors.New("file is not valid UTF-8")
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// TypeFromMIME maps a declared MIME type onto the closed set of variants.
// Media-type parameters such as "; charset=utf-8" are ignored.
func TypeFromMIME(declared string) Type {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case mimePDF:
		return TypePDF
	case mimeDOCX:
		return TypeDOCX
	case mimeText:
		return TypePlainText
	default:
		return TypeUnsupported
	}
}

// String returns the variant name for logging.
func (t Type) String() string {
	switch t {
	case TypePDF:
		return "pdf"
	case TypeDOCX:
		return "docx"
	case TypePlainText:
		return "text"
	default:
		return "unsupported"
	}
}

// Parse extracts plain text from raw file bytes according to the declared
// type. Unsupported types yield ErrUnsupportedType with no partial result.
func Parse(data []byte, typ Type) (string, error) {
	switch typ {
	case TypePDF:
		return parsePDF(data)
	case TypeDOCX:
		return parseDOCX(data)
	case TypePlainText:
		return parsePlainText(data)
	default:
		return "", ErrUnsupportedType
	}
}

// parsePDF extracts text page by page, concatenating in page order. Pages
// that yield no extractable text are skipped rather than failing the file.
func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// parseDOCX concatenates each paragraph of word/document.xml, joined by
// newline, in document order.
func parseDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx document part: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read docx document part: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("docx missing word/document.xml")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return "", fmt.Errorf("parse docx xml: %w", err)
	}
	var sb strings.Builder
	for _, p := range doc.FindElements("//w:p") {
		for _, t := range p.FindElements(".//w:t") {
			sb.WriteString(t.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// parsePlainText decodes the bytes as UTF-8.
func parsePlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrDecode
	}
	return string(data), nil
}
