package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestTypeFromMIME(t *testing.T) {
	cases := []struct {
		declared string
		want     Type
	}{
		{"application/pdf", TypePDF},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", TypeDOCX},
		{"text/plain", TypePlainText},
		{"text/plain; charset=utf-8", TypePlainText},
		{"TEXT/PLAIN", TypePlainText},
		{"image/png", TypeUnsupported},
		{"", TypeUnsupported},
	}
	for _, tc := range cases {
		if got := TypeFromMIME(tc.declared); got != tc.want {
			t.Fatalf("TypeFromMIME(%q) = %v, want %v", tc.declared, got, tc.want)
		}
	}
}

func TestParsePlainText(t *testing.T) {
	text, err := Parse([]byte("hello world"), TypePlainText)
	if err != nil {
		t.Fatalf("parse plain text: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q, want %q", text, "hello world")
	}
}

func TestParsePlainTextInvalidUTF8(t *testing.T) {
	_, err := Parse([]byte{0xff, 0xfe, 0xfd}, TypePlainText)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := Parse([]byte("anything"), TypeUnsupported)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestParseDOCXJoinsParagraphsWithNewline(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Project Overview.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Objective: </w:t></w:r><w:r><w:t>ship v1.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	data := buildDOCX(t, docXML)

	text, err := Parse(data, TypeDOCX)
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	want := "Project Overview.\nObjective: ship v1.\n"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestParseDOCXMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/styles.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := fw.Write([]byte("<styles/>")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := Parse(buf.Bytes(), TypeDOCX); err == nil {
		t.Fatalf("expected error for docx without word/document.xml")
	}
}

func TestParsePDFGarbageBytes(t *testing.T) {
	if _, err := Parse([]byte("definitely not a pdf"), TypePDF); err == nil {
		t.Fatalf("expected error for non-PDF bytes")
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := fw.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
