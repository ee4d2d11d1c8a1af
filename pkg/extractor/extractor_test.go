package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/tika"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestCleanCollapsesWhitespaceAndControlChars(t *testing.T) {
	in := "  Hello\r\n\tworld\x00\x07  again\x7f\n\n"
	assert.Equal(t, "Hello world again", Clean(in))
	assert.Equal(t, "", Clean(""))
}

func TestExtractPlainText(t *testing.T) {
	e := New(nil)
	text, err := e.Extract(context.Background(), "notes.TXT", strings.NewReader("one  two\nthree"))
	require.NoError(t, err)
	assert.Equal(t, "one two three", text)
}

func TestExtractLatin1Fallback(t *testing.T) {
	e := New(nil)
	text, err := e.Extract(context.Background(), "cafe.md", bytes.NewReader([]byte{'c', 'a', 'f', 0xe9}))
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestExtractDocx(t *testing.T) {
	doc := buildDocx(t,
		`<w:p><w:r><w:t>First</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph</w:t></w:r></w:p>`+
			`<w:p></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell1</w:t></w:r></w:p></w:tc>`+
			`<w:tc><w:p><w:r><w:t>cell2</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>Last</w:t></w:r></w:p>`)

	text, err := New(nil).Extract(context.Background(), "a.docx", bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph cell1 cell2 Last", text)
}

func TestExtractDocxEmpty(t *testing.T) {
	doc := buildDocx(t, `<w:p></w:p>`)
	_, err := New(nil).Extract(context.Background(), "a.docx", bytes.NewReader(doc))
	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))
}

func TestExtractDocxNotZip(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), "a.docx", strings.NewReader("plain"))
	assert.Error(t, err)
}

func TestExtractUnsupported(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), "image.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPDFViaTika(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Page one\n\nPage two\n"))
	}))
	defer srv.Close()

	e := New(tika.NewClient(config.TikaConfig{ServerURL: srv.URL}))
	text, err := e.Extract(context.Background(), "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Page one Page two", text)
}

func TestExtractPDFWithoutTika(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), "doc.pdf", strings.NewReader("%PDF"))
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "PDF", extErr.Format)
}

func TestWordCountAndPreview(t *testing.T) {
	assert.Equal(t, 3, WordCount(" a b  c "))
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, "abc", Preview("abc", 200))
	assert.Equal(t, "ab...", Preview("abc", 2))
	assert.Equal(t, "ধন...", Preview("ধনধন", 2))
}
