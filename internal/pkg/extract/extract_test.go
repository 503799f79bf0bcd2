package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/penwise/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeFromFilename(t *testing.T) {
	cases := map[string]string{
		"notes.md":       model.ContentTypeArticle,
		"NOTES.MD":       model.ContentTypeArticle,
		"draft.txt":      model.ContentTypeText,
		"resume.docx":    model.ContentTypeDocument,
		"legacy.doc":     model.ContentTypeDocument,
		"paper.pdf":      model.ContentTypeLinkedInPost,
		"page.html":      model.ContentTypeLinkedInPost,
		"post":           model.ContentTypeLinkedInPost,
		"export.csv":     model.ContentTypeLinkedInPost,
		"archive.tar.gz": model.ContentTypeLinkedInPost,
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentTypeFromFilename(name), name)
	}
}

func TestFromFilePlainText(t *testing.T) {
	result, err := FromFile("draft.txt", []byte("  First   line\n\n\nSecond line  "))
	require.NoError(t, err)
	assert.Equal(t, "First line\n\nSecond line", result.Text)
	assert.Empty(t, result.Title)
}

func TestFromFileEmpty(t *testing.T) {
	_, err := FromFile("empty.md", []byte(" \n\t "))
	assert.ErrorIs(t, err, ErrNoText)
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromFileDOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Leadership is</w:t></w:r><w:r><w:t xml:space="preserve"> a practice.</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Second paragraph &amp; more.</w:t></w:r></w:p>`)

	result, err := FromFile("essay.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Leadership is a practice.\nSecond paragraph & more.", result.Text)
}

func TestFromFileDOCMissingZipFallsBackToText(t *testing.T) {
	result, err := FromFile("legacy.doc", []byte("plain words in a doc"))
	require.NoError(t, err)
	assert.Equal(t, "plain words in a doc", result.Text)
}

func TestFromFileDOCXCorrupt(t *testing.T) {
	_, err := FromFile("broken.docx", []byte("not a zip"))
	assert.Error(t, err)
}

func TestFromFileInvalidPDF(t *testing.T) {
	_, err := FromFile("paper.pdf", []byte("%PDF-garbage"))
	assert.Error(t, err)
}

func TestFromHTMLArticle(t *testing.T) {
	paragraph := "Hiring great engineers takes patience, clear expectations and honest feedback. "
	page := `<html><head><title>Hiring Lessons</title><script>var x = 1;</script></head><body>
<nav>Home | About</nav>
<article><h1>Hiring Lessons</h1>
<p>` + strings.Repeat(paragraph, 5) + `</p>
<p>` + strings.Repeat("Culture is what people do when nobody is watching. ", 5) + `</p>
</article></body></html>`

	result, err := FromFile("page.html", []byte(page))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Hiring great engineers takes patience")
	assert.Contains(t, result.Text, "Culture is what people do")
	assert.NotContains(t, result.Text, "var x = 1")
}

func TestHTMLTextSkipsScripts(t *testing.T) {
	result, err := FromHTML(strings.NewReader(`<p>hello</p><script>alert(1)</script><style>p{}</style><p>world</p>`), nil)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "hello")
	assert.Contains(t, result.Text, "world")
	assert.NotContains(t, result.Text, "alert")
}
