package enum

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zipDoc builds an in-memory document package from member name to content.
func zipDoc(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>안녕하세요</w:t></w:r></w:p>
<w:p><w:r><w:t>이 시발</w:t></w:r><w:r><w:t>놈아</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtractText_DOCX(t *testing.T) {
	doc := zipDoc(t, map[string]string{
		"word/document.xml": docxBody,
		"word/styles.xml":   `<styles><name>ignored</name></styles>`,
	})

	out, err := ExtractText("report.docx", doc)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "word/document.xml", out[0].Name)
	assert.Equal(t, "안녕하세요\n이 시발 놈아\n", string(out[0].Content))
}

func TestExtractText_XLSX(t *testing.T) {
	doc := zipDoc(t, map[string]string{
		"xl/sharedStrings.xml":     `<sst><si><t>damn</t></si><si><t>fine</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row><c><v>42</v></c></row></sheetData></worksheet>`,
		"xl/workbook.xml":          `<workbook><sheets>skip</sheets></workbook>`,
	})

	out, err := ExtractText("data.XLSX", doc)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, ec := range out {
		byName[ec.Name] = string(ec.Content)
	}
	assert.Equal(t, "damn\nfine\n", byName["xl/sharedStrings.xml"])
	assert.Equal(t, "42\n", byName["xl/worksheets/sheet1.xml"])
	assert.NotContains(t, byName, "xl/workbook.xml")
}

func TestExtractText_PPTXAndODF(t *testing.T) {
	pptx := zipDoc(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld xmlns:a="a" xmlns:p="p"><a:p><a:r><a:t>slide text</a:t></a:r></a:p></p:sld>`,
	})
	out, err := ExtractText("deck.pptx", pptx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "slide text\n", string(out[0].Content))

	odt := zipDoc(t, map[string]string{
		"content.xml": `<office:document-content xmlns:text="t" xmlns:office="o"><text:h>Title</text:h><text:p>body</text:p></office:document-content>`,
	})
	out, err = ExtractText("letter.odt", odt)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Title\nbody\n", string(out[0].Content))
}

func TestExtractText_Errors(t *testing.T) {
	_, err := ExtractText("notes.txt", []byte("plain"))
	assert.Error(t, err)

	_, err = ExtractText("broken.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = ExtractText("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	_, err = ExtractText("broken.7z", []byte("not an archive"))
	assert.ErrorContains(t, err, "opening archive")
}

func TestExtractText_ZIPArchive(t *testing.T) {
	content := zipDoc(t, map[string]string{
		"export/general.txt": "ㅋㅋ 개새끼\n",
		"export/empty.txt":   "",
		"export/image.png":   "\x89PNG\x00\x00",
	})

	got, err := ExtractText("chat-export.zip", content)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "export/general.txt", got[0].Name)
	assert.Equal(t, "ㅋㅋ 개새끼\n", string(got[0].Content))
}

func TestShouldExtract(t *testing.T) {
	tests := []struct {
		sel, path string
		want       bool
	}{
		{"", "a.docx", false},
		{"all", "a.docx", true},
		{"all", "a.txt", false},
		{"pdf,docx", "a.DOCX", true},
		{"pdf, .xlsx", "b.xlsx", true},
		{"pdf", "a.docx", false},
		{"all", "noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldExtract(tt.sel, tt.path), "%q %q", tt.sel, tt.path)
	}
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{"7z", "docx", "odp", "ods", "odt", "pdf", "pptx", "xlsx", "zip"}, SupportedExtensions())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a \n\t b   c  "))
	assert.Equal(t, "ab", cleanText("a\x01b"))
	assert.Equal(t, "", cleanText(" \n "))
}
