package enum

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bodgit/sevenzip"
	"github.com/ledongthuc/pdf"
)

// maxMemberSize caps how much of a single document member is inflated.
const maxMemberSize = 64 << 20

// ExtractedContent represents text extracted from a document.
type ExtractedContent struct {
	Name    string // member the text came from (e.g., "word/document.xml")
	Content []byte
}

type extractFunc func(content []byte) ([]ExtractedContent, error)

var extractors = map[string]extractFunc{
	".docx": extractDOCX,
	".xlsx": extractXLSX,
	".pptx": extractPPTX,
	".odt":  extractODF,
	".ods":  extractODF,
	".odp":  extractODF,
	".pdf":  extractPDF,
	".zip":  extractZIP,
	".7z":   extract7z,
}

// SupportedExtensions lists the document types text can be extracted from.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return exts
}

// ShouldExtract reports whether path is a document type selected by sel,
// a comma-separated extension list or "all".
func ShouldExtract(sel, p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	if sel == "" || extractors[ext] == nil {
		return false
	}
	if sel == "all" {
		return true
	}
	for _, s := range strings.Split(strings.ToLower(sel), ",") {
		if strings.TrimPrefix(strings.TrimSpace(s), ".") == ext[1:] {
			return true
		}
	}
	return false
}

// ExtractText extracts the text of a supported document.
func ExtractText(p string, content []byte) ([]ExtractedContent, error) {
	ext := strings.ToLower(filepath.Ext(p))
	fn, ok := extractors[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
	return fn(content)
}

func extractDOCX(content []byte) ([]ExtractedContent, error) {
	return zipText(content, func(name string) bool {
		return name == "word/document.xml" ||
			matchMember(name, "word/header*.xml") ||
			matchMember(name, "word/footer*.xml") ||
			name == "word/footnotes.xml" ||
			name == "word/comments.xml"
	})
}

func extractXLSX(content []byte) ([]ExtractedContent, error) {
	return zipText(content, func(name string) bool {
		return name == "xl/sharedStrings.xml" || matchMember(name, "xl/worksheets/sheet*.xml")
	})
}

func extractPPTX(content []byte) ([]ExtractedContent, error) {
	return zipText(content, func(name string) bool {
		return matchMember(name, "ppt/slides/slide*.xml") || matchMember(name, "ppt/notesSlides/notesSlide*.xml")
	})
}

func extractODF(content []byte) ([]ExtractedContent, error) {
	return zipText(content, func(name string) bool { return name == "content.xml" })
}

func matchMember(name, pattern string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}

// zipText returns the text of every member of an OOXML/ODF package that
// want selects, in archive order. Unreadable members are skipped.
func zipText(content []byte, want func(name string) bool) ([]ExtractedContent, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}

	var results []ExtractedContent
	for _, f := range zr.File {
		if !want(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize))
		rc.Close()
		if err != nil {
			continue
		}
		if text := xmlText(data); text != "" {
			results = append(results, ExtractedContent{Name: f.Name, Content: []byte(text)})
		}
	}
	return results, nil
}

// extractZIP returns the text members of a zip archive, such as an exported
// chat history.
func extractZIP(content []byte) ([]ExtractedContent, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	var results []ExtractedContent
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if ec, ok := archiveMember(f.Name, f.Open); ok {
			results = append(results, ec)
		}
	}
	return results, nil
}

// extract7z returns the text members of a 7-Zip archive.
func extract7z(content []byte) ([]ExtractedContent, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	var results []ExtractedContent
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if ec, ok := archiveMember(f.Name, f.Open); ok {
			results = append(results, ec)
		}
	}
	return results, nil
}

// archiveMember reads one archive member, dropping binary and unreadable ones.
func archiveMember(name string, open func() (io.ReadCloser, error)) (ExtractedContent, bool) {
	rc, err := open()
	if err != nil {
		return ExtractedContent{}, false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize))
	if err != nil || len(data) == 0 || isBinary(data) {
		return ExtractedContent{}, false
	}
	return ExtractedContent{Name: name, Content: data}, true
}

// blockElements end a line of text in the XML document formats.
var blockElements = map[string]bool{
	"p":   true, // w:p, a:p, text:p
	"h":   true, // text:h
	"br":  true,
	"si":  true, // shared string item
	"row": true,
}

// xmlText collects the character data of an XML document, one line per
// paragraph-like element.
func xmlText(data []byte) string {
	var (
		sb   strings.Builder
		line strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			sb.WriteString(s)
			sb.WriteByte('\n')
		}
		line.Reset()
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			if s := cleanText(string(t)); s != "" {
				if line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(s)
			}
		case xml.EndElement:
			if blockElements[t.Name.Local] {
				flush()
			}
		}
	}
	flush()
	return sb.String()
}

// extractPDF returns the plain text of every page, one blob for the document.
func extractPDF(content []byte) ([]ExtractedContent, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, nil
	}
	return []ExtractedContent{{Name: "content", Content: []byte(text.String())}}, nil
}

// cleanText collapses whitespace runs and drops non-printable runes.
func cleanText(s string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
