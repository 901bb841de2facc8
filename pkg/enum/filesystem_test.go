package enum

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// collectPaths runs e and returns the sorted provenance paths it yielded.
func collectPaths(t *testing.T, e Enumerator) []string {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	err := e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		assert.Equal(t, types.ComputeBlobID(content), blobID)
		mu.Lock()
		paths = append(paths, prov.Path())
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFilesystemEnumerator(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"chat.txt":          "이 시발 놈아",
		"notes.md":          "clean text",
		"sub/nested.txt":    "nested",
		".hidden.txt":       "hidden",
		".secret/inner.txt": "hidden dir",
		"binary.bin":        "abc\x00def",
	})

	paths := collectPaths(t, NewFilesystemEnumerator(Config{Root: root}))
	assert.Equal(t, []string{"chat.txt", "notes.md", "sub/nested.txt"}, rel(t, root, paths))
}

func TestFilesystemEnumerator_IncludeHidden(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"visible.txt":       "visible",
		".hidden.txt":       "hidden",
		".secret/inner.txt": "hidden dir",
	})

	paths := collectPaths(t, NewFilesystemEnumerator(Config{Root: root, IncludeHidden: true}))
	assert.Equal(t, []string{".hidden.txt", ".secret/inner.txt", "visible.txt"}, rel(t, root, paths))
}

func TestFilesystemEnumerator_MaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"small.txt": "tiny",
		"large.txt": "this file is definitely larger than ten bytes",
	})

	paths := collectPaths(t, NewFilesystemEnumerator(Config{Root: root, MaxFileSize: 10}))
	assert.Equal(t, []string{"small.txt"}, rel(t, root, paths))
}

func TestFilesystemEnumerator_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".gitignore":    "*.log\nbuild/\n",
		"keep.txt":      "keep",
		"debug.log":     "ignored",
		"build/out.txt": "ignored",
		"src/build.txt": "kept, only the directory is ignored",
		"src/trace.log": "ignored",
	})

	paths := collectPaths(t, NewFilesystemEnumerator(Config{Root: root}))
	assert.Equal(t, []string{"keep.txt", "src/build.txt"}, rel(t, root, paths))
}

func TestFilesystemEnumerator_SingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"one.txt": "only"})

	paths := collectPaths(t, NewFilesystemEnumerator(Config{Root: filepath.Join(root, "one.txt")}))
	assert.Equal(t, []string{filepath.Join(root, "one.txt")}, paths)
}

func TestFilesystemEnumerator_Extract(t *testing.T) {
	root := t.TempDir()
	doc := zipDoc(t, map[string]string{"word/document.xml": docxBody})
	require.NoError(t, os.WriteFile(filepath.Join(root, "report.docx"), doc, 0644))

	var provs []types.Provenance
	var texts []string
	err := NewFilesystemEnumerator(Config{Root: root, Extract: "docx"}).Enumerate(context.Background(),
		func(content []byte, blobID types.BlobID, prov types.Provenance) error {
			provs = append(provs, prov)
			texts = append(texts, string(content))
			return nil
		})
	require.NoError(t, err)

	require.Len(t, provs, 1)
	assert.Equal(t, "archive", provs[0].Kind())
	assert.Equal(t, filepath.Join(root, "report.docx")+":word/document.xml", provs[0].Path())
	assert.Contains(t, texts[0], "시발")
}

func TestFilesystemEnumerator_CallbackError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})

	stop := errors.New("stop")
	err := NewFilesystemEnumerator(Config{Root: root, Workers: 1}).Enumerate(context.Background(),
		func([]byte, types.BlobID, types.Provenance) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestFilesystemEnumerator_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFilesystemEnumerator(Config{Root: root}).Enumerate(ctx,
		func([]byte, types.BlobID, types.Provenance) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesystemEnumerator_MissingRoot(t *testing.T) {
	err := NewFilesystemEnumerator(Config{Root: filepath.Join(t.TempDir(), "missing")}).Enumerate(context.Background(),
		func([]byte, types.BlobID, types.Provenance) error { return nil })
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".env"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden("visible"))
}

func TestHasHiddenElement(t *testing.T) {
	assert.True(t, hasHiddenElement(".github/workflows/ci.yml"))
	assert.True(t, hasHiddenElement("docs/.draft.md"))
	assert.False(t, hasHiddenElement("docs/readme.md"))
	assert.False(t, hasHiddenElement(""))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary([]byte("시발 text")))
	assert.True(t, isBinary([]byte{'a', 0, 'b'}))
	assert.False(t, isBinary(nil))
}
