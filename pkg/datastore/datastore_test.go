package datastore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/dat"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, opts Options) *Datastore {
	t.Helper()
	ds, err := Open(filepath.Join(t.TempDir(), "wordscan.ds"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestOpen_Layout(t *testing.T) {
	ds := openTemp(t, Options{StoreBlobs: true})

	assert.FileExists(t, filepath.Join(ds.Path, ".gitignore"))
	assert.FileExists(t, ds.DBPath())
	assert.DirExists(t, filepath.Join(ds.Path, "blobs"))
	require.NotNil(t, ds.BlobStore)
	assert.NotNil(t, ds.Store)
}

func TestOpen_WithoutBlobs(t *testing.T) {
	ds := openTemp(t, Options{})

	assert.Nil(t, ds.BlobStore)
	assert.NoDirExists(t, filepath.Join(ds.Path, "blobs"))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", Options{})
	assert.Error(t, err)
}

func TestWordsDigest(t *testing.T) {
	a := wordlist.FromStrings("test", []string{"시발", "damn"})
	b := wordlist.FromStrings("test", []string{"시발", "damn"})
	b[0], b[1] = b[1], b[0]

	assert.Equal(t, WordsDigest(a), WordsDigest(b), "order does not matter")
	assert.Len(t, WordsDigest(a), 64)

	c := wordlist.FromStrings("test", []string{"시발", "darn"})
	assert.NotEqual(t, WordsDigest(a), WordsDigest(c))
}

func TestAutomaton_SaveLoad(t *testing.T) {
	ds := openTemp(t, Options{})
	words := wordlist.FromStrings("test", []string{"시발", "병신", "damn"})

	saved, err := ds.SaveAutomaton(words)
	require.NoError(t, err)
	assert.FileExists(t, ds.AutomatonPath())

	loaded, err := ds.LoadAutomaton(words)
	require.NoError(t, err)

	text := []byte("이 시발 damn")
	want, err := saved.ParseText(text)
	require.NoError(t, err)
	got, err := loaded.ParseText(text)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Begin, got[i].Begin)
		assert.Equal(t, want[i].End, got[i].End)
		assert.Equal(t, want[i].Value.Text, got[i].Value.Text)
		assert.Equal(t, want[i].Value.ID, got[i].Value.ID)
	}
}

func TestAutomaton_Missing(t *testing.T) {
	ds := openTemp(t, Options{})

	_, err := ds.LoadAutomaton(wordlist.FromStrings("test", []string{"x"}))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestAutomaton_Stale(t *testing.T) {
	ds := openTemp(t, Options{})
	_, err := ds.SaveAutomaton(wordlist.FromStrings("test", []string{"시발"}))
	require.NoError(t, err)

	_, err = ds.LoadAutomaton(wordlist.FromStrings("test", []string{"병신"}))
	assert.ErrorIs(t, err, ErrStaleAutomaton)
}

func TestAutomaton_Corrupt(t *testing.T) {
	ds := openTemp(t, Options{})
	words := wordlist.FromStrings("test", []string{"시발"})
	require.NoError(t, os.WriteFile(ds.AutomatonPath(), []byte(WordsDigest(words)+"\ngarbage"), 0644))

	_, err := ds.LoadAutomaton(words)
	assert.ErrorIs(t, err, dat.ErrCorruptData)
}

func TestAutomaton_RebuildsWhenStale(t *testing.T) {
	ds := openTemp(t, Options{})
	_, err := ds.SaveAutomaton(wordlist.FromStrings("test", []string{"시발"}))
	require.NoError(t, err)

	words := wordlist.FromStrings("test", []string{"병신"})
	trie, err := ds.Automaton(words)
	require.NoError(t, err)

	found, err := trie.Matches([]byte("이 병신아"))
	require.NoError(t, err)
	assert.True(t, found)

	_, err = ds.LoadAutomaton(words)
	assert.NoError(t, err)
}

func TestAutomaton_EmptyWords(t *testing.T) {
	ds := openTemp(t, Options{})

	_, err := ds.SaveAutomaton([]*types.Word{})
	assert.ErrorIs(t, err, dat.ErrEmptyInput)
	assert.NoFileExists(t, ds.AutomatonPath())
}
