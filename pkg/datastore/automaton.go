package datastore

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/dat"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
)

// ErrStaleAutomaton is returned when the saved automaton was compiled from a
// different word list.
var ErrStaleAutomaton = errors.New("automaton was compiled from a different word list")

// WordsDigest returns a hex SHA-256 over the words the automaton would be
// built from. Word order does not matter.
func WordsDigest(words []*types.Word) string {
	patterns := wordlist.Patterns(words)
	texts := make([]string, 0, len(patterns))
	for text := range patterns {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	h := sha256.New()
	for _, text := range texts {
		w := patterns[text]
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\n", w.ID, w.Text, w.Category, w.Severity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// AutomatonPath returns the path of the compiled automaton snapshot.
func (d *Datastore) AutomatonPath() string {
	return filepath.Join(d.Path, automatonFile)
}

// SaveAutomaton compiles words and writes the snapshot, prefixed with the
// word list digest. It returns the compiled trie.
func (d *Datastore) SaveAutomaton(words []*types.Word) (*dat.Trie[*types.Word], error) {
	trie, err := dat.Build(wordlist.Patterns(words))
	if err != nil {
		return nil, fmt.Errorf("building automaton: %w", err)
	}

	path := d.AutomatonPath()
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("creating automaton file: %w", err)
	}

	bw := bufio.NewWriter(f)
	_, err = fmt.Fprintln(bw, WordsDigest(words))
	if err == nil {
		err = trie.Save(bw)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("writing automaton: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("renaming automaton: %w", err)
	}
	return trie, nil
}

// LoadAutomaton reads the saved snapshot. A snapshot compiled from a word
// list other than words yields ErrStaleAutomaton; a missing snapshot yields an
// error satisfying errors.Is(err, fs.ErrNotExist).
func (d *Datastore) LoadAutomaton(words []*types.Word) (*dat.Trie[*types.Word], error) {
	f, err := os.Open(d.AutomatonPath())
	if err != nil {
		return nil, fmt.Errorf("opening automaton: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	digest, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = dat.ErrCorruptData
		}
		return nil, fmt.Errorf("reading automaton digest: %w", err)
	}
	if strings.TrimSuffix(digest, "\n") != WordsDigest(words) {
		return nil, ErrStaleAutomaton
	}

	trie, err := dat.Load[*types.Word](br)
	if err != nil {
		return nil, fmt.Errorf("loading automaton: %w", err)
	}
	return trie, nil
}

// Automaton returns the saved automaton for words, compiling and saving it
// when it is missing or stale.
func (d *Datastore) Automaton(words []*types.Word) (*dat.Trie[*types.Word], error) {
	trie, err := d.LoadAutomaton(words)
	if err == nil {
		return trie, nil
	}
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrStaleAutomaton) {
		fmt.Fprintf(os.Stderr, "[warn] discarding unreadable automaton: %v\n", err)
	}
	return d.SaveAutomaton(words)
}
