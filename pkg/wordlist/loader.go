package wordlist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"gopkg.in/yaml.v3"
)

// ErrEmptyWordlist is returned when a source yields no words.
var ErrEmptyWordlist = errors.New("word list is empty")

// DefaultCategory is assigned to words from plain text lists.
const DefaultCategory = "profanity"

// maxLineSize bounds a single line of a text word list.
const maxLineSize = 64 * 1024

// Loader reads word lists.
type Loader struct {
	fs fs.FS // built-in lists
}

// NewLoader creates a loader over the embedded built-in lists.
func NewLoader() *Loader {
	return &Loader{fs: builtinFS}
}

// NewLoaderWithFS creates a loader whose built-in lists come from fsys.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadYAML parses a YAML word list.
func (l *Loader) LoadYAML(data []byte) (*types.Wordlist, []*types.Word, error) {
	var file yamlWordlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if file.ID == "" {
		return nil, nil, fmt.Errorf("word list has no id")
	}
	if len(file.Words) == 0 {
		return nil, nil, fmt.Errorf("word list %s: %w", file.ID, ErrEmptyWordlist)
	}

	list := &types.Wordlist{
		ID:          file.ID,
		Name:        file.Name,
		Description: file.Description,
		Language:    file.Language,
	}

	var words []*types.Word
	for i, yw := range file.Words {
		w := convertYAMLWord(file, yw, i)
		if w.Text == "" {
			continue
		}
		words = append(words, w)
		words = append(words, expandVariants(w)...)
	}
	for _, w := range words {
		list.WordIDs = append(list.WordIDs, w.ID)
	}
	return list, words, nil
}

// LoadText parses a line-delimited word list: one word per line, blank
// lines and lines starting with '#' skipped, duplicates dropped.
func (l *Loader) LoadText(r io.Reader, listID string) (*types.Wordlist, []*types.Word, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 10*1024), maxLineSize)

	list := &types.Wordlist{ID: listID, Name: listID}
	seen := make(map[string]bool)
	var words []*types.Word
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := types.NormalizeText(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || seen[text] {
			continue
		}
		seen[text] = true

		w := &types.Word{
			ID:       fmt.Sprintf("%s.%d", listID, lineNo),
			Text:     text,
			Category: DefaultCategory,
		}
		w.StructuralID = w.ComputeStructuralID()
		words = append(words, w)
		list.WordIDs = append(list.WordIDs, w.ID)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading word list %s: %w", listID, err)
	}
	if len(words) == 0 {
		return nil, nil, fmt.Errorf("word list %s: %w", listID, ErrEmptyWordlist)
	}
	return list, words, nil
}

// Load parses data as YAML when name has a .yml/.yaml extension and as a
// text list otherwise.
func (l *Loader) Load(name string, data []byte) (*types.Wordlist, []*types.Word, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yml", ".yaml":
		return l.LoadYAML(data)
	default:
		return l.LoadText(bytes.NewReader(data), listIDFromName(name))
	}
}

// LoadFile loads a word list from disk.
func (l *Loader) LoadFile(p string) (*types.Wordlist, []*types.Word, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", p, err)
	}
	return l.Load(p, data)
}

// LoadBuiltinWords loads every built-in list.
func (l *Loader) LoadBuiltinWords() ([]*types.Word, error) {
	_, words, err := l.LoadBuiltin()
	return words, err
}

// LoadBuiltin loads every built-in list together with its metadata.
func (l *Loader) LoadBuiltin() ([]*types.Wordlist, []*types.Word, error) {
	var (
		lists []*types.Wordlist
		words []*types.Word
	)

	err := fs.WalkDir(l.fs, "wordlists", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yml", ".txt":
		default:
			return nil
		}

		data, err := fs.ReadFile(l.fs, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		list, ws, err := l.Load(p, data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		lists = append(lists, list)
		words = append(words, ws...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return lists, Dedupe(words), nil
}

// Dedupe drops words whose text was already seen. The word with the lowest
// ID wins, so the outcome does not depend on load order.
func Dedupe(words []*types.Word) []*types.Word {
	sorted := make([]*types.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[string]bool, len(sorted))
	out := make([]*types.Word, 0, len(sorted))
	for _, w := range sorted {
		if seen[w.Text] {
			continue
		}
		seen[w.Text] = true
		out = append(out, w)
	}
	return out
}

// Patterns maps each word's text to the word, the input shape of the
// automaton builder.
func Patterns(words []*types.Word) map[string]*types.Word {
	m := make(map[string]*types.Word, len(words))
	for _, w := range words {
		if _, ok := m[w.Text]; !ok {
			m[w.Text] = w
		}
	}
	return m
}

// FromStrings turns bare strings into words of DefaultCategory.
func FromStrings(listID string, texts []string) []*types.Word {
	words := make([]*types.Word, 0, len(texts))
	for i, t := range texts {
		t = types.NormalizeText(t)
		if t == "" {
			continue
		}
		w := &types.Word{ID: fmt.Sprintf("%s.%d", listID, i+1), Text: t, Category: DefaultCategory}
		w.StructuralID = w.ComputeStructuralID()
		words = append(words, w)
	}
	return Dedupe(words)
}

// =============================================================================
// HELPERS
// =============================================================================

func convertYAMLWord(file yamlWordlistFile, yw yamlWord, index int) *types.Word {
	w := &types.Word{
		ID:          yw.ID,
		Text:        types.NormalizeText(yw.Text),
		Category:    yw.Category,
		Severity:    types.Severity(yw.Severity),
		Description: yw.Description,
		Variants:    yw.Variants,
	}
	if w.ID == "" {
		w.ID = fmt.Sprintf("%s.%d", file.ID, index+1)
	}
	if w.Category == "" {
		w.Category = file.Category
	}
	if w.Category == "" {
		w.Category = DefaultCategory
	}
	if w.Severity == "" {
		w.Severity = types.Severity(file.Severity)
	}
	w.StructuralID = w.ComputeStructuralID()
	return w
}

// expandVariants turns each alternate spelling into a word of its own that
// shares the parent's metadata.
func expandVariants(parent *types.Word) []*types.Word {
	var out []*types.Word
	for i, v := range parent.Variants {
		v = types.NormalizeText(v)
		if v == "" || v == parent.Text {
			continue
		}
		w := &types.Word{
			ID:          fmt.Sprintf("%s.v%d", parent.ID, i+1),
			Text:        v,
			Category:    parent.Category,
			Severity:    parent.Severity,
			Description: parent.Description,
		}
		w.StructuralID = w.ComputeStructuralID()
		out = append(out, w)
	}
	return out
}

func listIDFromName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base))
}
