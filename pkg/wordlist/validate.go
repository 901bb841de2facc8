package wordlist

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// ValidateWord checks a word's required fields.
func ValidateWord(w *types.Word) error {
	if w == nil {
		return fmt.Errorf("word is nil")
	}
	if w.ID == "" {
		return fmt.Errorf("word ID is required")
	}
	if w.Text == "" {
		return fmt.Errorf("word %s has no text", w.ID)
	}
	if !utf8.ValidString(w.Text) {
		return fmt.Errorf("word %s is not valid UTF-8", w.ID)
	}
	if strings.ContainsAny(w.Text, "\r\n") {
		return fmt.Errorf("word %s spans multiple lines", w.ID)
	}
	if w.Severity != "" && w.Severity.Rank() == 0 {
		return fmt.Errorf("word %s has unknown severity %q", w.ID, w.Severity)
	}

	expected := w.ComputeStructuralID()
	if w.StructuralID != "" && w.StructuralID != expected {
		return fmt.Errorf("word %s has inconsistent StructuralID: got %s, expected %s",
			w.ID, w.StructuralID, expected)
	}
	return nil
}

// ValidateWordlist checks a list and the words it references. knownWordIDs
// may be nil to skip reference checks.
func ValidateWordlist(list *types.Wordlist, knownWordIDs map[string]bool) error {
	if list == nil {
		return fmt.Errorf("word list is nil")
	}
	if list.ID == "" {
		return fmt.Errorf("word list ID is required")
	}
	if len(list.WordIDs) == 0 {
		return fmt.Errorf("word list %s: %w", list.ID, ErrEmptyWordlist)
	}

	seen := make(map[string]bool, len(list.WordIDs))
	for _, id := range list.WordIDs {
		if seen[id] {
			return fmt.Errorf("word list %s contains duplicate word ID: %s", list.ID, id)
		}
		seen[id] = true
		if knownWordIDs != nil && !knownWordIDs[id] {
			return fmt.Errorf("word list %s references unknown word ID: %s", list.ID, id)
		}
	}
	return nil
}

// ValidateAll validates every word and reports all failures at once.
func ValidateAll(words []*types.Word) []error {
	var errs []error
	ids := make(map[string]bool, len(words))
	for _, w := range words {
		if err := ValidateWord(w); err != nil {
			errs = append(errs, err)
			continue
		}
		if ids[w.ID] {
			errs = append(errs, fmt.Errorf("duplicate word ID: %s", w.ID))
		}
		ids[w.ID] = true
	}
	return errs
}
