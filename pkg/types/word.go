package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Severity ranks how offensive a word is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Word is a forbidden word with its metadata.
type Word struct {
	ID           string   `json:"id"`       // e.g., "ko.profanity.42"
	Text         string   `json:"text"`     // the literal searched for
	Category     string   `json:"category"` // e.g., "profanity", "slur"
	Severity     Severity `json:"severity,omitempty"`
	StructuralID string   `json:"structural_id,omitempty"` // SHA-1 of category and text (computed)
	Description  string   `json:"description,omitempty"`
	Variants     []string `json:"variants,omitempty"` // alternate spellings, expanded into their own words
}

// NormalizeText trims surrounding whitespace from a word list entry.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// ComputeStructuralID returns SHA-1(category + '\0' + text).
func (w *Word) ComputeStructuralID() string {
	h := sha1.New()
	h.Write([]byte(w.Category))
	h.Write([]byte{0})
	h.Write([]byte(w.Text))
	return hex.EncodeToString(h.Sum(nil))
}

// Wordlist groups words under a name, usually one per source file.
type Wordlist struct {
	ID          string
	Name        string
	Description string
	Language    string
	WordIDs     []string
}
