// Package wordscan finds forbidden words in text.
//
// Words are compiled into a double-array Aho-Corasick automaton, so a scan
// costs one pass over the input no matter how many words are loaded. The
// builtin lists cover common Korean and English profanity.
//
// # Basic Usage
//
//	scanner, err := wordscan.NewScanner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scanner.Close()
//
//	bad, err := scanner.ContainsProfanity("아 시발 진짜")
//	masked, err := scanner.Mask("아 시발 진짜") // "아 ** 진짜"
//
// # Custom Words
//
//	scanner, err := wordscan.NewScanner(
//	    wordscan.WithWordStrings("바보", "멍청이"),
//	    wordscan.WithMaskRune('#'),
//	)
package wordscan

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/matcher"
	"github.com/chulbong-kr/wordscan/pkg/scanner"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
)

// Re-export commonly used types for convenience.
type (
	// Word is a forbidden word with its category and severity.
	Word = types.Word

	// Match is one occurrence of a word.
	Match = types.Match

	// Location describes where a match was found within content.
	Location = types.Location

	// Snippet contains the matched text with surrounding context.
	Snippet = types.Snippet

	// ScanResult holds the matches of one scanned input.
	ScanResult = scanner.ScanResult
)

// Errors returned by Scanner methods.
var (
	ErrNotInitialized = scanner.ErrNotInitialized
	ErrClosed         = scanner.ErrClosed
)

// Scanner finds forbidden words. A Scanner is safe for concurrent use.
type Scanner struct {
	matcher matcher.Matcher
	config  *scannerConfig
	mu      sync.RWMutex
	closed  bool
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	words        []*types.Word
	wordlistFile string
	categories   []string
	contextLines int
	engine       string
	maskRune     rune
}

// Option configures a Scanner.
type Option func(*scannerConfig)

// WithWords uses words instead of the builtin lists.
func WithWords(words []*Word) Option {
	return func(c *scannerConfig) {
		c.words = words
	}
}

// WithWordStrings uses plain strings as words of the default category.
func WithWordStrings(texts ...string) Option {
	return func(c *scannerConfig) {
		c.words = wordlist.FromStrings("custom", texts)
	}
}

// WithWordlistFile loads words from a location: a local .txt or .yml file,
// s3://bucket/key or azblob://container/blob.
func WithWordlistFile(location string) Option {
	return func(c *scannerConfig) {
		c.wordlistFile = location
	}
}

// WithCategories keeps only words whose category or ID matches one of the
// given regular expressions.
func WithCategories(patterns ...string) Option {
	return func(c *scannerConfig) {
		c.categories = patterns
	}
}

// WithContextLines sets the number of context lines captured around matches.
// Default is 2.
func WithContextLines(lines int) Option {
	return func(c *scannerConfig) {
		c.contextLines = lines
	}
}

// WithEngine selects the matching engine: "dat" (default), "regexp" or
// "hyperscan".
func WithEngine(engine string) Option {
	return func(c *scannerConfig) {
		c.engine = engine
	}
}

// WithMaskRune sets the rune Mask writes over each rune of a word.
// Default is '*'.
func WithMaskRune(r rune) Option {
	return func(c *scannerConfig) {
		c.maskRune = r
	}
}

// NewScanner creates a Scanner.
//
// By default, the scanner:
//   - Uses every builtin word list
//   - Uses the double-array automaton engine
//   - Includes 2 lines of context around matches
//   - Masks with '*'
func NewScanner(opts ...Option) (*Scanner, error) {
	config := &scannerConfig{
		contextLines: 2,
		engine:       matcher.EngineDAT,
		maskRune:     matcher.DefaultMaskRune,
	}
	for _, opt := range opts {
		opt(config)
	}

	words, err := config.loadWords()
	if err != nil {
		return nil, err
	}
	config.words = words

	m, err := matcher.New(matcher.Config{
		Words:        words,
		ContextLines: config.contextLines,
		Engine:       config.engine,
	})
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	return &Scanner{matcher: m, config: config}, nil
}

func (c *scannerConfig) loadWords() ([]*types.Word, error) {
	words := c.words
	switch {
	case words != nil:
	case c.wordlistFile != "":
		var err error
		words, err = wordlist.NewLoader().Fetch(context.Background(), c.wordlistFile, wordlist.SourceConfig{})
		if err != nil {
			return nil, fmt.Errorf("loading word list: %w", err)
		}
	default:
		var err error
		words, err = LoadBuiltinWords()
		if err != nil {
			return nil, fmt.Errorf("loading builtin words: %w", err)
		}
	}

	if len(c.categories) > 0 {
		var err error
		words, err = wordlist.Filter(words, wordlist.FilterConfig{Include: c.categories})
		if err != nil {
			return nil, fmt.Errorf("filtering words: %w", err)
		}
	}
	if len(words) == 0 {
		return nil, wordlist.ErrEmptyWordlist
	}
	return words, nil
}

// acquire read-locks the scanner; the caller must call s.mu.RUnlock.
func (s *Scanner) acquire() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	if s.matcher == nil {
		s.mu.RUnlock()
		return ErrNotInitialized
	}
	return nil
}

// ContainsProfanity reports whether text contains any loaded word.
func (s *Scanner) ContainsProfanity(text string) (bool, error) {
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.mu.RUnlock()

	if dm, ok := s.matcher.(*matcher.DATMatcher); ok {
		return dm.Contains([]byte(text))
	}
	matches, err := s.matcher.Match([]byte(text))
	return len(matches) > 0, err
}

// FindFirst returns the match that ends earliest in text, or nil when text
// is clean.
func (s *Scanner) FindFirst(text string) (*Match, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	if dm, ok := s.matcher.(*matcher.DATMatcher); ok {
		return dm.First([]byte(text))
	}
	matches, err := s.matcher.Match([]byte(text))
	if err != nil {
		return nil, err
	}
	var first *Match
	for _, m := range matches {
		if first == nil || endsBefore(m, first) {
			first = m
		}
	}
	return first, nil
}

// endsBefore orders matches by end offset, longer match first on a tie.
func endsBefore(a, b *Match) bool {
	if a.Location.Offset.End != b.Location.Offset.End {
		return a.Location.Offset.End < b.Location.Offset.End
	}
	return a.Location.Offset.Start < b.Location.Offset.Start
}

// ScanString returns every match in content.
func (s *Scanner) ScanString(content string) (*ScanResult, error) {
	return s.ScanBytes([]byte(content))
}

// ScanBytes returns every match in content.
func (s *Scanner) ScanBytes(content []byte) (*ScanResult, error) {
	return s.scan(content, "")
}

// ScanFile reads and scans a file.
func (s *Scanner) ScanFile(path string) (*ScanResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return s.scan(content, path)
}

func (s *Scanner) scan(content []byte, source string) (*ScanResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	matches, err := s.matcher.Match(content)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*Match{}
	}
	return &ScanResult{Source: source, Matches: matches}, nil
}

// Mask replaces every rune of every word in text with the mask rune.
// Overlapping words are masked once.
func (s *Scanner) Mask(text string) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.mu.RUnlock()

	matches, err := s.matcher.Match([]byte(text))
	if err != nil {
		return "", err
	}
	return matcher.MaskString(text, matches, s.config.maskRune), nil
}

// ProcessChatMessage removes URLs from a chat message and masks what is left.
func (s *Scanner) ProcessChatMessage(text string) (string, error) {
	return s.Mask(matcher.RemoveURLs(text))
}

// WordCount returns the number of words loaded.
func (s *Scanner) WordCount() int {
	if s == nil || s.config == nil {
		return 0
	}
	return len(s.config.words)
}

// Words returns a copy of the loaded words.
func (s *Scanner) Words() []*Word {
	if s == nil || s.config == nil {
		return nil
	}
	words := make([]*Word, len(s.config.words))
	copy(words, s.config.words)
	return words
}

// Close releases scanner resources. Methods called after Close return
// ErrClosed.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.matcher != nil {
		return s.matcher.Close()
	}
	return nil
}

// LoadBuiltinWords returns every builtin word.
func LoadBuiltinWords() ([]*Word, error) {
	return scanner.GetBuiltinWords()
}

// LoadWordlistFile loads words from a local .txt or .yml word list.
func LoadWordlistFile(path string) ([]*Word, error) {
	_, words, err := wordlist.NewLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	return words, nil
}
