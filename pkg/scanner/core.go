package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/dat"
	"github.com/chulbong-kr/wordscan/pkg/matcher"
	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
)

var (
	// ErrClosed is returned by every Core method after Close.
	ErrClosed = errors.New("scanner: closed")

	// ErrNotInitialized is returned when no word list has been loaded.
	ErrNotInitialized = fmt.Errorf("scanner: %w", dat.ErrNotInitialized)
)

var (
	// cachedBuiltinWords holds builtin words loaded once per process
	cachedBuiltinWords []*types.Word
	cachedWordsErr     error
	cacheOnce          sync.Once
)

// loadBuiltinWordsCached loads builtin words once and caches them
func loadBuiltinWordsCached() ([]*types.Word, error) {
	cacheOnce.Do(func() {
		cachedBuiltinWords, cachedWordsErr = wordlist.NewLoader().LoadBuiltinWords()
	})
	return cachedBuiltinWords, cachedWordsErr
}

// Core wraps the matcher and store for scanning operations
type Core struct {
	mu       sync.RWMutex
	matcher  *matcher.DATMatcher
	store    store.Store
	words    []*types.Word
	logger   DebugLogger
	maskRune rune
	closed   bool
}

// NewCore creates a new Core scanner with the given words.
// wordsJSON can be:
// - "" or "builtin" to load builtin words (cached)
// - a JSON array of word objects
// - a JSON array of plain strings
func NewCore(wordsJSON string, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	logger.Log("NewCore starting...")

	words, err := parseWords(wordsJSON, logger)
	if err != nil {
		return nil, err
	}
	return NewCoreWithWords(words, logger)
}

// NewCoreWithWords creates a Core over an already loaded word list.
func NewCoreWithWords(words []*types.Word, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("creating core: %w", wordlist.ErrEmptyWordlist)
	}

	logger.Log("Building automaton with %d words...", len(words))
	m, err := matcher.NewDAT(words, 2)
	if err != nil {
		logger.Log("matcher.NewDAT failed: %v", err)
		return nil, err
	}
	logger.Log("Automaton built successfully")

	s, err := store.New(store.Config{Path: store.MemoryPath})
	if err != nil {
		logger.Log("store.New failed: %v", err)
		return nil, err
	}

	logger.Log("NewCore complete")
	return &Core{
		matcher:  m,
		store:    s,
		words:    words,
		logger:   logger,
		maskRune: matcher.DefaultMaskRune,
	}, nil
}

func parseWords(wordsJSON string, logger DebugLogger) ([]*types.Word, error) {
	if wordsJSON == "" || wordsJSON == "builtin" {
		logger.Log("Loading builtin words (cached)...")
		words, err := loadBuiltinWordsCached()
		if err != nil {
			logger.Log("loadBuiltinWordsCached failed: %v", err)
			return nil, err
		}
		logger.Log("Loaded %d builtin words", len(words))
		return words, nil
	}

	logger.Log("Parsing custom words JSON...")
	var texts []string
	if err := json.Unmarshal([]byte(wordsJSON), &texts); err == nil {
		words := wordlist.FromStrings("custom", texts)
		logger.Log("Parsed %d custom words", len(words))
		return words, nil
	}

	var words []*types.Word
	if err := json.Unmarshal([]byte(wordsJSON), &words); err != nil {
		logger.Log("JSON unmarshal failed: %v", err)
		return nil, fmt.Errorf("parsing words: %w", err)
	}
	for _, w := range words {
		if w.Category == "" {
			w.Category = wordlist.DefaultCategory
		}
		if w.StructuralID == "" {
			w.StructuralID = w.ComputeStructuralID()
		}
	}
	logger.Log("Parsed %d custom words", len(words))
	return wordlist.Dedupe(words), nil
}

// acquire read-locks the core; the caller must call c.mu.RUnlock.
func (c *Core) acquire() error {
	if c == nil {
		return ErrNotInitialized
	}
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrClosed
	}
	if c.matcher == nil {
		c.mu.RUnlock()
		return ErrNotInitialized
	}
	return nil
}

// Check reports whether text contains any word.
func (c *Core) Check(text string) (*CheckResult, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	first, err := c.matcher.First([]byte(text))
	if err != nil {
		return nil, err
	}
	return &CheckResult{Matched: first != nil, First: first}, nil
}

// Scan scans a single content string
func (c *Core) Scan(content, source string) (*ScanResult, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	matches, err := c.scan([]byte(content))
	if err != nil {
		return nil, err
	}
	return &ScanResult{
		Source:  source,
		Matches: matches,
	}, nil
}

// ScanBatch scans multiple content items
func (c *Core) ScanBatch(items []ContentItem) (*BatchScanResult, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	results := []ScanResult{}
	total := 0

	for _, item := range items {
		matches, err := c.scan([]byte(item.Content))
		if err != nil {
			// Skip items that fail to scan
			c.logger.Log("scanning %s: %v", item.Source, err)
			continue
		}

		results = append(results, ScanResult{
			Source:  item.Source,
			Matches: matches,
		})
		total += len(matches)
	}

	return &BatchScanResult{
		Results: results,
		Total:   total,
	}, nil
}

func (c *Core) scan(content []byte) ([]*types.Match, error) {
	blobID := types.ComputeBlobID(content)
	matches, err := c.matcher.MatchWithBlobID(content, blobID)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*types.Match{}
	}

	// Store matches
	if err := c.store.AddBlob(blobID, int64(len(content))); err != nil {
		c.logger.Log("store.AddBlob failed: %v", err)
	}
	for _, match := range matches {
		if err := c.store.AddMatch(match); err != nil {
			c.logger.Log("store.AddMatch failed: %v", err)
		}
	}
	return matches, nil
}

// Mask replaces every rune of every word in text with the mask rune. With
// stripURLs, URLs are removed first.
func (c *Core) Mask(text string, stripURLs bool) (string, error) {
	if err := c.acquire(); err != nil {
		return "", err
	}
	defer c.mu.RUnlock()

	if stripURLs {
		text = matcher.RemoveURLs(text)
	}
	matches, err := c.matcher.Match([]byte(text))
	if err != nil {
		return "", err
	}
	return matcher.MaskString(text, matches, c.maskRune), nil
}

// Words returns the loaded words.
func (c *Core) Words() []*types.Word {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	words := make([]*types.Word, len(c.words))
	copy(words, c.words)
	return words
}

// Store exposes the in-memory store holding every match scanned so far.
func (c *Core) Store() store.Store {
	return c.store
}

// Close releases scanner resources. Closing twice is a no-op.
func (c *Core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.matcher != nil {
		c.matcher.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// GetBuiltinWords returns the built-in words (cached)
func GetBuiltinWords() ([]*types.Word, error) {
	return loadBuiltinWordsCached()
}
