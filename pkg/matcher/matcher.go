package matcher

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// Matcher scans content for word matches.
type Matcher interface {
	// Match scans content against all loaded words.
	Match(content []byte) ([]*types.Match, error)

	// MatchWithBlobID scans content with a known BlobID.
	MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error)

	// Close releases resources (e.g., Hyperscan scratch space).
	Close() error
}

// Engine names accepted by Config.Engine.
const (
	EngineDAT       = "dat"
	EngineRegexp    = "regexp"
	EngineHyperscan = "hyperscan"
)

// Engines lists the engine names in the order the CLI documents them.
var Engines = []string{EngineDAT, EngineRegexp, EngineHyperscan}

// Config for matcher initialization.
type Config struct {
	// Words to compile into the matcher
	Words []*types.Word

	// ContextLines is the number of lines captured before and after each match
	ContextLines int

	// Engine selects the implementation; empty means EngineDAT
	Engine string
}

// New creates a Matcher for cfg.Engine.
func New(cfg Config) (Matcher, error) {
	switch cfg.Engine {
	case "", EngineDAT:
		return NewDAT(cfg.Words, cfg.ContextLines)
	case EngineRegexp:
		return NewRegexp(cfg.Words, cfg.ContextLines)
	case EngineHyperscan:
		return NewHyperscan(cfg.Words, cfg.ContextLines)
	default:
		return nil, fmt.Errorf("unknown engine %q (want one of %v)", cfg.Engine, Engines)
	}
}

// HyperscanAvailable reports whether this binary was built with Hyperscan.
func HyperscanAvailable() bool {
	return hyperscanAvailable()
}

// buildMatch assembles a Match for word at content[start:end].
func buildMatch(blobID types.BlobID, word *types.Word, content []byte, lines *types.LineIndex, start, end, contextLines int) *types.Match {
	var before, after []byte
	if contextLines > 0 {
		before, after = ExtractContext(content, start, end, contextLines)
	}

	// Copy so the match does not pin the scanned blob.
	matched := append([]byte(nil), content[start:end]...)

	m := &types.Match{
		BlobID:   blobID,
		WordID:   word.ID,
		Word:     word.Text,
		Category: word.Category,
		Severity: word.Severity,
		Location: types.Location{
			Offset: types.OffsetSpan{Start: int64(start), End: int64(end)},
			Source: lines.Span(start, end),
		},
		Matched: matched,
		Snippet: types.Snippet{
			Before:   before,
			Matching: matched,
			After:    after,
		},
	}
	m.StructuralID = m.ComputeStructuralID(word.StructuralID)
	m.FindingID = types.ComputeFindingID(word.StructuralID, matched)
	return m
}

func checkWords(words []*types.Word) error {
	if len(words) == 0 {
		return fmt.Errorf("no words provided")
	}
	for _, w := range words {
		if w == nil || w.Text == "" {
			return fmt.Errorf("word list contains an empty word")
		}
	}
	return nil
}
