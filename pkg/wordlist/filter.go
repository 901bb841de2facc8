package wordlist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// FilterConfig selects words by category or ID. Include and Exclude are
// regular expressions matched against both the category and the word ID.
type FilterConfig struct {
	Include     []string
	Exclude     []string
	MinSeverity types.Severity // words ranked below this are dropped; "" keeps all
}

// ParsePatterns splits a comma-separated flag value, trimming blanks.
func ParsePatterns(patterns string) []string {
	var out []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Filter applies cfg to words. Include runs first and an empty Include keeps
// everything; Exclude then removes matches.
func Filter(words []*types.Word, cfg FilterConfig) ([]*types.Word, error) {
	include, err := compileAll(cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	minRank := cfg.MinSeverity.Rank()
	if cfg.MinSeverity != "" && minRank == 0 {
		return nil, fmt.Errorf("unknown severity %q", cfg.MinSeverity)
	}

	out := make([]*types.Word, 0, len(words))
	for _, w := range words {
		if len(include) > 0 && !selects(w, include) {
			continue
		}
		if selects(w, exclude) {
			continue
		}
		if cfg.MinSeverity != "" && w.Severity.Rank() < minRank {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Categories returns the distinct categories of words in first-seen order.
func Categories(words []*types.Word) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range words {
		if !seen[w.Category] {
			seen[w.Category] = true
			out = append(out, w.Category)
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func selects(w *types.Word, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(w.Category) || re.MatchString(w.ID) {
			return true
		}
	}
	return false
}
