package main

import (
	"fmt"
	"os"

	"github.com/chulbong-kr/wordscan/pkg/sarif"
	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// maxMatchesShown caps the matches printed under each finding.
const maxMatchesShown = 3

// styles holds the color formatters of human output.
type styles struct {
	findingHeading *color.Color
	id             *color.Color
	word           *color.Color
	heading        *color.Color
	match          *color.Color
	metadata       *color.Color
	severity       map[types.Severity]*color.Color
}

// newStyles creates color formatters for human output.
// enabled=false respects --color=never and the NO_COLOR env var.
func newStyles(enabled bool) *styles {
	s := &styles{
		findingHeading: color.New(color.Bold, color.FgHiWhite),
		id:             color.New(color.FgHiGreen),
		word:           color.New(color.Bold, color.FgHiRed),
		heading:        color.New(color.Bold),
		match:          color.New(color.FgYellow),
		metadata:       color.New(color.FgHiBlue),
		severity: map[types.Severity]*color.Color{
			types.SeverityHigh:   color.New(color.FgRed),
			types.SeverityMedium: color.New(color.FgYellow),
			types.SeverityLow:    color.New(color.FgCyan),
		},
	}

	if !enabled {
		for _, c := range []*color.Color{s.findingHeading, s.id, s.word, s.heading, s.match, s.metadata} {
			c.DisableColor()
		}
		for _, c := range s.severity {
			c.DisableColor()
		}
	}
	return s
}

func (s *styles) sev(sev types.Severity) string {
	if c, ok := s.severity[sev]; ok {
		return c.Sprint(string(sev))
	}
	return string(sev)
}

// colorEnabled resolves a --color value: always, never or auto.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

// snippetParts holds separated snippet components for colored output
type snippetParts struct {
	prefix   string // "..." if truncated at start
	before   string
	matching string
	after    string
	suffix   string // "..." if truncated at end
}

// formatSnippetWithParts cuts before/matching/after to at most maxLen runes,
// centering the window on the match.
func formatSnippetWithParts(before, matching, after []byte, maxLen int) snippetParts {
	b, m, a := []rune(string(before)), []rune(string(matching)), []rune(string(after))

	if len(b)+len(m)+len(a) <= maxLen {
		return snippetParts{before: string(b), matching: string(m), after: string(a)}
	}
	if len(m) >= maxLen {
		return snippetParts{prefix: "...", matching: string(m[:maxLen-6]), suffix: "..."}
	}

	// 6 runes are reserved for the "..." markers.
	half := (maxLen - len(m) - 6) / 2
	keepBefore, keepAfter := half, half
	if len(b) < keepBefore {
		keepAfter += keepBefore - len(b)
		keepBefore = len(b)
	}
	if len(a) < keepAfter {
		keepBefore += keepAfter - len(a)
		if keepBefore > len(b) {
			keepBefore = len(b)
		}
		keepAfter = len(a)
	}

	parts := snippetParts{
		before:   string(b[len(b)-keepBefore:]),
		matching: string(m),
		after:    string(a[:keepAfter]),
	}
	if keepBefore < len(b) {
		parts.prefix = "..."
	}
	if keepAfter < len(a) {
		parts.suffix = "..."
	}
	return parts
}

// provenanceCache resolves display paths of blobs, one query per blob.
type provenanceCache struct {
	store store.Store
	paths map[types.BlobID]string
}

func newProvenanceCache(s store.Store) *provenanceCache {
	return &provenanceCache{store: s, paths: make(map[types.BlobID]string)}
}

// path returns the first non-empty provenance path of id, or its hex ID.
func (c *provenanceCache) path(id types.BlobID) string {
	if p, ok := c.paths[id]; ok {
		return p
	}
	p := id.Hex()
	if provs, err := c.store.GetProvenance(id); err == nil {
		for _, prov := range provs {
			if prov.Path() != "" {
				p = prov.Path()
				break
			}
		}
	}
	c.paths[id] = p
	return p
}

// outputFindingsHuman prints findings with their first matches.
func outputFindingsHuman(cmd *cobra.Command, s store.Store, findings []*types.Finding, colorMode string) error {
	out := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintf(out, "\nNo findings.\n")
		return nil
	}

	st := newStyles(colorEnabled(colorMode))
	provs := newProvenanceCache(s)

	for i, f := range findings {
		fmt.Fprintf(out, "%s (%s %s)\n",
			st.findingHeading.Sprintf("Finding %d/%d", i+1, len(findings)),
			st.heading.Sprint("id"),
			st.id.Sprint(f.ID))

		severity := ""
		if len(f.Matches) > 0 && f.Matches[0].Severity != "" {
			severity = ", " + st.sev(f.Matches[0].Severity)
		}
		fmt.Fprintf(out, "%s %s (%s%s)\n", st.heading.Sprint("Word:"), st.word.Sprint(f.Text), f.Category, severity)

		shown := f.Matches
		if len(shown) > maxMatchesShown {
			fmt.Fprintf(out, "Showing %d/%d matches:\n", maxMatchesShown, len(f.Matches))
			shown = shown[:maxMatchesShown]
		}

		for k, m := range shown {
			fmt.Fprintf(out, "\n    %s (%s %s)\n",
				st.heading.Sprintf("Match %d/%d", k+1, len(f.Matches)),
				st.heading.Sprint("id"),
				st.id.Sprint(m.StructuralID))
			fmt.Fprintf(out, "    %s %s\n", st.heading.Sprint("File:"), st.metadata.Sprint(provs.path(m.BlobID)))
			fmt.Fprintf(out, "    %s %s\n", st.heading.Sprint("Blob:"), st.metadata.Sprint(m.BlobID.Hex()))
			if m.Location.Source.Start.Line > 0 {
				fmt.Fprintf(out, "    %s %d:%d-%d:%d\n",
					st.heading.Sprint("Lines:"),
					m.Location.Source.Start.Line, m.Location.Source.Start.Column,
					m.Location.Source.End.Line, m.Location.Source.End.Column)
			}

			parts := formatSnippetWithParts(m.Snippet.Before, m.Snippet.Matching, m.Snippet.After, 300)
			fmt.Fprintf(out, "\n        %s%s%s%s%s\n",
				parts.prefix, parts.before, st.match.Sprint(parts.matching), parts.after, parts.suffix)
		}
		fmt.Fprintf(out, "\n\n")
	}
	return nil
}

// outputSARIF writes matches as a SARIF 2.1.0 report. Every stored word
// becomes a rule.
func outputSARIF(cmd *cobra.Command, s store.Store, matches []*types.Match) error {
	report := sarif.NewReport(version)

	words, err := s.GetWords()
	if err != nil {
		return fmt.Errorf("retrieving words: %w", err)
	}
	for _, w := range words {
		report.AddWord(w)
	}

	provs := newProvenanceCache(s)
	for _, m := range matches {
		report.AddResult(m, provs.path(m.BlobID))
	}

	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}

// outputResults prints the contents of s in format: human, json or sarif.
func outputResults(cmd *cobra.Command, s store.Store, format, colorMode string) error {
	switch format {
	case "json":
		findings, err := s.GetFindings()
		if err != nil {
			return fmt.Errorf("retrieving findings: %w", err)
		}
		if findings == nil {
			findings = []*types.Finding{}
		}
		return outputJSON(cmd, findings)
	case "sarif":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputSARIF(cmd, s, matches)
	case "human":
		findings, err := s.GetFindings()
		if err != nil {
			return fmt.Errorf("retrieving findings: %w", err)
		}
		return outputFindingsHuman(cmd, s, findings, colorMode)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
