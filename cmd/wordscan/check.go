package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chulbong-kr/wordscan"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	checkWordlist   string
	checkCategories string
	checkEngine     string
	checkMask       bool
	checkStripURLs  bool
	checkJSON       bool
)

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Check a piece of text for forbidden words",
	Long: `Check text given as arguments, or read from stdin, for forbidden words.

The exit status is 0 when the text is clean and 1 when a word was found,
so check can gate chat messages or commit messages in scripts.

With --mask the text is printed with every match masked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	checkCmd.Flags().StringVar(&checkCategories, "categories", "", "Keep words whose category or ID matches these regexes (comma-separated)")
	checkCmd.Flags().StringVar(&checkEngine, "engine", "dat", "Matching engine: dat, regexp, hyperscan")
	checkCmd.Flags().BoolVar(&checkMask, "mask", false, "Print the text with matches masked")
	checkCmd.Flags().BoolVar(&checkStripURLs, "strip-urls", false, "With --mask, remove URLs before masking")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the result as JSON")
}

// checkMatch is the JSON form of one match found by check.
type checkMatch struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Matched  string `json:"matched"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

type checkOutput struct {
	Matched bool         `json:"matched"`
	Matches []checkMatch `json:"matches"`
	Masked  *string      `json:"masked,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := checkInput(cmd, args)
	if err != nil {
		return err
	}

	words, err := loadWords(commandContext(cmd), checkWordlist, checkCategories, "")
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	s, err := wordscan.NewScanner(
		wordscan.WithWords(words),
		wordscan.WithEngine(checkEngine),
		wordscan.WithContextLines(0),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.ScanString(text)
	if err != nil {
		return err
	}

	var masked *string
	if checkMask {
		var m string
		if checkStripURLs {
			m, err = s.ProcessChatMessage(text)
		} else {
			m, err = s.Mask(text)
		}
		if err != nil {
			return err
		}
		masked = &m
	}

	if checkJSON {
		out := checkOutput{
			Matched: len(result.Matches) > 0,
			Matches: make([]checkMatch, 0, len(result.Matches)),
			Masked:  masked,
		}
		for _, m := range result.Matches {
			out.Matches = append(out.Matches, checkMatch{
				Word:     m.Word,
				Category: m.Category,
				Severity: string(m.Severity),
				Matched:  string(m.Matched),
				Start:    m.Location.Offset.Start,
				End:      m.Location.Offset.End,
				Line:     m.Location.Source.Start.Line,
				Column:   m.Location.Source.Start.Column,
			})
		}
		if err := outputJSON(cmd, out); err != nil {
			return err
		}
	} else if masked != nil {
		fmt.Fprintln(cmd.OutOrStdout(), *masked)
	} else {
		for _, m := range result.Matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%d:%d\t%s\t%s\t%s\n",
				m.Location.Source.Start.Line, m.Location.Source.Start.Column,
				m.Matched, m.Category, m.Severity)
		}
	}

	if len(result.Matches) > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// checkInput joins args, or reads stdin when there are none. A terminal on
// stdin is rejected rather than waited on.
func checkInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no text given: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
