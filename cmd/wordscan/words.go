package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/chulbong-kr/wordscan/pkg/wordlist"
	"github.com/spf13/cobra"
)

var (
	wordsPath       string
	wordsCategories string
	wordsFormat     string
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Manage word lists",
	Long:  "Commands for listing and validating forbidden word lists",
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded words",
	Long:  "Display every loaded word with its ID, category and severity",
	RunE:  runWordsList,
}

var wordsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a word list",
	Long:  "Check that every word has an ID, text and category, and that IDs are unique",
	RunE:  runWordsValidate,
}

func init() {
	wordsCmd.AddCommand(wordsListCmd)
	wordsCmd.AddCommand(wordsValidateCmd)
	wordsCmd.PersistentFlags().StringVar(&wordsPath, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: $"+wordlist.EnvWordlist+" or builtin)")
	wordsListCmd.Flags().StringVar(&wordsCategories, "categories", "", "Keep words whose category or ID matches these regexes (comma-separated)")
	wordsListCmd.Flags().StringVar(&wordsFormat, "format", "table", "Output format: table, json")
}

func runWordsList(cmd *cobra.Command, args []string) error {
	words, err := loadWords(commandContext(cmd), wordsPath, wordsCategories, "")
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	switch wordsFormat {
	case "json":
		return outputJSON(cmd, words)
	case "table":
		return outputWordsTable(cmd, words)
	default:
		return fmt.Errorf("unknown output format: %s", wordsFormat)
	}
}

func runWordsValidate(cmd *cobra.Command, args []string) error {
	words, err := loadWords(commandContext(cmd), wordsPath, "", "")
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	errs := wordlist.ValidateAll(words)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid: %v\n", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d words are invalid", len(errs), len(words))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d words OK (%d categories)\n", len(words), len(wordlist.Categories(words)))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadWords loads the word list at location, falling back to
// $WORDSCAN_WORDLIST and then the builtin lists, and applies the category
// and severity filters.
func loadWords(ctx context.Context, location, categories, minSeverity string) ([]*types.Word, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if location == "" {
		location = os.Getenv(wordlist.EnvWordlist)
	}

	loader := wordlist.NewLoader()
	var (
		words []*types.Word
		err   error
	)
	if location == "" || location == "builtin" {
		words, err = loader.LoadBuiltinWords()
	} else {
		words, err = loader.Fetch(ctx, location, wordlist.SourceConfig{})
	}
	if err != nil {
		return nil, err
	}

	if categories != "" || minSeverity != "" {
		words, err = wordlist.Filter(words, wordlist.FilterConfig{
			Include:     wordlist.ParsePatterns(categories),
			MinSeverity: types.Severity(minSeverity),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering words: %w", err)
		}
	}
	if len(words) == 0 {
		return nil, wordlist.ErrEmptyWordlist
	}
	return words, nil
}

func outputJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputWordsTable(cmd *cobra.Command, words []*types.Word) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tText\tCategory\tSeverity\n")
	fmt.Fprintf(w, "--\t----\t--------\t--------\n")

	for _, word := range words {
		severity := string(word.Severity)
		if severity == "" {
			severity = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", word.ID, word.Text, word.Category, severity)
	}
	return nil
}
