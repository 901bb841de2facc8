package main

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/datastore"
	"github.com/spf13/cobra"
)

var (
	compileWordlist    string
	compileCategories  string
	compileMinSeverity string
	compileDatastore   string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the word list into a datastore automaton",
	Long: `Build the double-array automaton for a word list and save it in a datastore
directory. Later scans into the same datastore load the saved automaton
instead of rebuilding it, as long as the word list has not changed.`,
	Args: cobra.NoArgs,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	compileCmd.Flags().StringVar(&compileCategories, "categories", "", "Keep words whose category or ID matches these regexes (comma-separated)")
	compileCmd.Flags().StringVar(&compileMinSeverity, "min-severity", "", "Drop words below this severity: low, medium, high")
	compileCmd.Flags().StringVar(&compileDatastore, "datastore", defaultDatastore, "Datastore directory")
}

func runCompile(cmd *cobra.Command, args []string) error {
	words, err := loadWords(commandContext(cmd), compileWordlist, compileCategories, compileMinSeverity)
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	ds, err := datastore.Open(compileDatastore, datastore.Options{})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer ds.Close()

	if _, err := ds.SaveAutomaton(words); err != nil {
		return fmt.Errorf("compiling automaton: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d words into %s\n", len(words), ds.AutomatonPath())
	return nil
}
