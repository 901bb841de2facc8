package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chulbong-kr/wordscan/pkg/enum"
	"github.com/spf13/cobra"
)

var (
	scanWordlist      string
	scanCategories    string
	scanMinSeverity   string
	scanOutputPath    string
	scanOutputFormat  string
	scanColor         string
	scanGit           bool
	scanHistory       bool
	scanMessages      bool
	scanChannel       string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanContextLines  int
	scanEngine        string
	scanIncremental   bool
	scanExtract       string
	scanStoreBlobs    bool
	scanWorkers       int
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a target for forbidden words",
	Long: `Scan a file, directory, git repository or chat log for forbidden words.
Results are stored in a datastore directory and printed as a report.

Use --messages to treat the target as a chat log with one message per line
(plain text or JSON objects with channel, sender, sent_at and text); "-" reads
the log from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	scanCmd.Flags().StringVar(&scanCategories, "categories", "", "Keep words whose category or ID matches these regexes (comma-separated)")
	scanCmd.Flags().StringVar(&scanMinSeverity, "min-severity", "", "Drop words below this severity: low, medium, high")
	scanCmd.Flags().StringVar(&scanOutputPath, "datastore", defaultDatastore, "Datastore directory (\":memory:\" to keep nothing)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, sarif, human")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
	scanCmd.Flags().BoolVar(&scanGit, "git", false, "Treat target as git repository (scan the HEAD tree)")
	scanCmd.Flags().BoolVar(&scanHistory, "history", false, "With --git, scan every commit reachable from HEAD")
	scanCmd.Flags().BoolVar(&scanMessages, "messages", false, "Treat target as a chat log, one message per line")
	scanCmd.Flags().StringVar(&scanChannel, "channel", "", "Channel name for messages that carry none (default: target name)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().IntVar(&scanContextLines, "context-lines", 2, "Lines of context before/after matches (0 to disable)")
	scanCmd.Flags().StringVar(&scanEngine, "engine", "dat", "Matching engine: dat, regexp, hyperscan")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip already-scanned blobs")
	scanCmd.Flags().StringVar(&scanExtract, "extract", "", "Extract text from documents and archives: comma-separated extensions (pdf,docx,zip,...) or all")
	scanCmd.Flags().BoolVar(&scanStoreBlobs, "store-blobs", false, "Keep the content of blobs with matches in the datastore")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Parallel file reads (0 = one per CPU)")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx := commandContext(cmd)

	// Validate target exists
	if !(scanMessages && target == "-") {
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	words, err := loadWords(ctx, scanWordlist, scanCategories, scanMinSeverity)
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}
	debugLogger(cmd).Log("loaded %d words", len(words))

	out, err := openOutput(scanOutputPath, scanStoreBlobs)
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer out.Close()

	m, err := newMatcher(out, words, scanEngine, scanContextLines)
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer m.Close()

	enumerator, closer, err := createEnumerator(cmd, target)
	if err != nil {
		return fmt.Errorf("creating enumerator: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	p, err := newPipeline(out, m, words, scanIncremental)
	if err != nil {
		return err
	}
	if err := p.run(ctx, enumerator); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	printSummary(cmd, "Scan", p.stats, scanOutputPath, scanIncremental)
	return outputResults(cmd, out.store, scanOutputFormat, scanColor)
}

// =============================================================================
// HELPERS
// =============================================================================

// createEnumerator picks the enumerator for target from the scan flags. The
// returned closer, when non-nil, must be closed after the scan.
func createEnumerator(cmd *cobra.Command, target string) (enum.Enumerator, io.Closer, error) {
	config := enum.Config{
		Root:           target,
		IncludeHidden:  scanIncludeHidden,
		MaxFileSize:    scanMaxFileSize,
		FollowSymlinks: false,
		Extract:        scanExtract,
		Workers:        scanWorkers,
	}

	switch {
	case scanMessages:
		channel := scanChannel
		if channel == "" {
			channel = target
		}
		if target == "-" {
			if channel == "-" {
				channel = "stdin"
			}
			return enum.NewMessageEnumerator(cmd.InOrStdin(), channel), nil, nil
		}
		f, err := os.Open(target)
		if err != nil {
			return nil, nil, err
		}
		return enum.NewMessageEnumerator(f, channel), f, nil

	case scanGit:
		g := enum.NewGitEnumerator(config)
		g.History = scanHistory
		return g, nil, nil

	default:
		return enum.NewFilesystemEnumerator(config), nil, nil
	}
}

// printSummary reports scan totals. They go to stderr so that json and
// sarif output on stdout stays machine readable.
func printSummary(cmd *cobra.Command, what string, stats scanStats, dest string, incremental bool) {
	progress(cmd, "%s complete: %d blobs, %d matches, %d findings", what, stats.Blobs, stats.Matches, stats.Findings)
	if incremental {
		progress(cmd, " (%d blobs skipped)", stats.Skipped)
	}
	progress(cmd, "\nResults stored in: %s\n", dest)
}
