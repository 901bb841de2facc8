package main

import (
	"fmt"
	"os"

	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/spf13/cobra"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1> <source2> [source3...]",
	Short: "Merge multiple wordscan datastores",
	Long: `Merge multiple wordscan datastores into a single output database.

Sources may be datastore directories, database files or PostgreSQL DSNs.
This is useful for combining results from distributed scans or
merging results from different scan targets.

Deduplication is automatic - duplicate blobs, matches, and findings
are only stored once in the merged database.

When --output is not given and $` + store.EnvPostgresDSN + ` is set, results are
merged into that PostgreSQL database.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path or PostgreSQL DSN")
}

func runMerge(cmd *cobra.Command, args []string) error {
	sources := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := resolveStorePath(arg)
		if err != nil {
			return err
		}
		sources = append(sources, path)
	}

	dest := mergeOutput
	if f := cmd.Flags().Lookup("output"); f != nil && !f.Changed {
		if dsn := os.Getenv(store.EnvPostgresDSN); dsn != "" {
			dest = dsn
		}
	}

	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: sources,
		DestPath:    dest,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Blobs merged: %d\n", stats.BlobsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Words merged: %d\n", stats.WordsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Matches merged: %d\n", stats.MatchesMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Findings merged: %d\n", stats.FindingsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Provenance merged: %d\n", stats.ProvenanceMerged)
	if store.IsPostgresDSN(dest) {
		fmt.Fprintf(cmd.OutOrStdout(), "Output: PostgreSQL\n")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", dest)
	}

	return nil
}
