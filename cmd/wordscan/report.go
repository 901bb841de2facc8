package main

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/spf13/cobra"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read findings from a datastore and output a summary report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", defaultDatastore, "Path to datastore directory, database file or PostgreSQL DSN")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
}

func runReport(cmd *cobra.Command, args []string) error {
	storePath, err := resolveStorePath(reportDatastore)
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	return outputResults(cmd, s, reportFormat, reportColor)
}
