package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
	"github.com/chulbong-kr/wordscan/pkg/serve"
	"github.com/spf13/cobra"
)

var (
	serveWordlist   string
	serveCategories string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming server for chat and editor integrations",
	Long: `Run wordscan as a long-lived streaming server that accepts requests
via stdin and writes responses to stdout using NDJSON format.

The process compiles the word list once at startup and processes check,
scan, scan_batch and mask requests until stdin closes, a close request
arrives, or SIGTERM is received.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveWordlist, "wordlist", "", "Word list: file, s3://bucket/key or azblob://container/blob (default: builtin)")
	serveCmd.Flags().StringVar(&serveCategories, "categories", "", "Keep words whose category or ID matches these regexes (comma-separated)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	words, err := loadWords(ctx, serveWordlist, serveCategories, "")
	if err != nil {
		return fmt.Errorf("loading words: %w", err)
	}

	logger := debugLogger(cmd)
	core, err := scanner.NewCoreWithWords(words, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout())
	srv.SetLogger(logger)
	return srv.Run(ctx)
}
