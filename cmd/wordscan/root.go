package main

import (
	"context"
	"fmt"
	"io"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "wordscan",
	Short: "wordscan - forbidden word scanner",
	Long: `wordscan finds profanity and other forbidden words in text, files, chat logs,
and git repositories. Words are compiled into a double-array Aho-Corasick automaton,
so every word is searched for in a single pass over the input.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(gitlabCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// exitError ends the process with code and no message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// writerLogger is a scanner.DebugLogger writing one line per call.
type writerLogger struct {
	w io.Writer
}

func (l writerLogger) Log(format string, args ...interface{}) {
	fmt.Fprintf(l.w, "[debug] "+format+"\n", args...)
}

// debugLogger returns a stderr logger under --verbose and a no-op otherwise.
func debugLogger(cmd *cobra.Command) scanner.DebugLogger {
	if verbose {
		return writerLogger{w: cmd.ErrOrStderr()}
	}
	return scanner.NoopLogger{}
}

// progress writes a status line to stderr unless --quiet is set.
func progress(cmd *cobra.Command, format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

// commandContext returns the command's context, or a background context when
// the command was run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
