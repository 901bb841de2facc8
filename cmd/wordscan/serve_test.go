package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Exists(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("wordlist"))
	assert.NotNil(t, cmd.Flags().Lookup("categories"))
}

func TestServeCommand_Integration(t *testing.T) {
	serveWordlist = ""
	serveCategories = ""

	pr, pw := io.Pipe()
	out := &bytes.Buffer{}

	testCmd := &cobra.Command{Use: "serve", RunE: runServe}
	testCmd.SetIn(pr)
	testCmd.SetOut(out)
	testCmd.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() {
		done <- testCmd.Execute()
	}()

	requests := strings.Join([]string{
		`{"id":"1","type":"check","payload":{"text":"야 시발"}}`,
		`{"id":"2","type":"close","payload":{}}`,
	}, "\n") + "\n"
	_, err := pw.Write([]byte(requests))
	require.NoError(t, err)
	pw.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("serve command did not exit")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], `"type":"ready"`)
	assert.Contains(t, lines[1], `"id":"1"`)
	assert.Contains(t, lines[1], `"success":true`)
}
