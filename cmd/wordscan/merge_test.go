package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/datastore"
	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMergeCmd creates a fresh merge command for testing
func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "merge <source1> <source2> [source3...]",
		Args: cobra.MinimumNArgs(2),
		RunE: runMerge,
	}
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
	return cmd
}

func seedSource(t *testing.T, path, content, findingID string) {
	t.Helper()
	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddBlob(types.ComputeBlobID([]byte(content)), int64(len(content))))
	require.NoError(t, s.AddFinding(&types.Finding{ID: findingID, WordID: "ko.1", Text: "시발"}))
}

func TestMergeCmd_RequiresMinimumArgs(t *testing.T) {
	cmd := newMergeCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")

	cmd = newMergeCmd()
	cmd.SetArgs([]string{"source1.db"})
	err = cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

func TestMergeCmd_MergesTwoDatabases(t *testing.T) {
	t.Setenv(store.EnvPostgresDSN, "")
	tmpDir := t.TempDir()

	source1 := filepath.Join(tmpDir, "source1.db")
	source2 := filepath.Join(tmpDir, "source2.db")
	seedSource(t, source1, "content1", "finding1")
	seedSource(t, source2, "content2", "finding2")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1, source2, "--output", destPath})
	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Merge complete")
	assert.Contains(t, output, "Sources processed: 2")
	assert.Contains(t, output, "Blobs merged: 2")
	assert.Contains(t, output, "Findings merged: 2")
	assert.Contains(t, output, "Output: "+destPath)

	dest, err := store.NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	blobs, err := dest.GetBlobs()
	require.NoError(t, err)
	assert.Len(t, blobs, 2)
	findings, err := dest.GetFindings()
	require.NoError(t, err)
	assert.Len(t, findings, 2)
}

func TestMergeCmd_Deduplicates(t *testing.T) {
	t.Setenv(store.EnvPostgresDSN, "")
	tmpDir := t.TempDir()

	source1 := filepath.Join(tmpDir, "source1.db")
	source2 := filepath.Join(tmpDir, "source2.db")
	seedSource(t, source1, "same content", "finding1")
	seedSource(t, source2, "same content", "finding1")

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1, source2, "-o", destPath})
	require.NoError(t, cmd.Execute())

	dest, err := store.NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	blobs, err := dest.GetBlobs()
	require.NoError(t, err)
	assert.Len(t, blobs, 1)
	findings, err := dest.GetFindings()
	require.NoError(t, err)
	assert.Len(t, findings, 1)
}

func TestMergeCmd_DatastoreDirectories(t *testing.T) {
	t.Setenv(store.EnvPostgresDSN, "")
	tmpDir := t.TempDir()

	var sources []string
	for i, content := range []string{"first", "second"} {
		path := filepath.Join(tmpDir, "ds"+string(rune('a'+i)))
		ds, err := datastore.Open(path, datastore.Options{})
		require.NoError(t, err)
		require.NoError(t, ds.Store.AddBlob(types.ComputeBlobID([]byte(content)), int64(len(content))))
		require.NoError(t, ds.Close())
		sources = append(sources, path)
	}

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(append(sources, "-o", destPath))
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "Blobs merged: 2")
}

func TestMergeCmd_NonexistentSource(t *testing.T) {
	tmpDir := t.TempDir()
	source1 := filepath.Join(tmpDir, "source1.db")
	seedSource(t, source1, "content1", "finding1")

	cmd := newMergeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{source1, filepath.Join(tmpDir, "missing.db"), "-o", filepath.Join(tmpDir, "merged.db")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datastore not found")
}

func TestMergeCmd_OutputFlag(t *testing.T) {
	cmd := newMergeCmd()
	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "merged.db", flag.DefValue)
}
