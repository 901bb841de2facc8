package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/store"
	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newReportCmd creates a fresh report command for testing
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "report",
		RunE: runReport,
	}
	cmd.Flags().StringVar(&reportDatastore, "datastore", defaultDatastore, "")
	cmd.Flags().StringVar(&reportFormat, "format", "human", "")
	cmd.Flags().StringVar(&reportColor, "color", "never", "")
	return cmd
}

// seedStore writes one finding for "fuck" seen in notes.txt.
func seedStore(t *testing.T, s store.Store) {
	t.Helper()
	w := &types.Word{ID: "en.1", Text: "fuck", Category: "profanity", Severity: types.SeverityHigh}
	w.StructuralID = w.ComputeStructuralID()

	content := []byte("well fuck that\n")
	blobID := types.ComputeBlobID(content)
	m := &types.Match{
		BlobID:   blobID,
		WordID:   w.ID,
		Word:     w.Text,
		Category: w.Category,
		Severity: w.Severity,
		Location: types.Location{
			Offset: types.OffsetSpan{Start: 5, End: 9},
			Source: types.SourceSpan{
				Start: types.SourcePoint{Line: 1, Column: 6},
				End:   types.SourcePoint{Line: 1, Column: 10},
			},
		},
		Matched: []byte("fuck"),
		Snippet: types.Snippet{Before: []byte("well "), Matching: []byte("fuck"), After: []byte(" that\n")},
	}
	m.StructuralID = m.ComputeStructuralID(w.StructuralID)
	m.FindingID = types.ComputeFindingID(w.StructuralID, m.Matched)

	require.NoError(t, s.AddWord(w))
	require.NoError(t, s.AddBlob(blobID, int64(len(content))))
	require.NoError(t, s.AddProvenance(blobID, types.FileProvenance{FilePath: "notes.txt"}))
	require.NoError(t, s.AddMatch(m))
	require.NoError(t, s.AddFinding(&types.Finding{ID: m.FindingID, WordID: w.ID, Category: w.Category, Text: "fuck"}))
}

func TestReportCommand_HumanFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	seedStore(t, s)
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "human"})
	require.NoError(t, cmd.Execute())

	output := stdout.String()
	assert.Contains(t, output, "Finding 1/1")
	assert.Contains(t, output, "Word: fuck (profanity, high)")
	assert.Contains(t, output, "File: notes.txt")
	assert.Contains(t, output, "Lines: 1:6-1:10")
	assert.Contains(t, output, "well fuck that")
}

func TestReportCommand_JSONFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scan.ds")
	out, err := openOutput(dir, false)
	require.NoError(t, err)
	seedStore(t, out.store)
	require.NoError(t, out.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--datastore", dir, "--format", "json"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), `"Text": "fuck"`)
	assert.Contains(t, stdout.String(), `"WordID": "en.1"`)
}

func TestReportCommand_SARIFFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	seedStore(t, s)
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "sarif"})
	require.NoError(t, cmd.Execute())

	output := stdout.String()
	assert.Contains(t, output, `"ruleId": "en.1"`)
	assert.Contains(t, output, `"uri": "notes.txt"`)
}

func TestReportCommand_EmptyDatastore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	var stdout bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--datastore", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "No findings.")
}

func TestReportCommand_NonexistentDatastore(t *testing.T) {
	cmd := newReportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--datastore", "/nonexistent/path/wordscan.ds"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datastore not found")
}

func TestReportCommand_MemoryRejected(t *testing.T) {
	cmd := newReportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--datastore", store.MemoryPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in-memory")
}

func TestReportCommand_UnknownFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(store.Config{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cmd := newReportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--datastore", dbPath, "--format", "xml"})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
