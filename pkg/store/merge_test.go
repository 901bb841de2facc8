//go:build !wasm

package store

import (
	"path/filepath"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptySources(t *testing.T) {
	_, err := Merge(MergeConfig{DestPath: filepath.Join(t.TempDir(), "dest.db")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source databases")
}

func TestMerge_NoDestination(t *testing.T) {
	_, err := Merge(MergeConfig{SourcePaths: []string{"source.db"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination path is required")
}

func TestMerge_SourceIsDestination(t *testing.T) {
	_, err := Merge(MergeConfig{SourcePaths: []string{"same.db"}, DestPath: "same.db"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "also the destination")
}

func TestMerge_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Merge(MergeConfig{
		SourcePaths: []string{filepath.Join(dir, "missing.db")},
		DestPath:    filepath.Join(dir, "dest.db"),
	})
	assert.Error(t, err)
}

// seedSource writes one blob with a match, finding and provenance.
func seedSource(t *testing.T, path string, content string, w *types.Word) *types.Match {
	t.Helper()
	s, err := NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	blobID := types.ComputeBlobID([]byte(content))
	m := testMatch(blobID, w, 0)
	require.NoError(t, s.AddBlob(blobID, int64(len(content))))
	require.NoError(t, s.AddWord(w))
	require.NoError(t, s.AddFinding(testFinding(m)))
	require.NoError(t, s.AddMatch(m))
	require.NoError(t, s.AddProvenance(blobID, types.FileProvenance{FilePath: content + ".txt"}))
	return m
}

func TestMerge_SingleSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.db")
	m := seedSource(t, source, "시발 first", testWord())

	dest := filepath.Join(dir, "dest.db")
	stats, err := Merge(MergeConfig{SourcePaths: []string{source}, DestPath: dest})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.BlobsMerged)
	assert.Equal(t, 1, stats.WordsMerged)
	assert.Equal(t, 1, stats.MatchesMerged)
	assert.Equal(t, 1, stats.FindingsMerged)
	assert.Equal(t, 1, stats.ProvenanceMerged)
	assert.Equal(t, 1, stats.SourcesProcessed)

	s, err := NewSQLite(dest)
	require.NoError(t, err)
	defer s.Close()

	matches, err := s.GetMatches(m.BlobID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, m.StructuralID, matches[0].StructuralID)

	provs, err := s.GetProvenance(m.BlobID)
	require.NoError(t, err)
	assert.Len(t, provs, 1)
}

func TestMerge_DeduplicatesAcrossSources(t *testing.T) {
	dir := t.TempDir()
	w := testWord()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	seedSource(t, a, "시발 one", w)
	seedSource(t, b, "시발 two", w)

	dest := filepath.Join(dir, "dest.db")
	stats, err := Merge(MergeConfig{SourcePaths: []string{a, b}, DestPath: dest})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.BlobsMerged)
	assert.Equal(t, 1, stats.WordsMerged)
	assert.Equal(t, 2, stats.MatchesMerged)
	assert.Equal(t, 1, stats.FindingsMerged, "both blobs share one finding")
	assert.Equal(t, 2, stats.SourcesProcessed)

	// A second merge of the same sources adds nothing.
	stats, err = Merge(MergeConfig{SourcePaths: []string{a, b}, DestPath: dest})
	require.NoError(t, err)
	assert.Zero(t, stats.BlobsMerged)
	assert.Zero(t, stats.WordsMerged)
	assert.Zero(t, stats.MatchesMerged)
	assert.Zero(t, stats.FindingsMerged)
	assert.Zero(t, stats.ProvenanceMerged)

	s, err := NewSQLite(dest)
	require.NoError(t, err)
	defer s.Close()

	findings, err := s.GetFindings()
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Len(t, findings[0].Matches, 2)
}
