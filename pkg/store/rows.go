package store

import (
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

const (
	matchColumns = `blob_id, word_id, word, category, severity, structural_id, finding_id,
		offset_start, offset_end, start_line, start_column, end_line, end_column,
		matched, snippet_before, snippet_after`

	wordColumns = `id, text, category, severity, structural_id, description`
)

// rowScanner is satisfied by *sql.Rows, *sql.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func matchArgs(m *types.Match) []interface{} {
	loc := m.Location
	return []interface{}{
		m.BlobID.Hex(), m.WordID, m.Word, m.Category, string(m.Severity), m.StructuralID, m.FindingID,
		loc.Offset.Start, loc.Offset.End,
		loc.Source.Start.Line, loc.Source.Start.Column, loc.Source.End.Line, loc.Source.End.Column,
		m.Matched, m.Snippet.Before, m.Snippet.After,
	}
}

func scanMatch(row rowScanner) (*types.Match, error) {
	var (
		m        types.Match
		blobHex  string
		severity string
		loc      = &m.Location
	)
	err := row.Scan(
		&blobHex, &m.WordID, &m.Word, &m.Category, &severity, &m.StructuralID, &m.FindingID,
		&loc.Offset.Start, &loc.Offset.End,
		&loc.Source.Start.Line, &loc.Source.Start.Column, &loc.Source.End.Line, &loc.Source.End.Column,
		&m.Matched, &m.Snippet.Before, &m.Snippet.After,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning match: %w", err)
	}

	blobID, err := types.ParseBlobID(blobHex)
	if err != nil {
		return nil, fmt.Errorf("parsing blob ID: %w", err)
	}
	m.BlobID = blobID
	m.Severity = types.Severity(severity)
	m.Snippet.Matching = m.Matched
	return &m, nil
}

func scanWord(row rowScanner) (*types.Word, error) {
	var (
		w        types.Word
		severity string
	)
	if err := row.Scan(&w.ID, &w.Text, &w.Category, &severity, &w.StructuralID, &w.Description); err != nil {
		return nil, fmt.Errorf("scanning word: %w", err)
	}
	w.Severity = types.Severity(severity)
	return &w, nil
}

func scanBlob(row rowScanner) (Blob, error) {
	var (
		hex  string
		size int64
	)
	if err := row.Scan(&hex, &size); err != nil {
		return Blob{}, fmt.Errorf("scanning blob: %w", err)
	}
	id, err := types.ParseBlobID(hex)
	if err != nil {
		return Blob{}, fmt.Errorf("parsing blob ID: %w", err)
	}
	return Blob{ID: id, Size: size}, nil
}

// attachMatches fills each finding's Matches from matches, by finding ID.
func attachMatches(findings []*types.Finding, matches []*types.Match) {
	byID := make(map[string]*types.Finding, len(findings))
	for _, f := range findings {
		byID[f.ID] = f
	}
	for _, m := range matches {
		if f, ok := byID[m.FindingID]; ok {
			f.Matches = append(f.Matches, m)
		}
	}
}
