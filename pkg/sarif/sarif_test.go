package sarif

import (
	"encoding/json"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatch() *types.Match {
	return &types.Match{
		WordID:       "ko.profanity.1",
		Word:         "시발",
		Category:     "profanity",
		Severity:     types.SeverityHigh,
		StructuralID: "s1",
		FindingID:    "f1",
		Matched:      []byte("시발"),
		Location: types.Location{
			Offset: types.OffsetSpan{Start: 16, End: 22},
			Source: types.SourceSpan{
				Start: types.SourcePoint{Line: 2, Column: 3},
				End:   types.SourcePoint{Line: 2, Column: 4},
			},
		},
	}
}

func TestNewReport(t *testing.T) {
	report := NewReport("1.2.3")

	assert.Equal(t, SchemaURI, report.Schema)
	assert.Equal(t, Version, report.Version)
	require.Len(t, report.Runs, 1)
	assert.Equal(t, ToolName, report.Runs[0].Tool.Driver.Name)
	assert.Equal(t, "1.2.3", report.Runs[0].Tool.Driver.Version)
	assert.Empty(t, report.Runs[0].Results)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "error", Level(types.SeverityHigh))
	assert.Equal(t, "warning", Level(types.SeverityMedium))
	assert.Equal(t, "note", Level(types.SeverityLow))
	assert.Equal(t, "warning", Level(""))
}

func TestAddWord(t *testing.T) {
	report := NewReport("dev")

	w := &types.Word{ID: "en.1", Text: "damn", Category: "profanity", Severity: types.SeverityLow}
	report.AddWord(w)
	report.AddWord(w)

	rules := report.Runs[0].Tool.Driver.Rules
	require.Len(t, rules, 1)
	assert.Equal(t, "en.1", rules[0].ID)
	assert.Equal(t, "damn", rules[0].Name)
	assert.Equal(t, "Forbidden profanity word", rules[0].ShortDescription.Text)
	assert.Equal(t, "note", rules[0].DefaultConfiguration.Level)
	assert.Equal(t, map[string]string{"category": "profanity", "severity": "low"}, rules[0].Properties)
}

func TestAddResult(t *testing.T) {
	report := NewReport("dev")
	report.AddWord(&types.Word{ID: "other", Text: "x", Category: "c"})
	report.AddResult(testMatch(), "/chat/log.txt")

	rules := report.Runs[0].Tool.Driver.Rules
	require.Len(t, rules, 2, "unknown words become rules")

	require.Len(t, report.Runs[0].Results, 1)
	res := report.Runs[0].Results[0]
	assert.Equal(t, "ko.profanity.1", res.RuleID)
	assert.Equal(t, 1, res.RuleIndex)
	assert.Equal(t, "error", res.Level)
	assert.Equal(t, "f1", res.PartialFingerprints["findingId/v1"])

	loc := res.Locations[0].PhysicalLocation
	assert.Equal(t, "file:///chat/log.txt", loc.ArtifactLocation.URI)
	assert.Equal(t, 2, loc.Region.StartLine)
	assert.Equal(t, 3, loc.Region.StartColumn)
	assert.Equal(t, 4, loc.Region.EndColumn)
	assert.EqualValues(t, 16, loc.Region.ByteOffset)
	assert.EqualValues(t, 6, loc.Region.ByteLength)
	require.NotNil(t, loc.Region.Snippet)
	assert.Equal(t, "시발", loc.Region.Snippet.Text)
}

func TestToJSON(t *testing.T) {
	report := NewReport("dev")
	report.AddResult(testMatch(), "relative/path.txt")

	data, err := report.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, SchemaURI, decoded["$schema"])
	assert.Contains(t, string(data), `"uri": "relative/path.txt"`)
}

func TestFormatFileURI(t *testing.T) {
	assert.Equal(t, "file:///abs/file.txt", formatFileURI("/abs/file.txt"))
	assert.Equal(t, "rel/file.txt", formatFileURI("rel/file.txt"))
}
