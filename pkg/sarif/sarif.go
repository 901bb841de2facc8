package sarif

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "wordscan"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`

	ruleIndex map[string]int
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes one forbidden word.
type Rule struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	ShortDescription     Text              `json:"shortDescription"`
	DefaultConfiguration *Configuration    `json:"defaultConfiguration,omitempty"`
	Properties           map[string]string `json:"properties,omitempty"`
}

// Configuration carries a rule's default level.
type Configuration struct {
	Level string `json:"level"`
}

// Text is a SARIF message string.
type Text struct {
	Text string `json:"text"`
}

// Result represents a single match
type Result struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             Text              `json:"message"`
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region gives the match as line/column and as bytes.
type Region struct {
	StartLine   int   `json:"startLine"`
	StartColumn int   `json:"startColumn"`
	EndLine     int   `json:"endLine"`
	EndColumn   int   `json:"endColumn"`
	ByteOffset  int64 `json:"byteOffset"`
	ByteLength  int64 `json:"byteLength"`
	Snippet     *Text `json:"snippet,omitempty"`
}

// NewReport creates an empty report for the given tool version.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{{
			Tool:    Tool{Driver: Driver{Name: ToolName, Version: toolVersion, Rules: []Rule{}}},
			Results: []Result{},
		}},
		ruleIndex: make(map[string]int),
	}
}

// Level maps a word severity to a SARIF level.
func Level(s types.Severity) string {
	switch s {
	case types.SeverityHigh:
		return "error"
	case types.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}

// AddWord registers w as a rule. Adding the same word twice is a no-op.
func (r *Report) AddWord(w *types.Word) {
	if _, ok := r.ruleIndex[w.ID]; ok {
		return
	}
	desc := w.Description
	if desc == "" {
		desc = fmt.Sprintf("Forbidden %s word", w.Category)
	}
	rule := Rule{
		ID:                   w.ID,
		Name:                 w.Text,
		ShortDescription:     Text{Text: desc},
		DefaultConfiguration: &Configuration{Level: Level(w.Severity)},
		Properties:           map[string]string{"category": w.Category},
	}
	if w.Severity != "" {
		rule.Properties["severity"] = string(w.Severity)
	}

	run := &r.Runs[0]
	r.ruleIndex[w.ID] = len(run.Tool.Driver.Rules)
	run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
}

// AddResult adds a match found in the artifact at path. The match's word is
// registered as a rule if it is not yet known.
func (r *Report) AddResult(m *types.Match, path string) {
	if _, ok := r.ruleIndex[m.WordID]; !ok {
		r.AddWord(&types.Word{ID: m.WordID, Text: m.Word, Category: m.Category, Severity: m.Severity})
	}

	loc := m.Location
	region := Region{
		StartLine:   loc.Source.Start.Line,
		StartColumn: loc.Source.Start.Column,
		EndLine:     loc.Source.End.Line,
		EndColumn:   loc.Source.End.Column,
		ByteOffset:  loc.Offset.Start,
		ByteLength:  loc.Offset.Len(),
	}
	if len(m.Matched) > 0 {
		region.Snippet = &Text{Text: string(m.Matched)}
	}

	r.Runs[0].Results = append(r.Runs[0].Results, Result{
		RuleID:    m.WordID,
		RuleIndex: r.ruleIndex[m.WordID],
		Level:     Level(m.Severity),
		Message:   Text{Text: fmt.Sprintf("Forbidden %s word %q", m.Category, m.Word)},
		Locations: []Location{{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: formatFileURI(path)},
				Region:           region,
			},
		}},
		PartialFingerprints: map[string]string{
			"findingId/v1":    m.FindingID,
			"structuralId/v1": m.StructuralID,
		},
	})
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
