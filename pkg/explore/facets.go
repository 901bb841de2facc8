package explore

import (
	"sort"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// facetID identifies a facet category.
type facetID int

const (
	facetWord facetID = iota
	facetCategory
	facetSeverity
	facetSource
)

// facetDef defines a facet category.
type facetDef struct {
	ID    facetID
	Label string
}

var facetDefs = []facetDef{
	{facetWord, "Word"},
	{facetCategory, "Category"},
	{facetSeverity, "Severity"},
	{facetSource, "Source"},
}

// facetValue is a single selectable value within a facet.
type facetValue struct {
	FacetID  facetID
	Value    string
	Count    int
	Selected bool
}

// facetState holds the complete filter state.
type facetState struct {
	Values map[facetID][]*facetValue
}

func newFacetState() *facetState {
	return &facetState{
		Values: make(map[facetID][]*facetValue),
	}
}

// facetKeys returns the values a finding contributes to facet id. Findings
// without a value count under "-".
func facetKeys(f *findingRow, id facetID) []string {
	var keys []string
	switch id {
	case facetWord:
		keys = []string{f.Word}
	case facetCategory:
		keys = []string{f.Category}
	case facetSeverity:
		keys = []string{string(f.Severity)}
	case facetSource:
		keys = f.Sources
	}
	if len(keys) == 0 || (len(keys) == 1 && keys[0] == "") {
		return []string{"-"}
	}
	return keys
}

// buildFacets builds facet values from findings data.
func buildFacets(findings []*findingRow) *facetState {
	fs := newFacetState()
	for _, def := range facetDefs {
		counts := make(map[string]int)
		for _, f := range findings {
			for _, k := range facetKeys(f, def.ID) {
				counts[k]++
			}
		}
		fs.Values[def.ID] = mapToFacetValues(def.ID, counts)
	}
	return fs
}

func mapToFacetValues(id facetID, counts map[string]int) []*facetValue {
	values := make([]*facetValue, 0, len(counts))
	for v, c := range counts {
		values = append(values, &facetValue{FacetID: id, Value: v, Count: c})
	}
	if id == facetSeverity {
		// most severe first
		sort.Slice(values, func(i, j int) bool {
			return types.Severity(values[i].Value).Rank() > types.Severity(values[j].Value).Rank()
		})
		return values
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value < values[j].Value
	})
	return values
}

// selectedValues returns the set of selected values for a facet.
func (fs *facetState) selectedValues(id facetID) map[string]bool {
	selected := make(map[string]bool)
	for _, v := range fs.Values[id] {
		if v.Selected {
			selected[v.Value] = true
		}
	}
	return selected
}

// hasActiveFilters returns true if any facet has selections.
func (fs *facetState) hasActiveFilters() bool {
	for _, values := range fs.Values {
		for _, v := range values {
			if v.Selected {
				return true
			}
		}
	}
	return false
}

// resetAll deselects all facet values.
func (fs *facetState) resetAll() {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Selected = false
		}
	}
}

// matchesFinding returns true if a finding passes all active filters.
// Within a facet: OR (union). Across facets: AND (intersection).
func (fs *facetState) matchesFinding(f *findingRow) bool {
	for _, def := range facetDefs {
		selected := fs.selectedValues(def.ID)
		if len(selected) == 0 {
			continue
		}
		found := false
		for _, k := range facetKeys(f, def.ID) {
			if selected[k] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// updateCounts recounts facet values based on currently visible findings.
func (fs *facetState) updateCounts(findings []*findingRow) {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Count = 0
		}
	}

	for _, f := range findings {
		if !fs.matchesFinding(f) {
			continue
		}
		for _, def := range facetDefs {
			keys := facetKeys(f, def.ID)
			for _, v := range fs.Values[def.ID] {
				for _, k := range keys {
					if v.Value == k {
						v.Count++
						break
					}
				}
			}
		}
	}
}

// findingRow is the denormalized view model for a finding in the TUI.
type findingRow struct {
	FindingID  string
	WordID     string
	Word       string // the listed word
	Text       string // the text as it appeared
	Category   string
	Severity   types.Severity
	Sources    []string // provenance kinds: file, git, archive, message
	MatchCount int
	Matches    []*matchRow
}

// matchRow is the denormalized view model for a match.
type matchRow struct {
	StructuralID string
	BlobID       types.BlobID
	Location     types.Location
	Matched      []byte
	Snippet      types.Snippet
	Provenance   []types.Provenance
}
