package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterPane is the left-side faceted search tree.
type filterPane struct {
	facets    *facetState
	collapsed map[facetID]bool
	cursor    int          // flat index across all facet items
	items     []filterItem // flattened tree items
	width     int
	height    int
	offset    int // scroll offset
	focused   bool
	censor    bool
}

type filterItemKind int

const (
	filterItemFacet filterItemKind = iota
	filterItemValue
)

type filterItem struct {
	Kind     filterItemKind
	Label    string
	FacetID  facetID
	ValueIdx int // index into facets.Values[FacetID]
}

func newFilterPane(facets *facetState) filterPane {
	fp := filterPane{
		facets:    facets,
		collapsed: make(map[facetID]bool),
	}
	fp.rebuildItems()
	return fp
}

// rebuildItems flattens the facet tree into a list of items.
func (fp *filterPane) rebuildItems() {
	fp.items = nil
	for _, def := range facetDefs {
		values := fp.facets.Values[def.ID]
		if len(values) == 0 {
			continue
		}
		fp.items = append(fp.items, filterItem{
			Kind:    filterItemFacet,
			Label:   def.Label,
			FacetID: def.ID,
		})
		if fp.collapsed[def.ID] {
			continue
		}
		for i, v := range values {
			fp.items = append(fp.items, filterItem{
				Kind:     filterItemValue,
				Label:    v.Value,
				FacetID:  def.ID,
				ValueIdx: i,
			})
		}
	}
}

func (fp filterPane) Update(msg tea.Msg) (filterPane, tea.Cmd) {
	if !fp.focused {
		return fp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if fp.cursor > 0 {
				fp.cursor--
				fp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Down):
			if fp.cursor < len(fp.items)-1 {
				fp.cursor++
				fp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Home):
			fp.cursor = 0
			fp.offset = 0
		case keyMatches(msg, defaultKeys.End):
			fp.cursor = max(0, len(fp.items)-1)
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageDown):
			fp.cursor = max(0, min(fp.cursor+fp.visibleRows(), len(fp.items)-1))
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageUp):
			fp.cursor = max(fp.cursor-fp.visibleRows(), 0)
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.Left):
			fp.setCollapsed(true)
		case keyMatches(msg, defaultKeys.Right):
			fp.setCollapsed(false)
		case keyMatches(msg, defaultKeys.ToggleFilter):
			fp.toggleCurrent()
		case keyMatches(msg, defaultKeys.ResetFilter):
			fp.facets.resetAll()
		}
	}

	return fp, nil
}

// setCollapsed folds or unfolds the facet under the cursor and keeps the
// cursor on the facet heading.
func (fp *filterPane) setCollapsed(collapsed bool) {
	if fp.cursor < 0 || fp.cursor >= len(fp.items) {
		return
	}
	id := fp.items[fp.cursor].FacetID
	fp.collapsed[id] = collapsed
	fp.rebuildItems()
	for i, it := range fp.items {
		if it.Kind == filterItemFacet && it.FacetID == id {
			fp.cursor = i
			break
		}
	}
	fp.ensureVisible()
}

func (fp *filterPane) toggleCurrent() {
	if fp.cursor < 0 || fp.cursor >= len(fp.items) {
		return
	}
	item := fp.items[fp.cursor]
	switch item.Kind {
	case filterItemFacet:
		fp.setCollapsed(!fp.collapsed[item.FacetID])
	case filterItemValue:
		values := fp.facets.Values[item.FacetID]
		if item.ValueIdx < len(values) {
			values[item.ValueIdx].Selected = !values[item.ValueIdx].Selected
		}
	}
}

func (fp filterPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	var b strings.Builder
	visibleEnd := min(fp.offset+fp.visibleRows(), len(fp.items))

	for i := fp.offset; i < visibleEnd; i++ {
		item := fp.items[i]

		var line string
		switch item.Kind {
		case filterItemFacet:
			arrow := "▾"
			if fp.collapsed[item.FacetID] {
				arrow = "▸"
			}
			line = facetLabelStyle.Render(fmt.Sprintf(" %s %s", arrow, item.Label))
		case filterItemValue:
			values := fp.facets.Values[item.FacetID]
			selected := false
			count := 0
			if item.ValueIdx < len(values) {
				selected = values[item.ValueIdx].Selected
				count = values[item.ValueIdx].Count
			}
			label := item.Label
			if fp.censor && item.FacetID == facetWord {
				label = censorText(label)
			}
			label = truncateString(label, fp.width-12)
			countStr := facetCountStyle.Render(fmt.Sprintf("(%d)", count))
			if selected {
				line = fmt.Sprintf("   %s %s %s", facetSelectedStyle.Render("+"), facetSelectedStyle.Render(label), countStr)
			} else {
				line = fmt.Sprintf("     %s %s", label, countStr)
			}
		}

		if i == fp.cursor && fp.focused {
			line = selectedRowStyle.Width(fp.width - 2).Render(stripAnsi(line))
		}

		b.WriteString(padRight(line, fp.width-2))
		if i < visibleEnd-1 {
			b.WriteString("\n")
		}
	}

	for i := visibleEnd - fp.offset; i < fp.visibleRows(); i++ {
		b.WriteString(strings.Repeat(" ", fp.width-2))
		if i < fp.visibleRows()-1 {
			b.WriteString("\n")
		}
	}

	return renderPane(" Filters ", b.String(), fp.width, fp.height, fp.focused)
}

func (fp filterPane) visibleRows() int {
	return max(1, fp.height-4) // title + border
}

func (fp *filterPane) ensureVisible() {
	if fp.cursor < fp.offset {
		fp.offset = fp.cursor
	}
	if fp.cursor >= fp.offset+fp.visibleRows() {
		fp.offset = fp.cursor - fp.visibleRows() + 1
	}
}

func (fp *filterPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
}

// renderPane draws a titled, bordered pane around body.
func renderPane(title, body string, width, height int, focused bool) string {
	borderStyle := inactiveBorderStyle
	if focused {
		borderStyle = activeBorderStyle
	}
	content := borderStyle.
		Width(width - 2).
		Height(height - 3).
		Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content)
}

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

// truncateString cuts s to at most maxLen display cells. Wide runes such as
// Hangul take two cells.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	ellipsis := "..."
	if maxLen <= len(ellipsis) {
		ellipsis = ""
	}
	limit := maxLen - len(ellipsis)

	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > limit {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + ellipsis
}

func padRight(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}

// stripAnsi removes ANSI escape sequences for re-styling.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
