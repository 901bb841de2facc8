package explore

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// sortField defines which column to sort by.
type sortField int

const (
	sortBySeverity sortField = iota
	sortByWord
	sortByCategory
	sortByMatches
	sortFieldCount // sentinel
)

var sortFieldNames = [sortFieldCount]string{
	"Severity", "Word", "Category", "Matches",
}

// findingsPane is the top-right findings table.
type findingsPane struct {
	rows    []*findingRow // filtered rows
	allRows []*findingRow // all rows (unfiltered)
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
	censor  bool
	sortBy  sortField
}

func newFindingsPane(rows []*findingRow) findingsPane {
	fp := findingsPane{
		allRows: rows,
		rows:    append([]*findingRow(nil), rows...),
	}
	fp.sort()
	return fp
}

func (fp *findingsPane) setFilteredRows(rows []*findingRow) {
	fp.rows = append(fp.rows[:0], rows...)
	fp.sort()
	if fp.cursor >= len(fp.rows) {
		fp.cursor = max(0, len(fp.rows)-1)
	}
	fp.ensureVisible()
}

func (fp findingsPane) selectedFinding() *findingRow {
	if fp.cursor < 0 || fp.cursor >= len(fp.rows) {
		return nil
	}
	return fp.rows[fp.cursor]
}

func (fp findingsPane) Update(msg tea.Msg) (findingsPane, tea.Cmd) {
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
			if fp.cursor < len(fp.rows)-1 {
				fp.cursor++
				fp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Home):
			fp.cursor = 0
			fp.offset = 0
		case keyMatches(msg, defaultKeys.End):
			fp.cursor = max(0, len(fp.rows)-1)
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageDown):
			fp.cursor = max(0, min(fp.cursor+fp.visibleRows(), len(fp.rows)-1))
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageUp):
			fp.cursor = max(fp.cursor-fp.visibleRows(), 0)
			fp.ensureVisible()
		case keyMatches(msg, defaultKeys.SortNext):
			fp.sortBy = (fp.sortBy + 1) % sortFieldCount
			fp.sort()
		}
	}

	return fp, nil
}

// sort orders rows by the current field. Ties fall back to the word and
// then the matched text so the order is stable across redraws.
func (fp *findingsPane) sort() {
	tie := func(a, b *findingRow) bool {
		if a.Word != b.Word {
			return a.Word < b.Word
		}
		return a.Text < b.Text
	}
	var less func(a, b *findingRow) bool
	switch fp.sortBy {
	case sortBySeverity:
		less = func(a, b *findingRow) bool {
			if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
				return ra > rb
			}
			return tie(a, b)
		}
	case sortByWord:
		less = tie
	case sortByCategory:
		less = func(a, b *findingRow) bool {
			if a.Category != b.Category {
				return a.Category < b.Category
			}
			return tie(a, b)
		}
	case sortByMatches:
		less = func(a, b *findingRow) bool {
			if a.MatchCount != b.MatchCount {
				return a.MatchCount > b.MatchCount
			}
			return tie(a, b)
		}
	}
	sort.SliceStable(fp.rows, func(i, j int) bool { return less(fp.rows[i], fp.rows[j]) })
}

func (fp findingsPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	contentWidth := fp.width - 4 // borders
	colMatches := 7
	colSeverity := 8
	colCategory := min(16, contentWidth/5)
	colText := min(24, contentWidth/4)
	colWord := max(8, contentWidth-colMatches-colSeverity-colCategory-colText-5)

	sortIndicator := func(f sortField) string {
		if fp.sortBy == f {
			return " v"
		}
		return ""
	}

	var b strings.Builder

	header := " " + padRight("Word"+sortIndicator(sortByWord), colWord) +
		" " + padRight("Text", colText) +
		" " + padRight("Category"+sortIndicator(sortByCategory), colCategory) +
		" " + padRight("Sev"+sortIndicator(sortBySeverity), colSeverity) +
		" " + fmt.Sprintf("%*s", colMatches, "Hits"+sortIndicator(sortByMatches))
	b.WriteString(headerRowStyle.Width(contentWidth).Render(truncateString(header, contentWidth)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	visibleEnd := min(fp.offset+fp.visibleRows(), len(fp.rows))
	for i := fp.offset; i < visibleEnd; i++ {
		row := fp.rows[i]
		word, text := row.Word, row.Text
		if fp.censor {
			word, text = censorText(word), censorText(text)
		}

		line := " " + padRight(truncateString(word, colWord), colWord) +
			" " + padRight(truncateString(text, colText), colText) +
			" " + padRight(truncateString(row.Category, colCategory), colCategory) +
			" " + padRight(renderSeverity(row.Severity), colSeverity) +
			" " + fmt.Sprintf("%*d", colMatches, row.MatchCount)

		if i == fp.cursor && fp.focused {
			line = selectedRowStyle.Width(contentWidth).Render(stripAnsi(line))
		}

		b.WriteString(padRight(line, contentWidth))
		if i < visibleEnd-1 {
			b.WriteString("\n")
		}
	}

	for i := visibleEnd - fp.offset; i < fp.visibleRows(); i++ {
		b.WriteString(strings.Repeat(" ", contentWidth))
		if i < fp.visibleRows()-1 {
			b.WriteString("\n")
		}
	}

	title := fmt.Sprintf(" Findings (%d/%d) [sort: %s] ", len(fp.rows), len(fp.allRows), sortFieldNames[fp.sortBy])
	return renderPane(title, b.String(), fp.width, fp.height, fp.focused)
}

func (fp findingsPane) visibleRows() int {
	return max(1, fp.height-6) // title + border + header + separator
}

func (fp *findingsPane) ensureVisible() {
	if fp.cursor < fp.offset {
		fp.offset = fp.cursor
	}
	if fp.cursor >= fp.offset+fp.visibleRows() {
		fp.offset = fp.cursor - fp.visibleRows() + 1
	}
}

func (fp *findingsPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
}
