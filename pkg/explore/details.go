package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chulbong-kr/wordscan/pkg/matcher"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

// detailsPane shows match details for the selected finding.
type detailsPane struct {
	finding     *findingRow
	matchCursor int
	width       int
	height      int
	offset      int // scroll offset for content
	focused     bool
	censor      bool
}

func newDetailsPane() detailsPane {
	return detailsPane{}
}

func (dp *detailsPane) setFinding(f *findingRow) {
	dp.finding = f
	dp.matchCursor = 0
	dp.offset = 0
}

func (dp detailsPane) selectedMatch() *matchRow {
	if dp.finding == nil || dp.matchCursor < 0 || dp.matchCursor >= len(dp.finding.Matches) {
		return nil
	}
	return dp.finding.Matches[dp.matchCursor]
}

func (dp detailsPane) Update(msg tea.Msg) (detailsPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.offset > 0 {
				dp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			dp.offset++
		case keyMatches(msg, defaultKeys.Left):
			if dp.matchCursor > 0 {
				dp.matchCursor--
				dp.offset = 0
			}
		case keyMatches(msg, defaultKeys.Right):
			if dp.finding != nil && dp.matchCursor < len(dp.finding.Matches)-1 {
				dp.matchCursor++
				dp.offset = 0
			}
		case keyMatches(msg, defaultKeys.Home):
			dp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			dp.offset += dp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.offset = max(0, dp.offset-dp.visibleRows())
		}
	}

	return dp, nil
}

func (dp detailsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	contentWidth := dp.width - 4
	lines := dp.lines(contentWidth)

	offset := min(dp.offset, max(0, len(lines)-1))
	visibleLines := lines[offset:]
	if len(visibleLines) > dp.visibleRows() {
		visibleLines = visibleLines[:dp.visibleRows()]
	}

	var b strings.Builder
	for i, line := range visibleLines {
		b.WriteString(padRight(line, contentWidth))
		if i < len(visibleLines)-1 {
			b.WriteString("\n")
		}
	}
	for i := len(visibleLines); i < dp.visibleRows(); i++ {
		b.WriteString(strings.Repeat(" ", contentWidth))
		if i < dp.visibleRows()-1 {
			b.WriteString("\n")
		}
	}

	return renderPane(" Details ", b.String(), dp.width, dp.height, dp.focused)
}

func (dp detailsPane) lines(width int) []string {
	if dp.finding == nil {
		return []string{"  No finding selected"}
	}
	f := dp.finding
	word, text := f.Word, f.Text
	if dp.censor {
		word, text = censorText(word), censorText(text)
	}

	lines := []string{
		field("Word:", fmt.Sprintf("%s (%s)", word, f.WordID)),
		fmt.Sprintf("  %s %s", fieldLabelStyle.Render("Text:"), snippetMatchStyle.Render(text)),
	}
	if f.Category != "" {
		lines = append(lines, field("Category:", f.Category))
	}
	if f.Severity != "" {
		lines = append(lines, fmt.Sprintf("  %s %s", fieldLabelStyle.Render("Severity:"), renderSeverity(f.Severity)))
	}
	lines = append(lines, "")

	if len(f.Matches) == 0 {
		return append(lines, "  No matches")
	}

	lines = append(lines,
		"  "+headerRowStyle.Render(fmt.Sprintf("Match %d/%d (h/l to navigate)", dp.matchCursor+1, len(f.Matches))),
		"  "+strings.Repeat("─", max(0, min(40, width-4))))
	if m := dp.selectedMatch(); m != nil {
		lines = append(lines, renderMatchDetails(m, width, dp.censor)...)
	}
	return lines
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s", fieldLabelStyle.Render(label), fieldValueStyle.Render(value))
}

func renderMatchDetails(m *matchRow, maxWidth int, censor bool) []string {
	var lines []string

	for _, prov := range m.Provenance {
		switch p := prov.(type) {
		case types.FileProvenance:
			lines = append(lines, field("File:", p.FilePath))
		case types.ArchiveProvenance:
			lines = append(lines, field("Archive:", p.ArchivePath))
			lines = append(lines, field("Member:", p.MemberPath))
		case types.GitProvenance:
			lines = append(lines, field("Repo:", p.RepoPath))
			lines = append(lines, field("Path:", p.BlobPath))
			if p.Commit != nil {
				lines = append(lines, field("Commit:", p.Commit.CommitID))
				if p.Commit.AuthorName != "" {
					lines = append(lines, field("Author:", fmt.Sprintf("%s <%s>", p.Commit.AuthorName, p.Commit.AuthorEmail)))
				}
			}
		case types.MessageProvenance:
			lines = append(lines, field("Channel:", p.Channel))
			if p.Sender != "" {
				lines = append(lines, field("Sender:", p.Sender))
			}
			if !p.SentAt.IsZero() {
				lines = append(lines, field("Sent:", p.SentAt.Format("2006-01-02 15:04:05")))
			}
		}
	}

	lines = append(lines, field("Blob:", m.BlobID.Hex()[:12]+"..."))

	if m.Location.Source.Start.Line > 0 {
		lines = append(lines, fmt.Sprintf("  %s %d:%d - %d:%d (bytes %d-%d)",
			fieldLabelStyle.Render("Location:"),
			m.Location.Source.Start.Line, m.Location.Source.Start.Column,
			m.Location.Source.End.Line, m.Location.Source.End.Column,
			m.Location.Offset.Start, m.Location.Offset.End))
	}

	lines = append(lines, "", "  "+fieldLabelStyle.Render("Snippet:"))

	snippetWidth := maxWidth - 6
	before := strings.TrimRight(string(m.Snippet.Before), "\n\r")
	matching := string(m.Snippet.Matching)
	if matching == "" {
		matching = string(m.Matched)
	}
	if censor {
		matching = censorText(matching)
	}
	after := strings.TrimLeft(string(m.Snippet.After), "\n\r")

	for _, line := range strings.Split(before, "\n") {
		if line != "" {
			lines = append(lines, "    "+snippetContextStyle.Render(truncateString(line, snippetWidth)))
		}
	}
	for _, line := range strings.Split(matching, "\n") {
		lines = append(lines, "    "+snippetMatchStyle.Render(truncateString(line, snippetWidth)))
	}
	for _, line := range strings.Split(after, "\n") {
		if line != "" {
			lines = append(lines, "    "+snippetContextStyle.Render(truncateString(line, snippetWidth)))
		}
	}

	return lines
}

func (dp detailsPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}

// censorText masks every rune of s.
func censorText(s string) string {
	span := types.OffsetSpan{Start: 0, End: int64(len(s))}
	return string(matcher.MaskSpans([]byte(s), []types.OffsetSpan{span}, matcher.DefaultMaskRune))
}
