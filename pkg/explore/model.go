package explore

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneFilters focusedPane = iota
	paneFindings
	paneDetails
)

// overlay tracks which modal overlay is active.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySource
)

// pagerFinishedMsg is sent when an external pager process exits.
type pagerFinishedMsg struct{ err error }

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data     *exploreData
	filters  filterPane
	findings findingsPane
	details  detailsPane

	focus         focusedPane
	activeOverlay overlay
	showFilters   bool
	censor        bool

	helpOffset int

	sourceTitle   string
	sourceContent string
	sourceOffset  int

	width  int
	height int
	err    error
}

// New creates a new Model by loading data from the given datastore path.
func New(datastorePath string) (Model, error) {
	data, err := loadData(datastorePath)
	if err != nil {
		return Model{}, err
	}
	return newModel(data), nil
}

func newModel(data *exploreData) Model {
	m := Model{
		data:        data,
		filters:     newFilterPane(buildFacets(data.findings)),
		findings:    newFindingsPane(data.findings),
		details:     newDetailsPane(),
		showFilters: true,
	}
	m.setFocus(paneFindings)
	if f := m.findings.selectedFinding(); f != nil {
		m.details.setFinding(f)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("wordscan explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pagerFinishedMsg:
		m.err = msg.err
		return m, nil

	case tea.MouseMsg:
		if m.activeOverlay != overlayNone {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		if m.activeOverlay != overlayNone {
			return m.updateOverlay(msg)
		}

		switch {
		case keyMatches(msg, defaultKeys.ForceQuit), keyMatches(msg, defaultKeys.Quit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.ToggleHelp):
			m.activeOverlay = overlayHelp
			m.helpOffset = 0
			return m, nil
		case keyMatches(msg, defaultKeys.ToggleFilters):
			m.showFilters = !m.showFilters
			if !m.showFilters && m.focus == paneFilters {
				m.setFocus(paneFindings)
			}
			return m, nil
		case keyMatches(msg, defaultKeys.FocusFilters):
			if m.showFilters {
				m.setFocus(paneFilters)
			}
			return m, nil
		case keyMatches(msg, defaultKeys.FocusFindings):
			m.setFocus(paneFindings)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDetails):
			m.setFocus(paneDetails)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusNext):
			m.focusNext()
			return m, nil
		case keyMatches(msg, defaultKeys.Censor):
			m.censor = !m.censor
			m.filters.censor = m.censor
			m.findings.censor = m.censor
			m.details.censor = m.censor
			return m, nil
		case keyMatches(msg, defaultKeys.OpenSource) && m.focus != paneFilters:
			return m, m.openSource()
		}

		switch m.focus {
		case paneFilters:
			var cmd tea.Cmd
			m.filters, cmd = m.filters.Update(msg)
			m.applyFilters()
			return m, cmd
		case paneFindings:
			prev := m.findings.selectedFinding()
			var cmd tea.Cmd
			m.findings, cmd = m.findings.Update(msg)
			if f := m.findings.selectedFinding(); f != prev {
				m.details.setFinding(f)
			}
			return m, cmd
		case paneDetails:
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	offset := &m.helpOffset
	closeKey := defaultKeys.ToggleHelp
	if m.activeOverlay == overlaySource {
		offset = &m.sourceOffset
		closeKey = defaultKeys.OpenSource
	}

	switch {
	case keyMatches(msg, defaultKeys.Quit),
		keyMatches(msg, defaultKeys.ForceQuit),
		keyMatches(msg, closeKey),
		msg.String() == "esc":
		m.activeOverlay = overlayNone
	case keyMatches(msg, defaultKeys.Down):
		*offset++
	case keyMatches(msg, defaultKeys.Up):
		*offset = max(0, *offset-1)
	case keyMatches(msg, defaultKeys.PageDown):
		*offset += m.height / 2
	case keyMatches(msg, defaultKeys.PageUp):
		*offset = max(0, *offset-m.height/2)
	case keyMatches(msg, defaultKeys.Home):
		*offset = 0
	}
	return m, nil
}

// layout returns the widths and heights of the panes for the current size.
func (m Model) layout() (filtersWidth, dataWidth, findingsHeight, detailsHeight int) {
	contentHeight := m.height - 2 // status bar + padding
	findingsHeight = contentHeight * 40 / 100
	detailsHeight = contentHeight - findingsHeight
	dataWidth = m.width
	if m.showFilters {
		filtersWidth = min(m.width*30/100, 50)
		dataWidth -= filtersWidth
	}
	return
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.activeOverlay != overlayNone {
		return m.renderOverlay()
	}

	filtersWidth, dataWidth, findingsHeight, detailsHeight := m.layout()
	m.findings.setSize(dataWidth, findingsHeight)
	m.details.setSize(dataWidth, detailsHeight)
	dataColumn := lipgloss.JoinVertical(lipgloss.Left, m.findings.View(), m.details.View())

	mainContent := dataColumn
	if m.showFilters {
		m.filters.setSize(filtersWidth, m.height-2)
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.filters.View(), dataColumn)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := fmt.Sprintf(" %d findings | %d shown", len(m.data.findings), len(m.findings.rows))
	if m.censor {
		status += " | censored"
	}
	if m.err != nil {
		status += " | " + m.err.Error()
	}
	left := statusBarStyle.Render(status)

	parts := make([]string, 0, len(defaultKeys.shortHelp()))
	for _, b := range defaultKeys.shortHelp() {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+":"+helpDescStyle.Render(h.Desc))
	}
	right := strings.Join(parts, "  ")

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderOverlay() string {
	overlayWidth := m.width * 80 / 100
	overlayHeight := m.height * 80 / 100

	var title, content string
	switch m.activeOverlay {
	case overlayHelp:
		title = " Help (q to close) "
		content = scrollLines(renderHelp(), &m.helpOffset, overlayHeight-4)
	case overlaySource:
		title = fmt.Sprintf(" %s (q to close) ", m.sourceTitle)
		content = "  No source available"
		if m.sourceContent != "" {
			content = scrollLines(m.sourceContent, &m.sourceOffset, overlayHeight-4)
		}
	}

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(content)
	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlayView)
}

// scrollLines returns height lines of text starting at *offset, clamping
// *offset to the text.
func scrollLines(text string, offset *int, height int) string {
	lines := strings.Split(text, "\n")
	*offset = max(0, min(*offset, len(lines)-1))
	end := min(*offset+max(1, height), len(lines))
	return strings.Join(lines[*offset:end], "\n")
}

func (m *Model) setFocus(p focusedPane) {
	m.filters.focused = p == paneFilters
	m.findings.focused = p == paneFindings
	m.details.focused = p == paneDetails
	m.focus = p
}

func (m *Model) focusNext() {
	next := (m.focus + 1) % 3
	if next == paneFilters && !m.showFilters {
		next = paneFindings
	}
	m.setFocus(next)
}

func (m *Model) handleMouseClick(x, y int) {
	filtersWidth, _, findingsHeight, _ := m.layout()
	contentHeight := m.height - 2

	switch {
	case y >= contentHeight:
		return

	case x < filtersWidth:
		m.setFocus(paneFilters)
		row := y - 2 // title + border top
		if idx := row + m.filters.offset; row >= 0 && idx < len(m.filters.items) {
			m.filters.cursor = idx
			m.filters.toggleCurrent()
			m.applyFilters()
		}

	case y < findingsHeight:
		m.setFocus(paneFindings)
		row := y - 4 // title + border top + header + separator
		if idx := row + m.findings.offset; row >= 0 && idx < len(m.findings.rows) {
			m.findings.cursor = idx
			m.details.setFinding(m.findings.selectedFinding())
		}

	default:
		m.setFocus(paneDetails)
	}
}

func (m *Model) applyFilters() {
	prev := m.findings.selectedFinding()
	if !m.filters.facets.hasActiveFilters() {
		m.findings.setFilteredRows(m.data.findings)
	} else {
		var filtered []*findingRow
		for _, f := range m.data.findings {
			if m.filters.facets.matchesFinding(f) {
				filtered = append(filtered, f)
			}
		}
		m.findings.setFilteredRows(filtered)
	}
	m.filters.facets.updateCounts(m.data.findings)

	if f := m.findings.selectedFinding(); f != prev {
		m.details.setFinding(f)
	}
}

// openSource shows the content around the selected match: the stored blob
// when the scan kept it, the file in $PAGER when it is still on disk, and
// the snippet otherwise.
func (m *Model) openSource() tea.Cmd {
	match := m.details.selectedMatch()
	if match == nil {
		return nil
	}

	if content, ok := m.data.blobContent(match.BlobID); ok {
		m.sourceTitle = "Blob " + match.BlobID.Hex()[:12]
		m.sourceContent = numberLines(content, match, m.censor)
		m.sourceOffset = max(0, match.Location.Source.Start.Line-3)
		m.activeOverlay = overlaySource
		return nil
	}

	for _, prov := range match.Provenance {
		if fp, ok := prov.(types.FileProvenance); ok && !m.censor {
			if _, err := os.Stat(fp.FilePath); err == nil {
				return openInPager(fp.FilePath, match.Location.Source.Start.Line)
			}
		}
	}

	matching := match.Snippet.Matching
	if m.censor {
		matching = []byte(censorText(string(matching)))
	}
	var sb strings.Builder
	sb.Write(match.Snippet.Before)
	sb.Write(matching)
	sb.Write(match.Snippet.After)

	m.sourceTitle = "Snippet"
	m.sourceContent = sb.String()
	m.sourceOffset = 0
	m.activeOverlay = overlaySource
	return nil
}

// numberLines prefixes each line of content with its number and highlights
// the lines the match spans.
func numberLines(content []byte, match *matchRow, censor bool) string {
	start, end := match.Location.Offset.Start, match.Location.Offset.End
	if censor && start >= 0 && end <= int64(len(content)) && start <= end {
		masked := censorText(string(content[start:end]))
		content = append(append(append([]byte(nil), content[:start]...), masked...), content[end:]...)
	}

	lines := strings.Split(string(content), "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		n := i + 1
		prefix := snippetContextStyle.Render(fmt.Sprintf("%*d ", width, n))
		if n >= match.Location.Source.Start.Line && n <= match.Location.Source.End.Line {
			line = snippetMatchStyle.Render(line)
		}
		b.WriteString(prefix + line)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func openInPager(filePath string, line int) tea.Cmd {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	var args []string
	if line > 0 && pager == "less" {
		args = append(args, fmt.Sprintf("+%d", line))
	}
	args = append(args, filePath)

	c := exec.Command(pager, args...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return pagerFinishedMsg{err: err}
	})
}

// Close releases resources held by the model.
func (m *Model) Close() error {
	if m.data != nil {
		return m.data.close()
	}
	return nil
}

// renderHelp generates help text from the key bindings.
func renderHelp() string {
	section := func(name string, bindings ...key.Binding) string {
		var b strings.Builder
		b.WriteString(name + "\n")
		for _, kb := range bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "  %s %s\n", padRight(helpKeyStyle.Render(h.Key), 8), h.Desc)
		}
		return b.String()
	}

	k := defaultKeys
	return strings.Join([]string{
		"wordscan explore - browse forbidden word findings\n",
		section("NAVIGATION", k.Down, k.Left, k.Right, k.PageDown, k.PageUp, k.Home, k.End),
		section("FOCUS", k.FocusFilters, k.FocusFindings, k.FocusDetails, k.FocusNext, k.ToggleFilters),
		section("FILTERS", k.ToggleFilter, k.ResetFilter),
		section("VIEWS", k.SortNext, k.Censor, k.OpenSource, k.ToggleHelp),
		section("QUIT", k.Quit, k.ForceQuit),
	}, "\n")
}
