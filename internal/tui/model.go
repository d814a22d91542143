package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// Service is the board session surface the model drives.
type Service interface {
	Load(context.Context) (app.Board, error)
	Refresh(context.Context) (app.Board, error)
	Select(context.Context, string) (app.Board, error)
	NextPage(context.Context) (app.Board, error)
	PreviousPage(context.Context) (app.Board, error)
	BeginDrag(string) error
	CancelDrag()
	Drop(context.Context, string) (app.DropResult, app.Board, error)
	OpenRecord(context.Context, string) (string, error)
}

// columnOverhead is the per-column border (2), padding (2), and margin (1) width.
const columnOverhead = 5

// boardTopRows covers the header, attribute tabs, and spacer lines.
const boardTopRows = 3

// columnHeaderRows covers the column title and its spacer line.
const columnHeaderRows = 2

// footerRows covers the status line and the bordered help line.
const footerRows = 3

// defaultColumnHeight applies before the first window size message.
const defaultColumnHeight = 24

// Model is the bubbletea model for one board session.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string
	title  string

	help     help.Model
	keys     keyMap
	cards    CardConfig
	copyText func(string) error

	board          app.Board
	loaded         bool
	selectedColumn int
	selectedCard   int

	grabbed    string
	grabSource string
	mouseDrag  bool
	pending    map[string]string
}

// boardLoadedMsg carries one rendered board from the session.
type boardLoadedMsg struct {
	board  app.Board
	status string
	err    error
}

// dropMsg carries the result of one drop write.
type dropMsg struct {
	recordID string
	target   string
	result   app.DropResult
	board    app.Board
	err      error
}

// openedMsg carries the location of one opened record.
type openedMsg struct {
	recordID string
	location string
	err      error
}

// copiedMsg reports one clipboard write.
type copiedMsg struct {
	text string
	err  error
}

// NewModel constructs a board model over one session.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:      svc,
		status:   "loading...",
		title:    "statusboard",
		help:     h,
		keys:     newKeyMap(),
		cards:    DefaultCardConfig(),
		copyText: clipboard.WriteAll,
		pending:  map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the first board.
func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.svc.Load, "ready")
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			if !m.loaded {
				m.err = msg.err
				return m, nil
			}
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.err = nil
		m.applyBoard(msg.board)
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case dropMsg:
		delete(m.pending, msg.recordID)
		if msg.board.EntityType != "" {
			m.applyBoard(msg.board)
		}
		m.status = m.dropStatus(msg)
		if msg.err == nil && msg.result.Outcome == app.DropApplied {
			m.focusRecord(msg.recordID)
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.status = "open failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "open " + msg.location
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied " + msg.text
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// View renders the board.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress q to quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready || !m.loaded {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	sections := []string{
		m.renderHeader(),
		m.renderAttributeTabs(),
		"",
		m.renderBoard(),
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}

	v := tea.NewView(content + "\n" + helpLine)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// loadCmd runs one session read off the update loop.
func (m Model) loadCmd(load func(context.Context) (app.Board, error), status string) tea.Cmd {
	return func() tea.Msg {
		board, err := load(context.Background())
		return boardLoadedMsg{board: board, status: status, err: err}
	}
}

// dropCmd writes the active drag onto one column.
func (m Model) dropCmd(recordID, target string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, board, err := svc.Drop(context.Background(), target)
		return dropMsg{recordID: recordID, target: target, result: result, board: board, err: err}
	}
}

// handleKey handles one key press.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.grabbed != "" {
			m.cancelGrab()
			m.status = "drag canceled"
		}
		return m, nil
	case !m.loaded:
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "refreshing..."
		return m, m.loadCmd(m.svc.Refresh, "refreshed")
	case key.Matches(msg, m.keys.moveLeft):
		return m.moveColumn(-1), nil
	case key.Matches(msg, m.keys.moveRight):
		return m.moveColumn(1), nil
	case key.Matches(msg, m.keys.moveUp):
		if m.grabbed == "" && m.selectedCard > 0 {
			m.selectedCard--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if column, ok := m.currentColumn(); ok && m.grabbed == "" && m.selectedCard < len(column.Cards)-1 {
			m.selectedCard++
		}
		return m, nil
	case key.Matches(msg, m.keys.grab):
		if m.grabbed != "" {
			return m.dropOnSelected()
		}
		return m.grabSelected(), nil
	case key.Matches(msg, m.keys.drop):
		return m.dropOnSelected()
	case key.Matches(msg, m.keys.openRecord):
		return m.openSelected()
	case key.Matches(msg, m.keys.copyID):
		return m.copySelected()
	case key.Matches(msg, m.keys.nextAttribute):
		return m.cycleAttribute(1)
	case key.Matches(msg, m.keys.prevAttribute):
		return m.cycleAttribute(-1)
	case key.Matches(msg, m.keys.nextPage):
		if !m.board.Paging.HasNextPage {
			m.status = "already on the last page"
			return m, nil
		}
		m.cancelGrab()
		m.status = "loading next page..."
		return m, m.loadCmd(m.svc.NextPage, fmt.Sprintf("page %d", m.board.Paging.Page+1))
	case key.Matches(msg, m.keys.prevPage):
		if !m.board.Paging.HasPreviousPage {
			m.status = "already on the first page"
			return m, nil
		}
		m.cancelGrab()
		m.status = "loading previous page..."
		return m, m.loadCmd(m.svc.PreviousPage, fmt.Sprintf("page %d", max(1, m.board.Paging.Page-1)))
	default:
		return m, nil
	}
}

// moveColumn shifts the selected column; while dragging it picks the drop target.
func (m Model) moveColumn(delta int) Model {
	columns := m.visibleColumns()
	next := clamp(m.selectedColumn+delta, 0, len(columns)-1)
	if next == m.selectedColumn {
		return m
	}
	m.selectedColumn = next
	if m.grabbed == "" {
		m.selectedCard = 0
		return m
	}
	if target := columns[next]; !target.DropTarget() {
		m.status = target.Label + " is not a drop target"
	} else {
		m.status = "drop on " + target.Label + "?"
	}
	return m
}

// grabSelected starts a drag on the selected card.
func (m Model) grabSelected() Model {
	card, ok := m.selectedCardValue()
	if !ok {
		m.status = "no card selected"
		return m
	}
	if _, busy := m.pending[card.RecordID]; busy {
		m.status = "a write is still pending for " + truncate(card.Title(), 32)
		return m
	}
	if err := m.svc.BeginDrag(card.RecordID); err != nil {
		m.status = "grab failed: " + err.Error()
		return m
	}
	m.grabbed = card.RecordID
	m.grabSource = card.ColumnKey
	m.status = fmt.Sprintf("dragging %s • h/l pick column • %s drop • esc cancel", truncate(card.Title(), 32), m.keys.drop.Help().Key)
	return m
}

// dropOnSelected drops the grabbed card onto the selected column.
func (m Model) dropOnSelected() (tea.Model, tea.Cmd) {
	if m.grabbed == "" {
		m.status = fmt.Sprintf("grab a card first (%s)", m.keys.grab.Help().Key)
		return m, nil
	}
	column, ok := m.currentColumn()
	if !ok {
		m.cancelGrab()
		return m, nil
	}
	return m.dropOn(column.Key)
}

// dropOn dispatches the drop write for the grabbed card.
func (m Model) dropOn(target string) (tea.Model, tea.Cmd) {
	recordID := m.grabbed
	m.grabbed = ""
	m.grabSource = ""
	m.mouseDrag = false
	m.pending[recordID] = target
	m.status = "saving..."
	return m, m.dropCmd(recordID, target)
}

// cancelGrab ends the active drag without writing.
func (m *Model) cancelGrab() {
	if m.grabbed == "" {
		return
	}
	m.svc.CancelDrag()
	m.grabbed = ""
	m.grabSource = ""
	m.mouseDrag = false
}

// dropStatus describes one drop result.
func (m Model) dropStatus(msg dropMsg) string {
	switch {
	case msg.err != nil && msg.result.Outcome == app.DropRejected:
		return "update rejected: " + msg.result.Message
	case msg.err != nil:
		return "drop failed: " + msg.err.Error()
	}
	switch msg.result.Outcome {
	case app.DropApplied:
		label := msg.target
		if column, _, ok := m.board.Layout.Column(msg.target); ok {
			label = column.Label
		}
		return "moved to " + label
	case app.DropNoop:
		return "card is already in that column"
	case app.DropIgnored:
		return "cannot drop on that column"
	default:
		return ""
	}
}

// openSelected resolves the selected card's record location.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	svc := m.svc
	recordID := card.RecordID
	return m, func() tea.Msg {
		location, err := svc.OpenRecord(context.Background(), recordID)
		return openedMsg{recordID: recordID, location: location, err: err}
	}
}

// copySelected copies the selected record id to the clipboard.
func (m Model) copySelected() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	write := m.copyText
	text := card.RecordID
	return m, func() tea.Msg {
		return copiedMsg{text: text, err: write(text)}
	}
}

// cycleAttribute regroups the board by the next or previous attribute.
func (m Model) cycleAttribute(delta int) (tea.Model, tea.Cmd) {
	attrs := m.board.Attributes
	if len(attrs) < 2 {
		m.status = "no other grouping attributes"
		return m, nil
	}
	current := 0
	for idx, attr := range attrs {
		if strings.EqualFold(attr.LogicalName, m.board.Selected) {
			current = idx
			break
		}
	}
	next := attrs[(current+delta+len(attrs))%len(attrs)]
	m.cancelGrab()
	m.status = "grouping by " + next.Label + "..."
	svc := m.svc
	name := next.LogicalName
	return m, m.loadCmd(func(ctx context.Context) (app.Board, error) {
		return svc.Select(ctx, name)
	}, "grouped by "+next.Label)
}

// handleMouseClick selects the card under the pointer and starts a drag.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || !m.loaded || m.help.ShowAll {
		return m, nil
	}
	colIdx := m.columnAtX(msg.X)
	if colIdx < 0 {
		return m, nil
	}
	if m.grabbed != "" && !m.mouseDrag {
		m.selectedColumn = colIdx
		return m.dropOnSelected()
	}
	cardIdx := m.cardAtY(colIdx, msg.Y)
	m.selectedColumn = colIdx
	if cardIdx < 0 {
		m.selectedCard = 0
		return m, nil
	}
	m.selectedCard = cardIdx
	m = m.grabSelected()
	m.mouseDrag = m.grabbed != ""
	return m, nil
}

// handleMouseRelease drops a mouse-dragged card onto the column under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || m.grabbed == "" {
		return m, nil
	}
	colIdx := m.columnAtX(msg.X)
	columns := m.visibleColumns()
	if colIdx < 0 || columns[colIdx].Key == m.grabSource {
		m.cancelGrab()
		m.status = "ready"
		return m, nil
	}
	m.selectedColumn = colIdx
	return m.dropOn(columns[colIdx].Key)
}

// applyBoard stores one board and keeps the selection on the same record.
func (m *Model) applyBoard(board app.Board) {
	selected, hadSelection := m.selectedCardValue()
	m.board = board
	m.loaded = true
	if m.pending == nil {
		m.pending = map[string]string{}
	}
	if hadSelection && m.focusRecord(selected.RecordID) {
		return
	}
	m.clampSelection()
}

// focusRecord moves the selection onto one record's card.
func (m *Model) focusRecord(recordID string) bool {
	for colIdx, column := range m.visibleColumns() {
		for cardIdx, card := range column.Cards {
			if card.RecordID == recordID {
				m.selectedColumn = colIdx
				m.selectedCard = cardIdx
				return true
			}
		}
	}
	return false
}

// clampSelection keeps selection indexes inside the visible board.
func (m *Model) clampSelection() {
	columns := m.visibleColumns()
	m.selectedColumn = clamp(m.selectedColumn, 0, len(columns)-1)
	if len(columns) == 0 {
		m.selectedCard = 0
		return
	}
	m.selectedCard = clamp(m.selectedCard, 0, len(columns[m.selectedColumn].Cards)-1)
}

// visibleColumns returns the columns that are not collapsed.
func (m Model) visibleColumns() []domain.BoardColumn {
	out := make([]domain.BoardColumn, 0, len(m.board.Layout.Columns))
	for _, column := range m.board.Layout.Columns {
		if !column.Collapsed {
			out = append(out, column)
		}
	}
	return out
}

// currentColumn returns the selected visible column.
func (m Model) currentColumn() (domain.BoardColumn, bool) {
	columns := m.visibleColumns()
	if m.selectedColumn < 0 || m.selectedColumn >= len(columns) {
		return domain.BoardColumn{}, false
	}
	return columns[m.selectedColumn], true
}

// selectedCardValue returns the selected card.
func (m Model) selectedCardValue() (domain.Card, bool) {
	column, ok := m.currentColumn()
	if !ok || m.selectedCard < 0 || m.selectedCard >= len(column.Cards) {
		return domain.Card{}, false
	}
	return column.Cards[m.selectedCard], true
}

// secondaryFields returns the labeled field lines shown under a card title.
func (m Model) secondaryFields(card domain.Card) []string {
	out := make([]string, 0, m.cards.MaxFields)
	titleSeen := false
	for _, field := range card.Fields {
		if field.Text == "" {
			continue
		}
		if !titleSeen {
			titleSeen = true
			continue
		}
		if len(out) >= m.cards.MaxFields {
			break
		}
		out = append(out, field.Label+": "+field.Text)
	}
	return out
}

// cardHeight returns the rendered line count of one card.
func (m Model) cardHeight(card domain.Card) int {
	return 1 + len(m.secondaryFields(card))
}

// columnWidth returns column width.
func (m Model) columnWidth() int {
	columns := len(m.visibleColumns())
	if columns == 0 {
		return 24
	}
	w := 28
	if m.width > 0 {
		if candidate := (m.width - columns*columnOverhead) / columns; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 18, 42)
}

// columnHeight returns the outer column height.
func (m Model) columnHeight() int {
	if m.height <= 0 {
		return defaultColumnHeight
	}
	return max(8, m.height-boardTopRows-footerRows-1)
}

// cardWindowHeight returns the rows available for cards inside one column.
func (m Model) cardWindowHeight() int {
	return max(1, m.columnHeight()-2-columnHeaderRows)
}

// columnScroll returns the first card row shown for one column.
func (m Model) columnScroll(colIdx int) int {
	if colIdx != m.selectedColumn {
		return 0
	}
	column, ok := m.currentColumn()
	if !ok || m.selectedCard >= len(column.Cards) {
		return 0
	}
	start := 0
	for idx := 0; idx < m.selectedCard; idx++ {
		start += m.cardHeight(column.Cards[idx]) + 1
	}
	end := start + m.cardHeight(column.Cards[m.selectedCard]) - 1
	if window := m.cardWindowHeight(); end >= window {
		return end - window + 1
	}
	return 0
}

// columnAtX returns the visible column index under one x coordinate.
func (m Model) columnAtX(x int) int {
	if x < 0 {
		return -1
	}
	idx := x / (m.columnWidth() + columnOverhead)
	if idx >= len(m.visibleColumns()) {
		return -1
	}
	return idx
}

// cardAtY returns the card index under one y coordinate in one column.
func (m Model) cardAtY(colIdx, y int) int {
	columns := m.visibleColumns()
	if colIdx < 0 || colIdx >= len(columns) {
		return -1
	}
	row := y - (boardTopRows + 1 + columnHeaderRows)
	if row < 0 {
		return -1
	}
	row += m.columnScroll(colIdx)
	offset := 0
	for idx, card := range columns[colIdx].Cards {
		height := m.cardHeight(card)
		if row >= offset && row < offset+height {
			return idx
		}
		offset += height + 1
	}
	return -1
}

// renderHeader renders the title line.
func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	header := titleStyle.Render(m.title) + "  " + m.board.EntityType
	if attr, ok := m.board.SelectedAttribute(); ok {
		header += statusStyle.Render("  grouped by: " + attr.Label)
	}
	header += statusStyle.Render("  " + m.board.Counter())
	if m.board.Paging.Page > 1 || m.board.Paging.HasNextPage {
		header += statusStyle.Render(fmt.Sprintf("  page %d", max(1, m.board.Paging.Page)))
	}
	switch {
	case m.grabbed != "":
		header += statusStyle.Render("  [dragging]")
	case len(m.pending) > 0:
		header += statusStyle.Render(fmt.Sprintf("  [saving %d]", len(m.pending)))
	}
	if m.board.Loading {
		header += statusStyle.Render("  loading...")
	}
	return header
}

// renderAttributeTabs renders the selectable grouping attributes.
func (m Model) renderAttributeTabs() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if len(m.board.Attributes) == 0 {
		return muted.Render("no option set attributes in this view")
	}
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	tabs := make([]string, 0, len(m.board.Attributes))
	for _, attr := range m.board.Attributes {
		if strings.EqualFold(attr.LogicalName, m.board.Selected) {
			tabs = append(tabs, active.Render(attr.Label))
			continue
		}
		tabs = append(tabs, muted.Render(attr.Label))
	}
	return strings.Join(tabs, muted.Render(" │ "))
}

// renderBoard renders the visible columns side by side.
func (m Model) renderBoard() string {
	columns := m.visibleColumns()
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	mutedStyle := lipgloss.NewStyle().Foreground(muted)
	if len(columns) == 0 {
		return mutedStyle.Render("nothing to show: the view has no option set attribute")
	}

	colWidth := m.columnWidth()
	innerHeight := max(1, m.columnHeight()-2)
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selectedCardStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	grabbedCardStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	pendingCardStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)

	views := make([]string, 0, len(columns))
	for colIdx, column := range columns {
		accent := columnAccent(column)
		header := lipgloss.NewStyle().Bold(true).Foreground(accent).
			Render(truncate(fmt.Sprintf("%s (%d)", column.Label, len(column.Cards)), colWidth))

		cardLines := make([]string, 0, len(column.Cards)*3)
		if len(column.Cards) == 0 {
			cardLines = append(cardLines, mutedStyle.Render("(empty)"))
		}
		for cardIdx, card := range column.Cards {
			_, pending := m.pending[card.RecordID]
			selected := colIdx == m.selectedColumn && cardIdx == m.selectedCard && m.grabbed == ""
			prefix := "  "
			style := lipgloss.NewStyle()
			switch {
			case card.RecordID == m.grabbed:
				prefix = "» "
				style = grabbedCardStyle
			case pending:
				prefix = "… "
				style = pendingCardStyle
			case selected:
				prefix = "│ "
				style = selectedCardStyle
			}
			cardLines = append(cardLines, style.Render(prefix+truncate(card.Title(), max(1, colWidth-2))))
			for _, field := range m.secondaryFields(card) {
				cardLines = append(cardLines, "  "+mutedStyle.Render(truncate(field, max(1, colWidth-2))))
			}
			if cardIdx < len(column.Cards)-1 {
				cardLines = append(cardLines, "")
			}
		}
		if scroll := m.columnScroll(colIdx); scroll > 0 && scroll < len(cardLines) {
			cardLines = cardLines[scroll:]
		}

		lines := append([]string{header, ""}, cardLines...)
		content := fitLines(strings.Join(lines, "\n"), innerHeight)

		style := baseColStyle
		switch {
		case m.grabbed != "" && colIdx == m.selectedColumn && column.DropTarget():
			style = style.BorderForeground(lipgloss.Color("42"))
		case m.grabbed != "" && colIdx == m.selectedColumn:
			style = style.BorderForeground(lipgloss.Color("203"))
		case colIdx == m.selectedColumn:
			style = style.BorderForeground(accent)
		}
		views = append(views, style.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// columnAccent returns the option color of one column, or the default accent.
func columnAccent(column domain.BoardColumn) color.Color {
	value := strings.TrimSpace(column.Color)
	if value == "" {
		return lipgloss.Color("62")
	}
	return lipgloss.Color(value)
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
