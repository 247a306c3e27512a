package tui

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/dnd"
	"github.com/evanschultz/kanboard/internal/domain"
)

// LoadFunc fetches the board to display.
type LoadFunc func(context.Context) (domain.Board, error)

// renderSink receives render states from the board view. Copies of a Model share it.
type renderSink struct {
	state   app.RenderState
	renders int
}

func (s *renderSink) receive(state app.RenderState) {
	s.state = state
	s.renders++
}

// pointerState tracks one left-button press from click to release.
type pointerState struct {
	armed    bool
	dragging bool
	subject  dnd.Subject
	start    dnd.Point
	// origin is the pressed item's rectangle when the button went down.
	origin dnd.Rect
}

// Model drives the board view from terminal mouse and key input.
type Model struct {
	load     LoadFunc
	view     *app.BoardView
	sink     *renderSink
	viewOpts []app.BoardViewOption
	logger   app.Logger

	ready  bool
	width  int
	height int
	err    error
	status string

	help     help.Model
	keys     keyMap
	markdown *markdownRenderer

	layoutCfg  LayoutConfig
	activation int
	pointer    pointerState
}

// loadedMsg carries a loaded board.
type loadedMsg struct {
	board domain.Board
	err   error
}

// NewModel constructs a new value for this package.
func NewModel(load LoadFunc, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		load:       load,
		sink:       &renderSink{},
		status:     "loading...",
		help:       h,
		keys:       newKeyMap(),
		markdown:   &markdownRenderer{},
		layoutCfg:  DefaultLayoutConfig(),
		activation: DefaultActivationDistance,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.view = app.NewBoardView(m.sink.receive, m.viewOpts...)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadBoard
}

// Board returns the board as currently ordered.
func (m Model) Board() domain.Board {
	return m.view.Board()
}

// loadBoard loads required data for the current operation.
func (m Model) loadBoard() tea.Msg {
	if m.load == nil {
		return loadedMsg{err: app.ErrNoBoardSource}
	}
	board, err := m.load(context.Background())
	return loadedMsg{board: board, err: err}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logInfo("board load failed", "err", msg.err)
			return m, nil
		}
		m.err = nil
		m.pointer = pointerState{}
		m.view.Receive(msg.board)
		m.logInfo("board loaded", "board", msg.board.ID, "columns", len(msg.board.Columns))
		m.status = "ready"
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancelDrag):
		if m.pointer.dragging {
			m.view.Cancel()
			m.status = "drag canceled"
		}
		m.pointer = pointerState{}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		if m.pointer.dragging {
			m.view.Cancel()
		}
		m.pointer = pointerState{}
		m.status = "reloading..."
		return m, m.loadBoard
	default:
		return m, nil
	}
}

// handleMouseClick arms a gesture on the item under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.err != nil || m.pointer.dragging {
		return m, nil
	}
	subject, box, ok := m.layout().hitTest(msg.X, msg.Y)
	if !ok {
		m.pointer = pointerState{}
		return m, nil
	}
	m.pointer = pointerState{
		armed:   true,
		subject: subject,
		start:   cellPoint(msg.X, msg.Y),
		origin:  box.rect(),
	}
	if m.activation == 0 {
		m.startDrag()
	}
	return m, nil
}

// handleMouseMotion activates an armed gesture and streams drag-over frames.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.pointer.armed {
		return m, nil
	}
	at := cellPoint(msg.X, msg.Y)
	if !m.pointer.dragging {
		if travel(m.pointer.start, at) < float64(m.activation) {
			return m, nil
		}
		m.startDrag()
		if !m.pointer.dragging {
			return m, nil
		}
	}
	m.view.DragOver(m.pointer.subject, m.frameAt(m.pointer, at))
	return m, nil
}

// handleMouseRelease ends the gesture. Releasing outside every droppable region
// drops nothing.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	ptr := m.pointer
	m.pointer = pointerState{}
	if !ptr.dragging {
		return m, nil
	}
	at := cellPoint(msg.X, msg.Y)
	frame := m.frameAt(ptr, at)

	var out dnd.Outcome
	if insideAny(frame.Regions, at) {
		out = m.view.DragEnd(ptr.subject, frame)
	} else {
		out = m.view.End(dnd.DragEnd{Active: ptr.subject})
	}
	m.status = outcomeStatus(out)
	return m, nil
}

func (m Model) logInfo(msg string, keyvals ...any) {
	if m.logger == nil {
		return
	}
	m.logger.Info(msg, keyvals...)
}

func (m *Model) startDrag() {
	out := m.view.DragStart(m.pointer.subject)
	if out.Op == dnd.OpNone {
		m.pointer = pointerState{}
		return
	}
	m.pointer.dragging = true
	if m.pointer.subject.IsCard() {
		m.status = "dragging card"
	} else {
		m.status = "dragging column"
	}
}

// frameAt builds the collision frame for pointer position at.
func (m Model) frameAt(ptr pointerState, at dnd.Point) dnd.CollisionFrame {
	pointer := at
	return dnd.CollisionFrame{
		Pointer: &pointer,
		Active:  ptr.origin.Translate(at.X-ptr.start.X, at.Y-ptr.start.Y),
		Regions: m.layout().regions(),
	}
}

// layout places the current render state on screen.
func (m Model) layout() boardLayout {
	return layoutBoard(m.sink.state.Columns, m.layoutCfg, m.bodyHeight())
}

// bodyHeight returns the rows available to columns.
func (m Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	// preview and status lines plus the bordered help line
	return max(0, m.height-boardTop-4)
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderBoard())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderBoard renders the full screen as a string.
func (m Model) renderBoard() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready || m.sink.renders == 0 {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	state := m.sink.state
	header := titleStyle.Render("kanboard") + "  " + state.Title
	if state.Active != nil {
		header += statusStyle.Render("  [dragging " + state.Active.Kind.String() + "]")
	}

	layout := m.layout()
	styles := newBoardStyles(accent, muted, dim)
	blocks := make([]string, 0, len(layout.columns)*2)
	for i, column := range layout.columns {
		if i > 0 && m.layoutCfg.ColumnGap > 0 {
			blocks = append(blocks, blankBlock(m.layoutCfg.ColumnGap, layout.height))
		}
		blocks = append(blocks, renderColumn(column, layout.height, state.Active, styles))
	}
	body := statusStyle.Render("(no columns)")
	if len(blocks) > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	}

	sections := []string{header, "", body}
	if preview := m.renderPreview(state.Active, muted); preview != "" {
		sections = append(sections, preview)
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
	return content + "\n" + helpLine
}

// renderPreview renders the floating description of the dragged item.
func (m Model) renderPreview(active *dnd.DraggedItem, muted color.Color) string {
	if active == nil {
		return ""
	}
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	switch active.Kind {
	case dnd.KindCard:
		line := labelStyle.Render("moving card: ") + active.Card.Title
		if desc := strings.TrimSpace(active.Card.Description); desc != "" {
			if rendered := m.markdown.render(desc, m.width-4, previewMaxLines); rendered != "" {
				line += "\n" + rendered
			}
		}
		return line
	case dnd.KindColumn:
		return labelStyle.Render("moving column: ") + fmt.Sprintf("%s (%d cards)", active.Column.Title, len(active.Column.RealCards()))
	default:
		return ""
	}
}

// boardStyles groups the styles used for columns and cards.
type boardStyles struct {
	header      lipgloss.Style
	rule        lipgloss.Style
	cardTitle   lipgloss.Style
	cardSub     lipgloss.Style
	placeholder lipgloss.Style
	dragged     lipgloss.Style
}

func newBoardStyles(accent, muted, dim color.Color) boardStyles {
	return boardStyles{
		header:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		rule:        lipgloss.NewStyle().Foreground(dim),
		cardTitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		cardSub:     lipgloss.NewStyle().Foreground(muted),
		placeholder: lipgloss.NewStyle().Italic(true).Foreground(dim),
		dragged:     lipgloss.NewStyle().Faint(true).Foreground(dim),
	}
}

// renderColumn renders one column as exactly height lines of the column width.
func renderColumn(cb columnBox, height int, active *dnd.DraggedItem, styles boardStyles) string {
	width := cb.box.w
	columnDragged := active != nil && active.Kind == dnd.KindColumn && active.ID == cb.column.ID
	pick := func(style lipgloss.Style) lipgloss.Style {
		if columnDragged {
			return styles.dragged
		}
		return style
	}

	lines := make([]string, height)
	header := fmt.Sprintf("%s (%d)", cb.column.Title, len(cb.column.RealCards()))
	lines[0] = pick(styles.header).Render(padCell(header, width))
	lines[1] = pick(styles.rule).Render(strings.Repeat("─", width))

	for _, card := range cb.cards {
		top := card.box.y - boardTop
		cardDragged := active != nil && active.Kind == dnd.KindCard && active.ID == card.card.ID
		for row, text := range cardLines(card.card, card.box.h) {
			style := styles.cardTitle
			switch {
			case card.card.Placeholder:
				style = styles.placeholder
			case cardDragged:
				style = styles.dragged
			case row > 0:
				style = styles.cardSub
			}
			lines[top+row] = pick(style).Render(padCell(text, width))
		}
	}
	for i := range lines {
		if lines[i] == "" {
			lines[i] = strings.Repeat(" ", width)
		}
	}
	return strings.Join(lines, "\n")
}

// cardLines returns the plain text rows of one card.
func cardLines(card domain.Card, height int) []string {
	lines := make([]string, height)
	if card.Placeholder {
		lines[0] = "  ┄ drop here ┄"
		return lines
	}
	lines[0] = "▌ " + card.Title
	if height > 1 {
		switch {
		case strings.TrimSpace(card.Description) != "":
			first, _, _ := strings.Cut(strings.TrimSpace(card.Description), "\n")
			lines[1] = "  " + first
		case card.Cover != "":
			lines[1] = "  cover: " + card.Cover
		}
	}
	return lines
}

// padCell truncates or pads s to exactly width cells.
func padCell(s string, width int) string {
	s = truncate(s, width)
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func blankBlock(width, height int) string {
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func outcomeStatus(out dnd.Outcome) string {
	switch out.Op {
	case dnd.OpCrossMove:
		return "card moved"
	case dnd.OpReorderCards:
		return "card reordered"
	case dnd.OpReorderColumns:
		return "column moved"
	case dnd.OpCancel:
		return "drag canceled"
	default:
		return "no change"
	}
}

func cellPoint(x, y int) dnd.Point {
	return dnd.Point{X: float64(x), Y: float64(y)}
}

func travel(a, b dnd.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func insideAny(regions []dnd.Region, p dnd.Point) bool {
	for _, region := range regions {
		if region.Rect.Contains(p) {
			return true
		}
	}
	return false
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

// truncate truncates.
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
