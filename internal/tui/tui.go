// Package tui is the interactive terminal view: a scrollable, decorated
// document with a cursor, plus revert and refresh bound to keys.
package tui

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"

	"github.com/revmark/revmark/internal/decoration"
	"github.com/revmark/revmark/internal/gitdiff"
	"github.com/revmark/revmark/internal/render"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Revert  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Revert:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "revert")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// Model drives the view. All session work happens synchronously inside
// Update; there are no background commands to race with.
type Model struct {
	session *decoration.Session
	source  gitdiff.Source
	styles  render.Styles
	title   string

	keys   keyMap
	vp     viewport.Model
	cursor int // rune offset into the document, may equal Len()
	status string
	ready  bool
}

// New returns a model over an already-refreshed session. source is re-invoked
// on the refresh key.
func New(session *decoration.Session, source gitdiff.Source, styles render.Styles, title string) Model {
	m := Model{
		session: session,
		source:  source,
		styles:  styles,
		title:   title,
		keys:    defaultKeyMap(),
	}
	m.session.SetFocus(m.cursor)
	m.status = countStatus(len(session.Regions()))
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, max(msg.Height-2, 1))
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = max(msg.Height-2, 1)
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveLine(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveLine(1)
		case key.Matches(msg, m.keys.Left):
			m.cursor = prevGrapheme(m.session.Document().Text(), m.cursor)
		case key.Matches(msg, m.keys.Right):
			m.cursor = nextGrapheme(m.session.Document().Text(), m.cursor)
		case key.Matches(msg, m.keys.Revert):
			m.revert()
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		default:
			return m, nil
		}
		m.session.SetFocus(m.cursor)
		m.sync()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return titleStyle.Render(m.title) + "\n" + m.vp.View() + "\n" + m.statusLine()
}

// Cursor returns the cursor's rune offset, for tests and embedding callers.
func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) revert() {
	if !m.session.RevertAt(m.cursor) {
		m.status = "no difference at cursor"
		return
	}
	m.clampCursor()
	m.status = fmt.Sprintf("reverted; %d left", len(m.session.Regions()))
}

func (m *Model) refresh() {
	if _, err := m.session.Refresh(context.Background(), m.source); err != nil {
		m.status = err.Error()
		m.clampCursor()
		return
	}
	m.clampCursor()
	m.status = countStatus(len(m.session.Regions()))
}

// moveLine moves the cursor up or down one line, keeping the column where the
// target line is long enough.
func (m *Model) moveLine(delta int) {
	doc := m.session.Document()
	line, col := doc.Position(m.cursor)
	line += delta
	if line < 1 || line > doc.LineCount() {
		return
	}
	start := doc.OffsetOfLine(line)
	end := doc.NextLineStart(start)
	width := end - start
	if r, ok := doc.RuneAt(end - 1); ok && r == '\n' && end > start {
		width--
	}
	if col > width {
		col = width
	}
	m.cursor = start + col
}

func (m *Model) clampCursor() {
	if n := m.session.Document().Len(); m.cursor > n {
		m.cursor = n
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// sync rebuilds the viewport content and keeps the cursor's line visible.
func (m *Model) sync() {
	if !m.ready {
		return
	}
	doc := m.session.Document()
	m.vp.SetContent(render.Render(doc, m.session.Regions(), m.styles))

	line, _ := doc.Position(m.cursor)
	top := m.vp.YOffset
	if line-1 < top {
		m.vp.SetYOffset(line - 1)
	} else if line-1 >= top+m.vp.Height {
		m.vp.SetYOffset(line - m.vp.Height)
	}
}

func (m Model) statusLine() string {
	doc := m.session.Document()
	line, col := doc.Position(m.cursor)
	left := fmt.Sprintf("%d:%d  %s", line, col+1, m.status)

	if r := m.session.RegionAt(m.cursor); r != nil && r.Restorable() != "" {
		left += "  was: " + r.Restorable()
	}
	return statusStyle.Render(runewidth.Truncate(left, max(m.vp.Width, 1), "…"))
}

func countStatus(n int) string {
	if n == 1 {
		return "1 difference"
	}
	return fmt.Sprintf("%d differences", n)
}

// nextGrapheme returns the offset just past the grapheme cluster containing
// off, clamped to the text's rune length.
func nextGrapheme(text string, off int) int {
	pos := 0
	iter := graphemes.FromString(text)
	for iter.Next() {
		end := pos + utf8.RuneCountInString(iter.Value())
		if off < end {
			return end
		}
		pos = end
	}
	return pos
}

// prevGrapheme returns the offset of the start of the grapheme cluster
// preceding off.
func prevGrapheme(text string, off int) int {
	if off <= 0 {
		return 0
	}
	pos, prev := 0, 0
	iter := graphemes.FromString(text)
	for iter.Next() {
		if pos >= off {
			break
		}
		prev = pos
		pos += utf8.RuneCountInString(iter.Value())
	}
	if pos < off {
		return pos
	}
	return prev
}
