// Package term draws render trees on a character terminal and turns
// key presses into host actions.
package term

import (
	"io"
	"strings"

	"github.com/elizafairlady/go-postview/ui/layout"
	"github.com/elizafairlady/go-postview/ui/proto"
	"github.com/elizafairlady/go-postview/ui/theme"
)

const clearScreen = "\x1b[H\x1b[2J"

const helpText = "tab/j/k: move  enter: open  esc: back  q: quit"

// Screen holds the tree being shown, the focused button and the scroll
// offset. It is not safe for concurrent use.
type Screen struct {
	theme *theme.Theme

	// Shortcuts maps runes to the id of a button they click.
	Shortcuts map[rune]string
	// Back is the id of the button Esc and Backspace click.
	Back string

	width, height int
	root          *layout.RNode
	lines         []layout.Line
	focus         string
	top           int
}

// NewScreen returns an empty screen drawn with th.
func NewScreen(th *theme.Theme) *Screen {
	if th == nil {
		th = theme.Default()
	}
	return &Screen{theme: th, Shortcuts: map[rune]string{}}
}

// SetSize sets the terminal size in cells. A height of zero shows
// every line and no help line.
func (s *Screen) SetSize(width, height int) {
	s.width, s.height = width, height
	s.relayout()
}

// Update replaces the shown tree. Focus stays on the same node id when
// it still exists, and moves to the first button otherwise.
func (s *Screen) Update(t *proto.Tree) {
	s.root = layout.Build(t)
	if layout.Find(s.root, s.focus) == nil || !s.focusable(s.focus) {
		s.focus = layout.NextFocusable(s.root, "")
	}
	s.relayout()
}

// Focus returns the id of the focused node, or "".
func (s *Screen) Focus() string { return s.focus }

// Top returns the index of the first visible line.
func (s *Screen) Top() int { return s.top }

func (s *Screen) focusable(id string) bool {
	n := layout.Find(s.root, id)
	return n != nil && n.Props["focusable"] == "1"
}

func (s *Screen) relayout() {
	s.lines = layout.Lines(s.root, layout.Config{Width: s.width, Indent: s.theme.Indent})
	s.scroll(0)
}

// rows returns the number of lines available for the tree.
func (s *Screen) rows() int {
	if s.height <= 0 {
		return len(s.lines)
	}
	return max(s.height-1, 1)
}

func (s *Screen) scroll(d int) {
	s.top = min(s.top+d, len(s.lines)-s.rows())
	s.top = max(s.top, 0)
}

// reveal scrolls until the focused line is visible.
func (s *Screen) reveal() {
	i := layout.LineOf(s.lines, s.focus)
	switch {
	case i < 0:
	case i < s.top:
		s.top = i
	case i >= s.top+s.rows():
		s.top = i - s.rows() + 1
	}
}

// Handle applies k. It returns the action to report to the host, if
// any, and whether the user asked to quit.
func (s *Screen) Handle(k KeyEvent) (a *proto.Action, quit bool) {
	switch k.Key {
	case KeyTab:
		s.focus = layout.NextFocusable(s.root, s.focus)
		s.reveal()
	case KeyBackTab:
		s.focus = layout.PrevFocusable(s.root, s.focus)
		s.reveal()
	case KeyEnter:
		return s.click(s.focus), false
	case KeyUp:
		s.scroll(-1)
	case KeyDown:
		s.scroll(1)
	case KeyPgUp:
		s.scroll(-s.rows())
	case KeyPgDn:
		s.scroll(s.rows())
	case KeyEsc, KeyBackspace:
		return s.click(s.Back), false
	case KeyDel:
		return nil, true
	case KeyCtrl:
		return nil, k.Rune == 3
	case KeyRune:
		switch k.Rune {
		case 'q':
			return nil, true
		case 'j':
			return s.Handle(KeyEvent{Key: KeyTab})
		case 'k':
			return s.Handle(KeyEvent{Key: KeyBackTab})
		}
		if id, ok := s.Shortcuts[k.Rune]; ok {
			return s.click(id), false
		}
	}
	return nil, false
}

// click returns the click action for node id, or nil when there is no
// such button.
func (s *Screen) click(id string) *proto.Action {
	if !s.focusable(id) {
		return nil
	}
	return proto.Click(id, layout.Find(s.root, id).Props)
}

// Render returns the visible part of the screen, rows separated by
// CRLF for a terminal in raw mode.
func (s *Screen) Render() string {
	var b strings.Builder
	end := min(s.top+s.rows(), len(s.lines))
	for i := s.top; i < end; i++ {
		if i > s.top {
			b.WriteString("\r\n")
		}
		s.renderLine(&b, s.lines[i])
	}
	if s.height > 0 {
		for i := end - s.top; i < s.rows(); i++ {
			b.WriteString("\r\n")
		}
		b.WriteString("\r\n")
		b.WriteString(s.theme.Status.Render(helpText))
	}
	return b.String()
}

func (s *Screen) renderLine(b *strings.Builder, l layout.Line) {
	b.WriteString(strings.Repeat(" ", l.Indent))
	for i, sp := range l.Spans {
		if i > 0 {
			b.WriteByte(' ')
		}
		st := s.theme.For(sp.Style, sp.Type)
		if sp.ID == s.focus {
			st = s.theme.Focus.Inherit(st)
		}
		b.WriteString(st.Render(sp.Text))
	}
}

// Paint clears the terminal and draws the screen on w.
func (s *Screen) Paint(w io.Writer) error {
	_, err := io.WriteString(w, clearScreen+s.Render())
	return err
}

// Text lays out t without a screen and returns it as plain lines
// separated by newlines.
func Text(t *proto.Tree, width int) string {
	var b strings.Builder
	for _, l := range layout.Lines(layout.Build(t), layout.Config{Width: width, Indent: theme.Plain().Indent}) {
		b.WriteString(strings.Repeat(" ", l.Indent))
		for i, sp := range l.Spans {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(sp.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
