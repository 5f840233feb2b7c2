// Package layout turns a render tree into lines of text for a
// character-cell display.
//
// Rules:
//   - vbox stacks its children; a vbox other than the root indents
//     its children by Config.Indent cells.
//   - hbox puts every leaf under it on one line, separated by a blank.
//   - text is split on newlines and word-wrapped to the available width.
//   - button is drawn as [text] and is focusable.
//
// Unknown node types are laid out like vbox.
package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/elizafairlady/go-postview/ui/proto"
)

// RNode is a resolved tree node.
type RNode struct {
	ID       string
	Type     string
	Props    map[string]string
	Parent   *RNode
	Children []*RNode
}

// Span is a run of cells drawn for one node.
type Span struct {
	ID    string
	Type  string
	Style string // the node's "style" prop
	Text  string
}

// Line is one display row.
type Line struct {
	Indent int
	Spans  []Span
}

// Width returns the number of cells the line covers.
func (l Line) Width() int {
	w := l.Indent
	for i, s := range l.Spans {
		if i > 0 {
			w++
		}
		w += utf8.RuneCountInString(s.Text)
	}
	return w
}

// Config holds layout settings.
type Config struct {
	Width  int // wrap width in cells; 0 disables wrapping
	Indent int // per nested vbox
}

// Build resolves a proto.Tree into an RNode tree, or nil when the tree
// has no root. Each node appears once even if listed as a child twice.
func Build(t *proto.Tree) *RNode {
	if t == nil || t.Nodes[t.Root] == nil {
		return nil
	}
	return buildNode(t, t.Root, nil, make(map[string]bool))
}

func buildNode(t *proto.Tree, id string, parent *RNode, seen map[string]bool) *RNode {
	pn := t.Nodes[id]
	if pn == nil || seen[id] {
		return nil
	}
	seen[id] = true
	rn := &RNode{ID: pn.ID, Type: pn.Type, Props: pn.Props, Parent: parent}
	for _, cid := range pn.Children {
		if c := buildNode(t, cid, rn, seen); c != nil {
			rn.Children = append(rn.Children, c)
		}
	}
	return rn
}

// Flatten returns all nodes in depth-first order.
func Flatten(n *RNode) []*RNode {
	if n == nil {
		return nil
	}
	out := []*RNode{n}
	for _, c := range n.Children {
		out = append(out, Flatten(c)...)
	}
	return out
}

// Focusable returns the IDs of focusable nodes in depth-first order.
func Focusable(n *RNode) []string {
	var ids []string
	for _, rn := range Flatten(n) {
		if rn.Props["focusable"] == "1" {
			ids = append(ids, rn.ID)
		}
	}
	return ids
}

// Find returns the node with the given id, or nil.
func Find(n *RNode, id string) *RNode {
	for _, rn := range Flatten(n) {
		if rn.ID == id {
			return rn
		}
	}
	return nil
}

// NextFocusable returns the focusable node after cur, wrapping around.
// An empty or unknown cur yields the first one.
func NextFocusable(n *RNode, cur string) string {
	return stepFocus(Focusable(n), cur, 1)
}

// PrevFocusable returns the focusable node before cur, wrapping around.
// An empty or unknown cur yields the last one.
func PrevFocusable(n *RNode, cur string) string {
	return stepFocus(Focusable(n), cur, -1)
}

func stepFocus(ids []string, cur string, d int) string {
	if len(ids) == 0 {
		return ""
	}
	for i, id := range ids {
		if id == cur {
			return ids[(i+d+len(ids))%len(ids)]
		}
	}
	if d < 0 {
		return ids[len(ids)-1]
	}
	return ids[0]
}

// Lines lays out the tree rooted at n.
func Lines(n *RNode, conf Config) []Line {
	if n == nil {
		return nil
	}
	var out []Line
	layoutNode(n, 0, conf, &out)
	return out
}

// LineOf returns the index of the first line holding a span of id, or
// -1.
func LineOf(lines []Line, id string) int {
	for i, l := range lines {
		for _, s := range l.Spans {
			if s.ID == id {
				return i
			}
		}
	}
	return -1
}

func layoutNode(n *RNode, indent int, conf Config, out *[]Line) {
	switch n.Type {
	case "text":
		for _, para := range strings.Split(n.Props["text"], "\n") {
			for _, row := range wrap(para, conf.Width-indent) {
				*out = append(*out, Line{Indent: indent, Spans: []Span{spanOf(n, row)}})
			}
		}
	case "button":
		*out = append(*out, Line{Indent: indent, Spans: []Span{spanOf(n, "["+n.Props["text"]+"]")}})
	case "hbox":
		line := Line{Indent: indent}
		for _, leaf := range Flatten(n) {
			switch leaf.Type {
			case "text":
				line.Spans = append(line.Spans, spanOf(leaf, strings.ReplaceAll(leaf.Props["text"], "\n", " ")))
			case "button":
				line.Spans = append(line.Spans, spanOf(leaf, "["+leaf.Props["text"]+"]"))
			}
		}
		*out = append(*out, line)
	default:
		inner := indent
		if n.Parent != nil {
			inner += conf.Indent
		}
		for _, c := range n.Children {
			layoutNode(c, inner, conf, out)
		}
	}
}

func spanOf(n *RNode, text string) Span {
	return Span{ID: n.ID, Type: n.Type, Style: n.Props["style"], Text: text}
}

// wrap breaks s into rows of at most width cells at blanks. Words
// longer than width are split. width <= 0 disables wrapping.
func wrap(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var rows []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				rows = append(rows, string(cur))
				cur = nil
			}
			rows = append(rows, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			rows = append(rows, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 {
		rows = append(rows, string(cur))
	}
	return rows
}
