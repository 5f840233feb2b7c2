// Package proto implements the text forms of render trees and
// user actions exchanged between the application core and a host.
//
// Tree format, one directive per line, nodes in declaration order:
//
//	rev <uint64>
//	root <nodeid>
//	node <id> <type>
//	prop <id> <k>=<v> <k>=<v> ...
//	child <parent> <child>
//
// Action format, one per line:
//
//	<kind> <k>=<v> <k>=<v> ...
//
// Values containing blanks, quotes, '=' or backslashes, and the empty
// value, are written in double quotes with \n, \t, \\ and \" escapes.
// Props and action keys are always written in sorted order so equal
// trees serialize to equal text.
package proto

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Node is one node of a serialized tree.
type Node struct {
	ID       string
	Type     string
	Props    map[string]string
	Children []string
}

// Tree is a complete render tree snapshot.
type Tree struct {
	Rev   uint64
	Root  string
	Nodes map[string]*Node
	Order []string // declaration order, parents before children
}

// Action is a user action reported by a host, e.g. a button click.
type Action struct {
	Kind string
	KVs  map[string]string
}

// Get returns the value of key k, or "" when absent.
func (a *Action) Get(k string) string {
	if a == nil {
		return ""
	}
	return a.KVs[k]
}

// Props that only describe presentation. Click leaves them out.
var presentationProps = map[string]bool{"text": true, "focusable": true, "style": true}

// Click returns the action a host reports when the node with the given
// id and props is clicked. It carries the id and every prop that is not
// presentation, so handlers see props such as "on".
func Click(id string, props map[string]string) *Action {
	a := &Action{Kind: "click", KVs: map[string]string{"id": id}}
	for k, v := range props {
		if !presentationProps[k] && k != "id" {
			a.KVs[k] = v
		}
	}
	return a
}

func mustQuote(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\n\\\"=")
}

// EscapeValue quotes s when it cannot be written bare.
func EscapeValue(s string) string {
	if !mustQuote(s) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// UnescapeValue reverses EscapeValue. Unquoted input is returned as is.
func UnescapeValue(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(body[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

// FormatKV formats k=v, escaping v.
func FormatKV(k, v string) string {
	return k + "=" + EscapeValue(v)
}

// ParseKV splits a k=v token and unescapes v.
func ParseKV(token string) (k, v string, ok bool) {
	k, raw, ok := strings.Cut(token, "=")
	if !ok {
		return "", "", false
	}
	return k, UnescapeValue(raw), true
}

// Tokenize splits line on blanks. A quoted run, alone or as the value
// half of k="v", stays inside one token.
func Tokenize(line string) []string {
	var (
		tokens []string
		cur    strings.Builder
		quoted bool
		inTok  bool
	)
	flush := func() {
		if inTok {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inTok = false
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted && c == '\\' && i+1 < len(line):
			cur.WriteByte(c)
			cur.WriteByte(line[i+1])
			i++
		case c == '"':
			quoted = !quoted
			cur.WriteByte(c)
			inTok = true
		case !quoted && (c == ' ' || c == '\t'):
			flush()
		default:
			cur.WriteByte(c)
			inTok = true
		}
	}
	flush()
	return tokens
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func writeKVs(b *strings.Builder, kvs map[string]string) {
	for _, k := range sortedKeys(kvs) {
		b.WriteByte(' ')
		b.WriteString(FormatKV(k, kvs[k]))
	}
}

// SerializeTree writes t in the tree text format.
func SerializeTree(t *Tree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rev %d\nroot %s\n", t.Rev, t.Root)
	for _, id := range t.Order {
		n, ok := t.Nodes[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "node %s %s\n", n.ID, n.Type)
		if len(n.Props) > 0 {
			b.WriteString("prop " + n.ID)
			writeKVs(&b, n.Props)
			b.WriteByte('\n')
		}
		for _, c := range n.Children {
			fmt.Fprintf(&b, "child %s %s\n", n.ID, c)
		}
	}
	return b.String()
}

// ParseTree reads the tree text format. Unknown directives are skipped.
func ParseTree(text string) (*Tree, error) {
	t := &Tree{Nodes: make(map[string]*Node)}
	lookup := func(id string) *Node {
		n, ok := t.Nodes[id]
		if !ok {
			n = &Node{ID: id, Props: make(map[string]string)}
			t.Nodes[id] = n
			t.Order = append(t.Order, id)
		}
		return n
	}
	for lineno, line := range strings.Split(text, "\n") {
		toks := Tokenize(strings.TrimSpace(line))
		if len(toks) == 0 {
			continue
		}
		need := map[string]int{"rev": 2, "root": 2, "node": 3, "prop": 2, "child": 3}[toks[0]]
		if len(toks) < need {
			return nil, fmt.Errorf("proto: line %d: short %s directive", lineno+1, toks[0])
		}
		switch toks[0] {
		case "rev":
			rev, err := strconv.ParseUint(toks[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("proto: line %d: bad rev: %w", lineno+1, err)
			}
			t.Rev = rev
		case "root":
			t.Root = toks[1]
		case "node":
			lookup(toks[1]).Type = toks[2]
		case "prop":
			n := lookup(toks[1])
			for _, kv := range toks[2:] {
				if k, v, ok := ParseKV(kv); ok {
					n.Props[k] = v
				}
			}
		case "child":
			n := lookup(toks[1])
			n.Children = append(n.Children, toks[2])
		}
	}
	return t, nil
}

// SerializeAction writes a in the action line format.
func SerializeAction(a *Action) string {
	var b strings.Builder
	b.WriteString(a.Kind)
	writeKVs(&b, a.KVs)
	return b.String()
}

// ParseAction reads one action line.
func ParseAction(line string) (*Action, error) {
	toks := Tokenize(strings.TrimSpace(line))
	if len(toks) == 0 {
		return nil, fmt.Errorf("proto: empty action")
	}
	a := &Action{Kind: toks[0], KVs: make(map[string]string)}
	for _, kv := range toks[1:] {
		if k, v, ok := ParseKV(kv); ok {
			a.KVs[k] = v
		}
	}
	return a, nil
}
