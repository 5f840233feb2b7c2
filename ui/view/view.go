// Package view provides the presentation-agnostic render tree that the
// application core produces and hosts display.
//
// A tree is built from Nodes with chaining helpers:
//
//	view.VBox("root",
//		view.Button("home", "Home").Prop("on", "list"),
//		view.TextNode("heading", "Home"),
//	)
//
// Node IDs must be unique within a tree; Serialize keys nodes by ID.
package view

import (
	"strconv"

	"github.com/elizafairlady/go-postview/ui/proto"
)

// Node is a render tree node with an ID, type, props, and children.
type Node struct {
	ID       string
	Type     string
	Props    map[string]string
	Children []*Node
}

// N creates a new node with the given id and type.
func N(id, typ string) *Node {
	return &Node{
		ID:    id,
		Type:  typ,
		Props: make(map[string]string),
	}
}

// Prop sets a property on the node and returns it for chaining.
func (n *Node) Prop(k, v string) *Node {
	n.Props[k] = v
	return n
}

// PropInt sets an integer property.
func (n *Node) PropInt(k string, v int) *Node {
	n.Props[k] = strconv.Itoa(v)
	return n
}

// Text sets the "text" property.
func (n *Node) Text(s string) *Node {
	return n.Prop("text", s)
}

// Child appends child nodes and returns the parent for chaining.
func (n *Node) Child(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first node with the given id in depth-first order.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// VBox creates a vertical container.
func VBox(id string, children ...*Node) *Node {
	return N(id, "vbox").Child(children...)
}

// HBox creates a horizontal container. Hosts draw its children on one line.
func HBox(id string, children ...*Node) *Node {
	return N(id, "hbox").Child(children...)
}

// TextNode creates a text display node.
func TextNode(id, text string) *Node {
	return N(id, "text").Text(text)
}

// Button creates a focusable button. The "on" prop names the action
// reported when it is clicked.
func Button(id, text string) *Node {
	return N(id, "button").Text(text).Prop("focusable", "1")
}

// Serialize converts the node tree to a proto.Tree.
func Serialize(root *Node, rev uint64) *proto.Tree {
	t := &proto.Tree{
		Rev:   rev,
		Root:  root.ID,
		Nodes: make(map[string]*proto.Node),
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		pn := &proto.Node{
			ID:    n.ID,
			Type:  n.Type,
			Props: make(map[string]string, len(n.Props)),
		}
		for k, v := range n.Props {
			pn.Props[k] = v
		}
		for _, child := range n.Children {
			pn.Children = append(pn.Children, child.ID)
		}
		t.Nodes[n.ID] = pn
		t.Order = append(t.Order, n.ID)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return t
}
