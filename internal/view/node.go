// Package view turns typed view models into renderable node trees.
//
// Render functions are pure: the same model always yields the same tree
// and nothing outside the tree is touched. The terminal UI walks the tree
// to build widgets; tests inspect it directly.
package view

import "strings"

// Kind identifies what a Node displays.
type Kind string

const (
	KindList      Kind = "list"
	KindRow       Kind = "row"
	KindGrid      Kind = "grid"
	KindTile      Kind = "tile"
	KindDetail    Kind = "detail"
	KindField     Kind = "field"
	KindTransport Kind = "transport"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindProgress  Kind = "progress"
	KindImage     Kind = "image"
	KindEmpty     Kind = "empty"
)

// Node is one element of a rendered tree.
type Node struct {
	Kind     Kind
	Key      string // Record id for rows and tiles, field name for fields
	Text     string
	Attrs    map[string]string
	Selected bool
	Playing  bool
	Value    float64 // Progress fraction for KindProgress
	Children []*Node
}

// Attr returns the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Find returns the first node in depth-first order matching kind and key.
func (n *Node) Find(kind Kind, key string) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == kind && n.Key == key {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(kind, key); found != nil {
			return found
		}
	}
	return nil
}

// Count returns how many nodes in the tree satisfy pred.
func (n *Node) Count(pred func(*Node) bool) int {
	if n == nil {
		return 0
	}
	total := 0
	if pred(n) {
		total++
	}
	for _, c := range n.Children {
		total += c.Count(pred)
	}
	return total
}

// String renders the tree as indented text for debugging.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(string(n.Kind))
	if n.Key != "" {
		b.WriteString(" [" + n.Key + "]")
	}
	if n.Text != "" {
		b.WriteString(" " + n.Text)
	}
	if n.Selected {
		b.WriteString(" *selected*")
	}
	if n.Playing {
		b.WriteString(" *playing*")
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}

func text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}
