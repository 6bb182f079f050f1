// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package chart

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/UNO-SOFT/xlstream/xmlw"
)

// Node is an element of a chart or drawing part.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*Node
}

// NewNode returns a detached element.
func NewNode(name string, attrs ...xml.Attr) *Node {
	return &Node{Name: name, Attrs: attrs}
}

// Add appends a new child element and returns it.
func (n *Node) Add(name string, attrs ...xml.Attr) *Node {
	c := NewNode(name, attrs...)
	n.Children = append(n.Children, c)
	return c
}

// Leaf appends a child element with text content and returns it.
func (n *Node) Leaf(name, text string, attrs ...xml.Attr) *Node {
	c := n.Add(name, attrs...)
	c.Text = text
	return c
}

// Val appends a child element with a single "val" attribute and returns it.
func (n *Node) Val(name, val string) *Node {
	return n.Add(name, xmlw.Attr("val", val))
}

// Append appends the children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the children with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var cs []*Node
	for _, c := range n.Children {
		if c.Name == name {
			cs = append(cs, c)
		}
	}
	return cs
}

// Find follows the path of child names, returning nil if any is missing.
func (n *Node) Find(path ...string) *Node {
	for _, p := range path {
		if n = n.Child(p); n == nil {
			return nil
		}
	}
	return n
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Encode writes n and its descendants to w.
func (n *Node) Encode(w *xmlw.Writer) {
	w.Start(n.Name, n.Attrs...)
	w.Text(n.Text)
	for _, c := range n.Children {
		c.Encode(w)
	}
	w.End()
}

func attr(name string, value any) xml.Attr {
	switch x := value.(type) {
	case string:
		return xmlw.Attr(name, x)
	case int:
		return xmlw.Attr(name, strconv.Itoa(x))
	case uint32:
		return xmlw.Attr(name, strconv.FormatUint(uint64(x), 10))
	case bool:
		if x {
			return xmlw.Attr(name, "1")
		}
		return xmlw.Attr(name, "0")
	default:
		return xmlw.Attr(name, fmt.Sprint(x))
	}
}

func boolVal(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
