package editor

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// Walk visits nodes in document order until fn returns false.
func (e *Editor) Walk(fn func(n *Node, p Path) bool) {
	var walk func(list []*Node, prefix Path) bool
	walk = func(list []*Node, prefix Path) bool {
		for i, n := range list {
			p := prefix.Child(i)
			if !fn(n, p) {
				return false
			}
			if !walk(n.Children, p) {
				return false
			}
		}
		return true
	}
	walk(e.children, nil)
}

// Find returns the first node in document order that matches.
func (e *Editor) Find(match func(n *Node, p Path) bool) (Path, *Node, bool) {
	var (
		found Path
		node  *Node
	)
	e.Walk(func(n *Node, p Path) bool {
		if match(n, p) {
			found, node = p, n
			return false
		}
		return true
	})
	return found, node, node != nil
}

func (e *Editor) FindBlock(id models.BlockID) (Path, *Node, bool) {
	return e.Find(func(n *Node, _ Path) bool {
		return n.IsBlock() && n.BlockID == id
	})
}

func (e *Editor) FindText(id models.TextID) (Path, *Node, bool) {
	return e.Find(func(n *Node, _ Path) bool {
		return n.IsText() && n.TextID == id
	})
}

// TextPaths lists every text node in document order.
func (e *Editor) TextPaths() []Path {
	var out []Path
	e.Walk(func(n *Node, p Path) bool {
		if n.IsText() {
			out = append(out, p)
		}
		return true
	})
	return out
}

// BlockText returns the plain text of a materialized block.
func (e *Editor) BlockText(id models.BlockID) (string, bool) {
	_, n, ok := e.FindBlock(id)
	if !ok {
		return "", false
	}
	return n.String(), true
}

// BlockAt returns the block owning the text node a point sits in.
func (e *Editor) BlockAt(pt Point) (Path, *Node, error) {
	if _, err := e.textNode(pt.Path); err != nil {
		return nil, nil, err
	}
	bp := pt.Path.Parent()
	b, err := e.block(bp)
	if err != nil {
		return nil, nil, err
	}
	return bp, b, nil
}

// Start returns the first cursor position inside the node at p.
func (e *Editor) Start(p Path) (Point, bool) {
	n, err := e.Node(p)
	if err != nil {
		return Point{}, false
	}
	if n.IsLeaf() {
		return Point{Path: p.Parent()}, true
	}
	var out Point
	ok := false
	walkFrom(n, p, func(c *Node, cp Path) bool {
		if c.IsText() {
			out, ok = Point{Path: cp}, true
			return false
		}
		return true
	})
	return out, ok
}

// End returns the last cursor position inside the node at p.
func (e *Editor) End(p Path) (Point, bool) {
	n, err := e.Node(p)
	if err != nil {
		return Point{}, false
	}
	if n.IsLeaf() {
		tp := p.Parent()
		t, _ := e.Node(tp)
		return Point{Path: tp, Offset: t.Len()}, true
	}
	var out Point
	ok := false
	walkFrom(n, p, func(c *Node, cp Path) bool {
		if c.IsText() {
			out, ok = Point{Path: cp, Offset: c.Len()}, true
		}
		return true
	})
	return out, ok
}

func walkFrom(n *Node, p Path, fn func(*Node, Path) bool) bool {
	if !fn(n, p) {
		return false
	}
	if n.IsText() {
		return true
	}
	for i, c := range n.Children {
		if !walkFrom(c, p.Child(i), fn) {
			return false
		}
	}
	return true
}

// IsValidPoint reports whether pt addresses a text node with an in-bounds
// offset.
func (e *Editor) IsValidPoint(pt Point) bool {
	n, err := e.Node(pt.Path)
	if err != nil || !n.IsText() {
		return false
	}
	return pt.Offset >= 0 && pt.Offset <= n.Len()
}

func (e *Editor) IsValidSelection(s Selection) bool {
	return e.IsValidPoint(s.Anchor) && e.IsValidPoint(s.Focus)
}

// Selection returns a copy of the current selection, or nil.
func (e *Editor) Selection() *Selection {
	if e.selection == nil {
		return nil
	}
	return e.selection.Clone()
}

// SetSelection stores s without validating it. Nil deselects.
func (e *Editor) SetSelection(s *Selection) {
	if s == nil {
		e.selection = nil
		return
	}
	e.selection = s.Clone()
}

// Select stores s if it is valid.
func (e *Editor) Select(s Selection) error {
	if !e.IsValidSelection(s) {
		return fmt.Errorf("%w: %v..%v", constants.ErrInvalidPath, s.Anchor, s.Focus)
	}
	e.selection = s.Clone()
	return nil
}

func (e *Editor) Deselect() {
	e.selection = nil
}
