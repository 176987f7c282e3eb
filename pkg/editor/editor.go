// Package editor is the editable rich-text tree projected from the shared
// store: block, text and leaf nodes addressed by index paths, plus the
// current selection.
//
// Every mutation is path-addressed and moves the selection along with the
// content it points into. A point whose node is removed is left in place
// and reported by IsValidSelection; repairing it is up to the caller.
package editor

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

type Editor struct {
	children  []*Node
	selection *Selection
	version   uint64
}

func New() *Editor {
	return &Editor{}
}

// Children returns the top-level block nodes. Callers must not modify them.
func (e *Editor) Children() []*Node {
	return e.children
}

// Version increases with every mutation.
func (e *Editor) Version() uint64 {
	return e.version
}

// Reset replaces the whole content. The selection is kept as is.
func (e *Editor) Reset(nodes []*Node) {
	e.children = nodes
	e.version++
}

func (e *Editor) Node(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", constants.ErrInvalidPath)
	}
	list := e.children
	var n *Node
	for depth, i := range p {
		if i < 0 || i >= len(list) {
			return nil, fmt.Errorf("%w: %v fails at depth %d", constants.ErrInvalidPath, p, depth)
		}
		n = list[i]
		list = n.Children
	}
	return n, nil
}

func (e *Editor) HasPath(p Path) bool {
	_, err := e.Node(p)
	return err == nil
}

// siblings returns a pointer to the child list that holds p's last index.
func (e *Editor) siblings(p Path) (*[]*Node, *Node, error) {
	if len(p) == 0 {
		return nil, nil, fmt.Errorf("%w: empty path", constants.ErrInvalidPath)
	}
	if len(p) == 1 {
		return &e.children, nil, nil
	}
	parent, err := e.Node(p.Parent())
	if err != nil {
		return nil, nil, err
	}
	return &parent.Children, parent, nil
}

// InsertNode inserts n so that it ends up at p.
func (e *Editor) InsertNode(p Path, n *Node) error {
	list, parent, err := e.siblings(p)
	if err != nil {
		return err
	}
	if err := checkPlacement(parent, n); err != nil {
		return err
	}
	idx := p.Last()
	if idx < 0 || idx > len(*list) {
		return fmt.Errorf("%w: insert index %d of %d at %v", constants.ErrInvalidPath, idx, len(*list), p)
	}
	*list = append(*list, nil)
	copy((*list)[idx+1:], (*list)[idx:])
	(*list)[idx] = n

	e.transformPoints(func(pt *Point) {
		if p.Equal(pt.Path) || p.EndsBefore(pt.Path) || p.IsAncestor(pt.Path) {
			pt.Path[len(p)-1]++
		}
	})
	e.version++
	return nil
}

// RemoveNode removes the node at p with its subtree.
func (e *Editor) RemoveNode(p Path) (*Node, error) {
	list, _, err := e.siblings(p)
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(*list) {
		return nil, fmt.Errorf("%w: remove index %d of %d at %v", constants.ErrInvalidPath, idx, len(*list), p)
	}
	removed := (*list)[idx]
	*list = append((*list)[:idx], (*list)[idx+1:]...)

	e.transformPoints(func(pt *Point) {
		if p.EndsBefore(pt.Path) {
			pt.Path[len(p)-1]--
		}
	})
	e.version++
	return removed, nil
}

// ReplaceNode swaps the node at p for n, keeping points that address the
// same relative position inside it.
func (e *Editor) ReplaceNode(p Path, n *Node) error {
	list, parent, err := e.siblings(p)
	if err != nil {
		return err
	}
	if err := checkPlacement(parent, n); err != nil {
		return err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(*list) {
		return fmt.Errorf("%w: replace index %d at %v", constants.ErrInvalidPath, idx, p)
	}
	(*list)[idx] = n
	e.version++
	return nil
}

func checkPlacement(parent, n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", constants.ErrInvalidPath)
	}
	switch {
	case parent == nil && n.Kind != KindBlock:
		return fmt.Errorf("%w: %s node at top level", constants.ErrNotBlock, n.Kind)
	case parent != nil && parent.Kind == KindText && n.Kind != KindLeaf:
		return fmt.Errorf("%w: %s node inside text", constants.ErrNotText, n.Kind)
	case parent != nil && parent.Kind == KindLeaf:
		return fmt.Errorf("%w: leaves have no children", constants.ErrInvalidPath)
	}
	return nil
}

func (e *Editor) block(p Path) (*Node, error) {
	n, err := e.Node(p)
	if err != nil {
		return nil, err
	}
	if !n.IsBlock() {
		return nil, fmt.Errorf("%w: %s at %v", constants.ErrNotBlock, n.Kind, p)
	}
	return n, nil
}

func (e *Editor) SetType(p Path, t models.BlockType) error {
	n, err := e.block(p)
	if err != nil {
		return err
	}
	n.Type = t
	e.version++
	return nil
}

// SetData merges patch into the block's data. Nil values unset keys.
func (e *Editor) SetData(p Path, patch models.BlockData) error {
	n, err := e.block(p)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	n.Data = n.Data.Patch(patch)
	e.version++
	return nil
}

func (e *Editor) transformPoints(fn func(*Point)) {
	if e.selection == nil {
		return
	}
	fn(&e.selection.Anchor)
	fn(&e.selection.Focus)
}
