package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

type Kind uint8

const (
	KindBlock Kind = iota + 1
	KindText
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindText:
		return "text"
	case KindLeaf:
		return "leaf"
	default:
		return "invalid"
	}
}

// Node is one element of the editable tree.
//
// A block node mirrors a store block. When the block carries text, its first
// child is a text node and the remaining children are child blocks. A text
// node mirrors a text entity and always holds at least one leaf; leaves are
// formatted character runs.
type Node struct {
	Kind Kind

	// block
	Type    models.BlockType
	BlockID models.BlockID
	Data    models.BlockData

	// text
	TextID models.TextID

	// leaf
	Text  string
	Attrs models.Attributes

	Children []*Node
}

func NewBlock(id models.BlockID, typ models.BlockType, data models.BlockData, children ...*Node) *Node {
	return &Node{Kind: KindBlock, BlockID: id, Type: typ, Data: data.Clone(), Children: children}
}

// NewText builds a text node from runs. An empty run list yields one empty
// leaf.
func NewText(id models.TextID, runs models.Text) *Node {
	n := &Node{Kind: KindText, TextID: id}
	n.setRuns(runs)
	return n
}

func NewLeaf(text string, attrs models.Attributes) *Node {
	return &Node{Kind: KindLeaf, Text: text, Attrs: attrs.Clone()}
}

func (n *Node) IsBlock() bool { return n != nil && n.Kind == KindBlock }
func (n *Node) IsText() bool  { return n != nil && n.Kind == KindText }
func (n *Node) IsLeaf() bool  { return n != nil && n.Kind == KindLeaf }

// TextChild returns the text node of a text-bearing block, or nil.
func (n *Node) TextChild() *Node {
	if n.IsBlock() && len(n.Children) > 0 && n.Children[0].IsText() {
		return n.Children[0]
	}
	return nil
}

// BlockOffset is the index of the first child block within Children.
func (n *Node) BlockOffset() int {
	if n.TextChild() != nil {
		return 1
	}
	return 0
}

// ChildBlocks returns the child block nodes of a block.
func (n *Node) ChildBlocks() []*Node {
	return n.Children[n.BlockOffset():]
}

// Runs returns the formatted content of a text node.
func (n *Node) Runs() models.Text {
	out := models.Text{}
	for _, l := range n.Children {
		out = append(out, models.Run{Insert: l.Text, Attributes: l.Attrs.Clone()})
	}
	return out.Normalize()
}

// String returns the plain text of a text node, of a leaf, or of a block's
// own text node.
func (n *Node) String() string {
	switch n.Kind {
	case KindLeaf:
		return n.Text
	case KindText:
		var sb strings.Builder
		for _, l := range n.Children {
			sb.WriteString(l.Text)
		}
		return sb.String()
	case KindBlock:
		if t := n.TextChild(); t != nil {
			return t.String()
		}
	}
	return ""
}

// Len is the length of a text node in code points.
func (n *Node) Len() int {
	return utf8.RuneCountInString(n.String())
}

func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Data = n.Data.Clone()
	out.Attrs = n.Attrs.Clone()
	out.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		out.Children[i] = c.Clone()
	}
	return &out
}

func (n *Node) setRuns(runs models.Text) {
	runs = runs.Normalize()
	n.Children = n.Children[:0]
	for _, r := range runs {
		n.Children = append(n.Children, NewLeaf(r.Insert, r.Attributes))
	}
	if len(n.Children) == 0 {
		n.Children = append(n.Children, NewLeaf("", nil))
	}
}
