package translate

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// Reader is the read side of the shared store the translator depends on.
type Reader interface {
	PageID() models.BlockID
	Block(id models.BlockID) (models.Block, error)
	ChildrenOrder(id models.BlockID) []models.BlockID
	Text(id models.TextID) (models.Text, error)
}

// BlockToNode converts the block and its whole subtree. A block referencing
// a text that does not exist is an error rather than an empty node.
func BlockToNode(r Reader, id models.BlockID) (*editor.Node, error) {
	return blockToNode(r, id, 0)
}

func blockToNode(r Reader, id models.BlockID, depth int) (*editor.Node, error) {
	b, err := r.Block(id)
	if err != nil {
		return nil, err
	}
	n := editor.NewBlock(b.ID, b.Type, b.Data)
	if b.HasText() {
		txt, err := r.Text(b.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", id, err)
		}
		n.Children = append(n.Children, editor.NewText(b.ExternalID, txt))
	}
	for _, c := range r.ChildrenOrder(id) {
		if depth > maxDepth {
			return nil, fmt.Errorf("%w: nesting below %s exceeds %d levels", constants.ErrCorruptDocument, id, maxDepth)
		}
		child, err := blockToNode(r, c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

const maxDepth = 1 << 10

// TextToLeaves converts runs to leaves, never returning zero leaves.
func TextToLeaves(t models.Text) []*editor.Node {
	return editor.NewText("", t).Children
}
