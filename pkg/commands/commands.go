// Package commands implements the structural editing verbs. Every verb
// mutates the shared tree inside one named transaction, relies on the
// translator to update the editable tree, and then places the cursor.
package commands

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/selection"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// ViewOpener is told about container blocks (grid, board, calendar) added
// through AddBlock. Those open in their own surface instead of receiving
// the cursor.
type ViewOpener interface {
	OpenView(id models.BlockID, viewID string)
}

// Position places a new block relative to a reference block.
type Position uint8

const (
	Below Position = iota
	Above
	Child
)

type Commands struct {
	doc    *sharedtree.Doc
	ed     *editor.Editor
	log    logger.Logger
	newID  func() models.BlockID
	opener ViewOpener
}

type Option func(*Commands)

func WithLogger(l logger.Logger) Option {
	return func(c *Commands) {
		c.log = logger.OrNop(l)
	}
}

// WithIDGenerator replaces the random block id source.
func WithIDGenerator(fn func() models.BlockID) Option {
	return func(c *Commands) {
		c.newID = fn
	}
}

func WithViewOpener(o ViewOpener) Option {
	return func(c *Commands) {
		c.opener = o
	}
}

// New expects ed to be kept in sync with doc by an attached translator.
func New(doc *sharedtree.Doc, ed *editor.Editor, opts ...Option) *Commands {
	c := &Commands{doc: doc, ed: ed, log: logger.Nop(), newID: models.NewBlockID}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// caret is a cursor position expressed by stable ids.
type caret struct {
	block  models.Block
	offset int
}

func (c caret) text() models.TextID {
	return c.block.ExternalID
}

func (c *Commands) caretAt(pt editor.Point) (caret, error) {
	_, n, err := c.ed.BlockAt(pt)
	if err != nil {
		return caret{}, err
	}
	b, err := c.doc.Block(n.BlockID)
	if err != nil {
		return caret{}, err
	}
	if !b.HasText() {
		return caret{}, fmt.Errorf("%w: block %s", constants.ErrNotText, b.ID)
	}
	return caret{block: b, offset: pt.Offset}, nil
}

// edges resolves the current selection into ordered carets.
func (c *Commands) edges() (start, end caret, collapsed bool, err error) {
	sel := c.ed.Selection()
	if sel == nil {
		return caret{}, caret{}, false, constants.ErrNoSelection
	}
	s, e := sel.Edges()
	if start, err = c.caretAt(s); err != nil {
		return caret{}, caret{}, false, err
	}
	if end, err = c.caretAt(e); err != nil {
		return caret{}, caret{}, false, err
	}
	return start, end, sel.IsCollapsed(), nil
}

// placeCursor puts a collapsed cursor into a block's own text. When the
// block cannot take the cursor the current selection is repaired instead.
func (c *Commands) placeCursor(id models.BlockID, offset int) {
	if s, ok := selection.At(c.ed, id, offset); ok {
		c.ed.SetSelection(s)
		return
	}
	c.log.Debug("cannot place cursor in block", "block_id", string(id))
	c.ed.SetSelection(selection.FindNearestValid(c.ed, c.ed.Selection()))
}

func (c *Commands) textOf(b models.Block) models.Text {
	if !b.HasText() {
		return nil
	}
	t, err := c.doc.Text(b.ExternalID)
	if err != nil {
		c.log.Warn("block text missing", "block_id", string(b.ID), "text_id", string(b.ExternalID), "error", err)
		return nil
	}
	return t
}

// newBlock inserts a fresh block, with an empty or given text when its kind
// carries one.
func (c *Commands) newBlock(txn *sharedtree.Txn, typ models.BlockType, data models.BlockData, text models.Text, parent models.BlockID, index int) (models.BlockID, error) {
	b := models.Block{ID: c.newID(), Type: typ, Data: data.Clone()}
	if !models.KindOf(typ).TextBearing() {
		return b.ID, txn.InsertBlock(b, parent, index)
	}
	return b.ID, txn.InsertTextBlock(b, text, parent, index)
}

// moveChildren moves every child of from under parent, starting at index.
func moveChildren(txn *sharedtree.Txn, from, parent models.BlockID, index int) error {
	for i, child := range txn.Doc().ChildrenOrder(from) {
		if err := txn.MoveBlock(child, parent, index+i); err != nil {
			return err
		}
	}
	return nil
}

// appendText adds t at the end of the block's text.
func appendText(txn *sharedtree.Txn, id models.TextID, t models.Text) error {
	if t.Len() == 0 {
		return nil
	}
	cur, err := txn.Doc().Text(id)
	if err != nil {
		return err
	}
	return txn.ApplyDelta(id, models.TextDelta(cur.Len(), t))
}

// previousInOrder returns the block preceding id in document order, or ""
// for the first block.
func (c *Commands) previousInOrder(id models.BlockID) models.BlockID {
	var prev models.BlockID
	for _, b := range c.doc.Preorder() {
		if b == id {
			return prev
		}
		prev = b
	}
	return ""
}

func (c *Commands) nextInOrder(id models.BlockID) models.BlockID {
	order := c.doc.Preorder()
	for i, b := range order {
		if b == id && i+1 < len(order) {
			return order[i+1]
		}
	}
	return ""
}
