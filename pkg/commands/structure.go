package commands

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/selection"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// InsertBreak handles Enter. A range selection is deleted first, in the same
// transaction as the split.
func (c *Commands) InsertBreak() error {
	start, end, collapsed, err := c.edges()
	if err != nil {
		return err
	}
	var to cursor
	err = c.doc.Transact("insert_break", func(txn *sharedtree.Txn) error {
		at := start
		if !collapsed {
			var err error
			if at, err = c.deleteRange(txn, start, end); err != nil {
				return err
			}
			if at.block, err = txn.Doc().Block(at.block.ID); err != nil {
				return err
			}
		}
		var err error
		to, err = c.breakAt(txn, at)
		return err
	})
	if err != nil {
		return err
	}
	c.placeCursor(to.block, to.offset)
	return nil
}

// cursor is where a verb leaves the caret once its transaction committed.
type cursor struct {
	block  models.BlockID
	offset int
}

func (c *Commands) breakAt(txn *sharedtree.Txn, at caret) (cursor, error) {
	b := at.block
	text, err := txn.Doc().Text(b.ExternalID)
	if err != nil {
		return cursor{}, err
	}
	empty := text.Len() == 0

	switch kind := b.Kind(); kind {
	case models.KindCode:
		return cursor{b.ID, at.offset + 1}, txn.InsertText(b.ExternalID, at.offset, "\n", nil)
	case models.KindList, models.KindTodo, models.KindToggle:
		if !empty {
			return c.split(txn, at, b.Type, splitData(kind, b.Data))
		}
		if b.Parent != c.doc.PageID() {
			_, err := c.OutdentBlock(b.ID)
			return cursor{b.ID, 0}, err
		}
		id, err := c.TurnInto(b.ID, models.Paragraph, nil)
		return cursor{id, 0}, err
	case models.KindQuote, models.KindCallout:
		if empty {
			id, err := c.TurnInto(b.ID, models.Paragraph, nil)
			return cursor{id, 0}, err
		}
		return c.split(txn, at, b.Type, nil)
	case models.KindHeading:
		return c.split(txn, at, models.Paragraph, nil)
	case models.KindParagraph:
		return c.split(txn, at, models.Paragraph, nil)
	case models.KindPage, models.KindVoid, models.KindView, models.KindAIChat, models.KindUnknown:
		return cursor{}, fmt.Errorf("%w: cannot break a %s block", constants.ErrNotText, kind)
	}
	return cursor{}, nil
}

// splitData is the data a block created by Enter starts with.
func splitData(kind models.BlockKind, data models.BlockData) models.BlockData {
	switch kind {
	case models.KindTodo:
		return models.BlockData{models.DataChecked: false}
	case models.KindList:
		return nil
	case models.KindToggle:
		return models.BlockData{models.DataCollapsed: false}
	case models.KindPage, models.KindParagraph, models.KindHeading, models.KindQuote, models.KindCallout,
		models.KindCode, models.KindVoid, models.KindView, models.KindAIChat, models.KindUnknown:
		return data.Clone()
	}
	return nil
}

// split cuts the block's text at the cursor and moves the tail into a new
// block. At offset 0 an empty block is inserted above instead. If the block
// shows children the new block becomes its first child.
func (c *Commands) split(txn *sharedtree.Txn, at caret, typ models.BlockType, data models.BlockData) (cursor, error) {
	doc := txn.Doc()
	b := at.block
	text, err := doc.Text(b.ExternalID)
	if err != nil {
		return cursor{}, err
	}
	index, err := doc.IndexOf(b.ID)
	if err != nil {
		return cursor{}, err
	}
	if at.offset == 0 && text.Len() > 0 {
		_, err := c.newBlock(txn, typ, data, nil, b.Parent, index)
		return cursor{b.ID, 0}, err
	}

	tail := text.Slice(at.offset, text.Len())
	if err := txn.DeleteText(b.ExternalID, at.offset, tail.Len()); err != nil {
		return cursor{}, err
	}
	parent, pos := b.Parent, index+1
	if len(doc.ChildrenOrder(b.ID)) > 0 && !b.Data.Bool(models.DataCollapsed) {
		parent, pos = b.ID, 0
	}
	id, err := c.newBlock(txn, typ, data, tail, parent, pos)
	if err != nil {
		return cursor{}, err
	}
	c.log.Debug("split block", "block_id", string(b.ID), "new_block_id", string(id))
	return cursor{id, 0}, nil
}

// IndentBlock moves the block to the end of its previous sibling's
// children. The first child of a parent, or a block whose previous sibling
// cannot hold children, stays where it is.
func (c *Commands) IndentBlock(id models.BlockID) (models.BlockID, error) {
	b, err := c.doc.Block(id)
	if err != nil {
		return "", err
	}
	index, err := c.doc.IndexOf(id)
	if err != nil {
		return "", err
	}
	if index == 0 {
		c.log.Debug("indent of first child is a no-op", "block_id", string(id))
		return id, nil
	}
	prevID := c.doc.ChildrenOrder(b.Parent)[index-1]
	prev, err := c.doc.Block(prevID)
	if err != nil {
		return "", err
	}
	if !prev.Kind().CanHaveChildren() {
		c.log.Debug("previous sibling cannot hold children", "block_id", string(id), "sibling_id", string(prevID))
		return id, nil
	}
	err = c.doc.Transact("indent", func(txn *sharedtree.Txn) error {
		if prev.Data.Bool(models.DataCollapsed) {
			if err := txn.PatchBlockData(prevID, models.BlockData{models.DataCollapsed: false}); err != nil {
				return err
			}
		}
		return txn.MoveBlock(id, prevID, len(txn.Doc().ChildrenOrder(prevID)))
	})
	return id, err
}

// OutdentBlock moves the block after its parent. Blocks that can hold
// children take their following siblings along as their last children. A
// top-level block stays where it is.
func (c *Commands) OutdentBlock(id models.BlockID) (models.BlockID, error) {
	b, err := c.doc.Block(id)
	if err != nil {
		return "", err
	}
	if b.Parent == c.doc.PageID() || id == c.doc.PageID() {
		c.log.Debug("outdent of top-level block is a no-op", "block_id", string(id))
		return id, nil
	}
	parent, err := c.doc.Block(b.Parent)
	if err != nil {
		return "", err
	}
	err = c.doc.Transact("outdent", func(txn *sharedtree.Txn) error {
		doc := txn.Doc()
		index, err := doc.IndexOf(id)
		if err != nil {
			return err
		}
		parentIndex, err := doc.IndexOf(parent.ID)
		if err != nil {
			return err
		}
		following := doc.ChildrenOrder(parent.ID)[index+1:]
		if err := txn.MoveBlock(id, parent.Parent, parentIndex+1); err != nil {
			return err
		}
		if !b.Kind().CanHaveChildren() {
			return nil
		}
		base := len(doc.ChildrenOrder(id))
		for i, sib := range following {
			if err := txn.MoveBlock(sib, id, base+i); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// Indent indents every block the selection touches.
func (c *Commands) Indent() error {
	return c.shift("indent", c.IndentBlock)
}

// Outdent outdents every block the selection touches.
func (c *Commands) Outdent() error {
	return c.shift("outdent", c.OutdentBlock)
}

// anchorRef remembers a point by block id and its path inside the block.
type anchorRef struct {
	block    models.BlockID
	relative editor.Path
	offset   int
}

func (c *Commands) refOf(pt editor.Point) (anchorRef, error) {
	bp, n, err := c.ed.BlockAt(pt)
	if err != nil {
		return anchorRef{}, err
	}
	return anchorRef{block: n.BlockID, relative: pt.Path.Relative(bp), offset: pt.Offset}, nil
}

// point rebuilds the position inside the block's current location. The
// stale fallback is returned when the block is gone.
func (c *Commands) point(r anchorRef, stale editor.Point) editor.Point {
	bp, _, ok := c.ed.FindBlock(r.block)
	if !ok {
		return stale
	}
	return editor.Point{Path: append(bp.Clone(), r.relative...), Offset: r.offset}
}

// shift applies move to the start block, the blocks fully inside the
// selection, and the end block, skipping blocks whose ancestor is moved
// too. Each block moves in its own transaction; a failure stops the rest
// without undoing the blocks already moved.
func (c *Commands) shift(label string, move func(models.BlockID) (models.BlockID, error)) error {
	original := c.ed.Selection()
	if original == nil {
		return constants.ErrNoSelection
	}
	anchor, err := c.refOf(original.Anchor)
	if err != nil {
		return err
	}
	focus, err := c.refOf(original.Focus)
	if err != nil {
		return err
	}
	startPt, _ := original.Edges()
	first := anchor.block
	if !startPt.Equal(original.Anchor) {
		first = focus.block
	}

	affected := c.affected(anchor.block, focus.block)
	ids := make(map[models.BlockID]models.BlockID, len(affected))
	for _, id := range affected {
		newID, err := move(id)
		if err != nil {
			c.log.Error("block shift failed, stopping", "label", label, "block_id", string(id), "error", err)
			break
		}
		ids[id] = newID
	}
	if newID, ok := ids[anchor.block]; ok {
		anchor.block = newID
	}
	if newID, ok := ids[focus.block]; ok {
		focus.block = newID
	}
	if newID, ok := ids[first]; ok {
		first = newID
	}

	target := &editor.Selection{
		Anchor: c.point(anchor, original.Anchor),
		Focus:  c.point(focus, original.Focus),
	}
	c.restoreSelection(target, original, first)
	return nil
}

// affected lists the blocks between the two selection ends in document
// order, keeping only the topmost of nested ones.
func (c *Commands) affected(a, b models.BlockID) []models.BlockID {
	var out []models.BlockID
	inside := false
	for _, id := range c.doc.Preorder() {
		edge := id == a || id == b
		if edge && !inside {
			inside = true
			edge = a == b
		}
		if inside {
			covered := false
			for _, kept := range out {
				if c.doc.IsAncestor(kept, id) {
					covered = true
					break
				}
			}
			if !covered {
				out = append(out, id)
			}
		}
		if edge {
			break
		}
	}
	return out
}

// restoreSelection tries, in order: the recombined target, the nearest
// valid selection to it, the nearest valid selection to the original, the
// start of the first moved block, and any position in the document.
func (c *Commands) restoreSelection(target, original *editor.Selection, first models.BlockID) {
	if c.ed.IsValidSelection(*target) {
		c.ed.SetSelection(target)
		return
	}
	strategies := []func() (*editor.Selection, bool){
		func() (*editor.Selection, bool) {
			s := selection.FindNearestValid(c.ed, target)
			return s, s != nil
		},
		func() (*editor.Selection, bool) {
			s := selection.FindNearestValid(c.ed, original)
			return s, s != nil
		},
		func() (*editor.Selection, bool) { return selection.StartOfBlock(c.ed, first) },
		func() (*editor.Selection, bool) { return selection.Any(c.ed) },
	}
	for _, try := range strategies {
		if s, ok := try(); ok && c.ed.IsValidSelection(*s) {
			c.ed.SetSelection(s)
			return
		}
	}
	c.log.Warn("no valid selection after shifting blocks")
	c.ed.Deselect()
}

// TurnInto changes the block's type and merges data into its data. Nothing
// happens when both already match. A change between a text-bearing and a
// text-less kind replaces the block, so the returned id may differ.
func (c *Commands) TurnInto(id models.BlockID, typ models.BlockType, data models.BlockData) (models.BlockID, error) {
	b, err := c.doc.Block(id)
	if err != nil {
		return "", err
	}
	merged := b.Data.Patch(data)
	if b.Type == typ && merged.Equal(b.Data) {
		return id, nil
	}
	target := models.KindOf(typ)
	if target.TextBearing() == b.HasText() {
		err := c.doc.Transact("turn_into", func(txn *sharedtree.Txn) error {
			if b.Type != typ {
				if err := txn.SetBlockType(id, typ); err != nil {
					return err
				}
			}
			if patch := models.DiffData(b.Data, merged); len(patch) > 0 {
				return txn.PatchBlockData(id, patch)
			}
			return nil
		})
		return id, err
	}

	var newID models.BlockID
	err = c.doc.Transact("turn_into", func(txn *sharedtree.Txn) error {
		index, err := txn.Doc().IndexOf(id)
		if err != nil {
			return err
		}
		if newID, err = c.newBlock(txn, typ, merged, c.textOf(b), b.Parent, index); err != nil {
			return err
		}
		if target.CanHaveChildren() {
			if err := moveChildren(txn, id, newID, 0); err != nil {
				return err
			}
		} else if err := moveChildren(txn, id, b.Parent, index+2); err != nil {
			return err
		}
		return txn.DeleteBlock(id)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}
