package commands

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// AddBlock inserts an empty block next to ref, or as its last child. The
// cursor moves to the new block; view blocks are handed to the ViewOpener
// instead.
func (c *Commands) AddBlock(ref models.BlockID, typ models.BlockType, data models.BlockData, pos Position) (models.BlockID, error) {
	r, err := c.doc.Block(ref)
	if err != nil {
		return "", err
	}
	var (
		parent models.BlockID
		index  int
	)
	switch pos {
	case Child:
		parent, index = ref, len(c.doc.ChildrenOrder(ref))
	case Above, Below:
		if ref == c.doc.PageID() {
			return "", fmt.Errorf("%w: no siblings for the page", constants.ErrRootImmutable)
		}
		if index, err = c.doc.IndexOf(ref); err != nil {
			return "", err
		}
		if pos == Below {
			index++
		}
		parent = r.Parent
	default:
		return "", fmt.Errorf("unknown position %d", pos)
	}

	var id models.BlockID
	err = c.doc.Transact("add_block", func(txn *sharedtree.Txn) error {
		var err error
		id, err = c.newBlock(txn, typ, data, nil, parent, index)
		return err
	})
	if err != nil {
		return "", err
	}

	switch kind := models.KindOf(typ); kind {
	case models.KindView:
		if c.opener != nil {
			c.opener.OpenView(id, data.String(models.DataViewID))
		}
	case models.KindParagraph, models.KindHeading, models.KindList, models.KindTodo, models.KindToggle,
		models.KindQuote, models.KindCallout, models.KindCode:
		c.placeCursor(id, 0)
	case models.KindPage, models.KindVoid, models.KindAIChat, models.KindUnknown:
		c.log.Debug("added block takes no cursor", "block_id", string(id), "kind", kind.String())
	}
	return id, nil
}

// DeleteBlock removes the block and its subtree. A parent left without
// children gets an empty paragraph. The cursor moves to the end of the
// previous sibling, else to the start of the parent unless that is the
// page; if the target cannot hold a cursor the editor is deselected.
func (c *Commands) DeleteBlock(id models.BlockID) error {
	if id == c.doc.PageID() {
		return constants.ErrRootImmutable
	}
	b, err := c.doc.Block(id)
	if err != nil {
		return err
	}
	index, err := c.doc.IndexOf(id)
	if err != nil {
		return err
	}
	var target models.BlockID
	useEnd := false
	switch {
	case index > 0:
		target, useEnd = c.doc.ChildrenOrder(b.Parent)[index-1], true
	case b.Parent != c.doc.PageID():
		target = b.Parent
	}

	err = c.doc.Transact("delete_block", func(txn *sharedtree.Txn) error {
		return c.deleteWithPlaceholder(txn, id)
	})
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	p, _, ok := c.ed.FindBlock(target)
	var (
		pt    editor.Point
		found bool
	)
	if ok && useEnd {
		pt, found = c.ed.End(p)
	} else if ok {
		pt, found = c.ed.Start(p)
	}
	if !found {
		c.log.Debug("no cursor target after delete, deselecting", "block_id", string(id), "target_id", string(target))
		c.ed.Deselect()
		return nil
	}
	c.ed.SetSelection(editor.Collapsed(pt))
	return nil
}

// deleteWithPlaceholder deletes a block and refills its parent with an
// empty paragraph when it was the last child.
func (c *Commands) deleteWithPlaceholder(txn *sharedtree.Txn, id models.BlockID) error {
	parent, err := txn.Doc().Parent(id)
	if err != nil {
		return err
	}
	if err := txn.DeleteBlock(id); err != nil {
		return err
	}
	if len(txn.Doc().ChildrenOrder(parent)) > 0 {
		return nil
	}
	_, err = c.newBlock(txn, models.Paragraph, nil, nil, parent, 0)
	return err
}

// DuplicateBlock copies the block, its subtree and their texts under new
// ids and inserts the copy right after `after`, or after the block itself
// when after is empty.
func (c *Commands) DuplicateBlock(id, after models.BlockID) (models.BlockID, error) {
	if id == c.doc.PageID() {
		return "", constants.ErrRootImmutable
	}
	if after == "" {
		after = id
	}
	if _, err := c.doc.Block(id); err != nil {
		return "", err
	}
	anchor, err := c.doc.Block(after)
	if err != nil {
		return "", err
	}

	var root models.BlockID
	err = c.doc.Transact("duplicate_block", func(txn *sharedtree.Txn) error {
		index, err := txn.Doc().IndexOf(after)
		if err != nil {
			return err
		}
		root, err = c.copyTree(txn, id, anchor.Parent, index+1)
		return err
	})
	if err != nil {
		return "", err
	}
	return root, nil
}

type subtree struct {
	block    models.Block
	text     models.Text
	children []*subtree
}

func capture(doc *sharedtree.Doc, id models.BlockID) (*subtree, error) {
	b, err := doc.Block(id)
	if err != nil {
		return nil, err
	}
	st := &subtree{block: b}
	if b.HasText() {
		if st.text, err = doc.Text(b.ExternalID); err != nil {
			return nil, err
		}
	}
	for _, child := range doc.ChildrenOrder(id) {
		cs, err := capture(doc, child)
		if err != nil {
			return nil, err
		}
		st.children = append(st.children, cs)
	}
	return st, nil
}

// copyTree copies the source subtree as it was before the copy started,
// so that a copy placed inside its own source is not copied again.
func (c *Commands) copyTree(txn *sharedtree.Txn, src, parent models.BlockID, index int) (models.BlockID, error) {
	st, err := capture(txn.Doc(), src)
	if err != nil {
		return "", err
	}
	return c.paste(txn, st, parent, index)
}

func (c *Commands) paste(txn *sharedtree.Txn, st *subtree, parent models.BlockID, index int) (models.BlockID, error) {
	cp := models.Block{ID: c.newID(), Type: st.block.Type, Data: st.block.Data.Clone()}
	var err error
	if st.block.HasText() {
		err = txn.InsertTextBlock(cp, st.text, parent, index)
	} else {
		err = txn.InsertBlock(cp, parent, index)
	}
	if err != nil {
		return "", err
	}
	for i, child := range st.children {
		if _, err := c.paste(txn, child, cp.ID, i); err != nil {
			return "", err
		}
	}
	return cp.ID, nil
}

// ToggleCollapse flips data.collapsed.
func (c *Commands) ToggleCollapse(id models.BlockID) error {
	b, err := c.doc.Block(id)
	if err != nil {
		return err
	}
	return c.doc.Transact("toggle_collapse", func(txn *sharedtree.Txn) error {
		return txn.PatchBlockData(id, models.BlockData{models.DataCollapsed: !b.Data.Bool(models.DataCollapsed)})
	})
}

// ToggleCheckbox flips data.checked. With cascade every todo below the
// block gets the same state.
func (c *Commands) ToggleCheckbox(id models.BlockID, cascade bool) error {
	b, err := c.doc.Block(id)
	if err != nil {
		return err
	}
	checked := !b.Data.Bool(models.DataChecked)
	return c.doc.Transact("toggle_checkbox", func(txn *sharedtree.Txn) error {
		if err := txn.PatchBlockData(id, models.BlockData{models.DataChecked: checked}); err != nil {
			return err
		}
		if !cascade {
			return nil
		}
		for _, d := range txn.Doc().Descendants(id) {
			child, err := txn.Doc().Block(d)
			if err != nil {
				return err
			}
			if child.Kind() != models.KindTodo {
				continue
			}
			if err := txn.PatchBlockData(d, models.BlockData{models.DataChecked: checked}); err != nil {
				return err
			}
		}
		return nil
	})
}
