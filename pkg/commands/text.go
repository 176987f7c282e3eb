package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// InsertText types s at the cursor, replacing a range selection. The text
// inherits the formatting before the cursor, but never an inline object.
func (c *Commands) InsertText(s string) error {
	start, end, collapsed, err := c.edges()
	if err != nil {
		return err
	}
	if !start.block.Kind().Editable() {
		return fmt.Errorf("%w: %s block", constants.ErrNotText, start.block.Type)
	}
	var at caret
	err = c.doc.Transact("insert_text", func(txn *sharedtree.Txn) error {
		at = start
		if !collapsed {
			if at, err = c.deleteRange(txn, start, end); err != nil {
				return err
			}
		}
		cur, err := txn.Doc().Text(at.text())
		if err != nil {
			return err
		}
		attrs := cur.AttributesAt(at.offset)
		if attrs.Inline() {
			attrs = nil
		}
		return txn.InsertText(at.text(), at.offset, s, attrs)
	})
	if err != nil {
		return err
	}
	c.placeCursor(at.block.ID, at.offset+utf8.RuneCountInString(s))
	return nil
}

// PastePlainText inserts s at the cursor. Each further line becomes a
// paragraph after the current block; code blocks keep the newlines.
func (c *Commands) PastePlainText(s string) error {
	start, end, collapsed, err := c.edges()
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrPasteRejected, err)
	}
	kind := start.block.Kind()
	if !kind.Editable() {
		return fmt.Errorf("%w: %s block", constants.ErrPasteRejected, start.block.Type)
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if kind == models.KindCode || len(lines) == 1 {
		if err := c.InsertText(s); err != nil {
			return fmt.Errorf("%w: %w", constants.ErrPasteRejected, err)
		}
		return nil
	}

	var (
		last   models.BlockID
		cursor int
	)
	err = c.doc.Transact("paste", func(txn *sharedtree.Txn) error {
		at := start
		if !collapsed {
			if at, err = c.deleteRange(txn, start, end); err != nil {
				return err
			}
		}
		cur, err := txn.Doc().Text(at.text())
		if err != nil {
			return err
		}
		tail := cur.Slice(at.offset, cur.Len())
		if err := txn.DeleteText(at.text(), at.offset, tail.Len()); err != nil {
			return err
		}
		if err := txn.InsertText(at.text(), at.offset, lines[0], nil); err != nil {
			return err
		}

		index, err := txn.Doc().IndexOf(at.block.ID)
		if err != nil {
			return err
		}
		parent := at.block.Parent
		for i, line := range lines[1:] {
			text := models.PlainText(line)
			if i == len(lines)-2 {
				text = text.Concat(tail)
			}
			id, err := c.newBlock(txn, models.Paragraph, nil, text, parent, index+1+i)
			if err != nil {
				return err
			}
			last, cursor = id, utf8.RuneCountInString(line)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", constants.ErrPasteRejected, err)
	}
	c.placeCursor(last, cursor)
	return nil
}

// DeleteFragment removes the selected range. A collapsed selection is left
// alone.
func (c *Commands) DeleteFragment() error {
	start, end, collapsed, err := c.edges()
	if err != nil {
		return err
	}
	if collapsed {
		return nil
	}
	var at caret
	err = c.doc.Transact("delete_fragment", func(txn *sharedtree.Txn) error {
		at, err = c.deleteRange(txn, start, end)
		return err
	})
	if err != nil {
		return err
	}
	c.placeCursor(at.block.ID, at.offset)
	return nil
}

// deleteRange removes everything between two carets. The end block's
// remaining text joins the start block, its children take its place, and
// blocks fully inside the range are dropped. Containers of the end block
// only lose their text.
func (c *Commands) deleteRange(txn *sharedtree.Txn, start, end caret) (caret, error) {
	doc := txn.Doc()
	if start.block.ID == end.block.ID {
		return start, txn.DeleteText(start.text(), start.offset, end.offset-start.offset)
	}

	var middle []models.BlockID
	inside := false
	for _, id := range doc.Preorder() {
		switch id {
		case start.block.ID:
			inside = true
			continue
		case end.block.ID:
			inside = false
		}
		if inside {
			middle = append(middle, id)
		}
	}
	for _, id := range middle {
		if !doc.Contains(id) {
			continue
		}
		if !doc.IsAncestor(id, end.block.ID) {
			if err := txn.DeleteBlock(id); err != nil {
				return caret{}, err
			}
			continue
		}
		b, err := doc.Block(id)
		if err != nil {
			return caret{}, err
		}
		if b.HasText() {
			t, err := doc.Text(b.ExternalID)
			if err != nil {
				return caret{}, err
			}
			if err := txn.DeleteText(b.ExternalID, 0, t.Len()); err != nil {
				return caret{}, err
			}
		}
	}

	head, err := doc.Text(start.text())
	if err != nil {
		return caret{}, err
	}
	if err := txn.DeleteText(start.text(), start.offset, head.Len()-start.offset); err != nil {
		return caret{}, err
	}
	last, err := doc.Text(end.text())
	if err != nil {
		return caret{}, err
	}
	if err := c.dissolve(txn, end.block.ID); err != nil {
		return caret{}, err
	}
	if err := appendText(txn, start.text(), last.Slice(end.offset, last.Len())); err != nil {
		return caret{}, err
	}
	return start, nil
}

// dissolve deletes a block while keeping its children where it was.
func (c *Commands) dissolve(txn *sharedtree.Txn, id models.BlockID) error {
	b, err := txn.Doc().Block(id)
	if err != nil {
		return err
	}
	index, err := txn.Doc().IndexOf(id)
	if err != nil {
		return err
	}
	if err := moveChildren(txn, id, b.Parent, index+1); err != nil {
		return err
	}
	return txn.DeleteBlock(id)
}

// DeleteBackward handles Backspace. Inside a text it removes one character.
// At the start of a block the first matching rule wins:
//
//  1. a list item inside a quote turns into a paragraph
//  2. a nested block is lifted one level
//  3. any other non-paragraph block turns into a paragraph
//  4. a paragraph merges into the previous block
func (c *Commands) DeleteBackward() error {
	start, _, collapsed, err := c.edges()
	if err != nil {
		return err
	}
	if !collapsed {
		return c.DeleteFragment()
	}
	b := start.block
	if start.offset > 0 {
		err := c.doc.Transact("delete_backward", func(txn *sharedtree.Txn) error {
			return txn.DeleteText(b.ExternalID, start.offset-1, 1)
		})
		if err != nil {
			return err
		}
		c.placeCursor(b.ID, start.offset-1)
		return nil
	}

	kind := b.Kind()
	nested := b.Parent != c.doc.PageID()
	switch {
	case kind != models.KindParagraph && kind.ListLike() && c.parentKind(b) == models.KindQuote:
		return c.toParagraph(b)
	case nested && kind.Liftable():
		if _, err := c.OutdentBlock(b.ID); err != nil {
			return err
		}
		c.placeCursor(b.ID, 0)
		return nil
	case kind != models.KindParagraph:
		return c.toParagraph(b)
	default:
		return c.mergeBackward(b)
	}
}

func (c *Commands) parentKind(b models.Block) models.BlockKind {
	p, err := c.doc.Block(b.Parent)
	if err != nil {
		return models.KindUnknown
	}
	return p.Kind()
}

func (c *Commands) toParagraph(b models.Block) error {
	id, err := c.TurnInto(b.ID, models.Paragraph, nil)
	if err != nil {
		return err
	}
	c.placeCursor(id, 0)
	return nil
}

// mergeBackward joins b into the block before it in document order. A void
// block in the way is deleted instead.
func (c *Commands) mergeBackward(b models.Block) error {
	prevID := c.previousInOrder(b.ID)
	if prevID == "" {
		return nil
	}
	prev, err := c.doc.Block(prevID)
	if err != nil {
		return err
	}
	if !prev.HasText() {
		return c.doc.Transact("delete_backward", func(txn *sharedtree.Txn) error {
			return c.deleteWithPlaceholder(txn, prevID)
		})
	}

	join := c.textOf(prev).Len()
	err = c.doc.Transact("merge_blocks", func(txn *sharedtree.Txn) error {
		text, err := txn.Doc().Text(b.ExternalID)
		if err != nil {
			return err
		}
		if err := c.dissolve(txn, b.ID); err != nil {
			return err
		}
		return appendText(txn, prev.ExternalID, text)
	})
	if err != nil {
		return err
	}
	c.placeCursor(prevID, join)
	return nil
}

// DeleteForward handles Delete. Inside a text it removes one character; at
// the end of a block the next block in document order joins it.
func (c *Commands) DeleteForward() error {
	start, _, collapsed, err := c.edges()
	if err != nil {
		return err
	}
	if !collapsed {
		return c.DeleteFragment()
	}
	b := start.block
	if start.offset < c.textOf(b).Len() {
		err := c.doc.Transact("delete_forward", func(txn *sharedtree.Txn) error {
			return txn.DeleteText(b.ExternalID, start.offset, 1)
		})
		if err != nil {
			return err
		}
		c.placeCursor(b.ID, start.offset)
		return nil
	}

	nextID := c.nextInOrder(b.ID)
	if nextID == "" {
		return nil
	}
	next, err := c.doc.Block(nextID)
	if err != nil {
		return err
	}
	err = c.doc.Transact("delete_forward", func(txn *sharedtree.Txn) error {
		if !next.HasText() {
			return c.deleteWithPlaceholder(txn, nextID)
		}
		text, err := txn.Doc().Text(next.ExternalID)
		if err != nil {
			return err
		}
		if err := c.dissolve(txn, nextID); err != nil {
			return err
		}
		return appendText(txn, b.ExternalID, text)
	})
	if err != nil {
		return err
	}
	c.placeCursor(b.ID, start.offset)
	return nil
}
