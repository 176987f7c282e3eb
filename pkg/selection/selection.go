// Package selection finds valid cursor positions in an editable tree.
package selection

import (
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// FindNearestValid maps a possibly stale selection onto the current tree.
// It returns nil only when the tree has no text at all. A nil candidate
// yields the start of the document.
func FindNearestValid(ed *editor.Editor, cand *editor.Selection) *editor.Selection {
	texts := ed.TextPaths()
	if len(texts) == 0 {
		return nil
	}
	if cand == nil {
		return editor.Collapsed(editor.Point{Path: texts[0].Clone()})
	}
	if ed.IsValidSelection(*cand) {
		return cand.Clone()
	}
	return &editor.Selection{
		Anchor: nearestPoint(ed, texts, cand.Anchor),
		Focus:  nearestPoint(ed, texts, cand.Focus),
	}
}

func nearestPoint(ed *editor.Editor, texts []editor.Path, pt editor.Point) editor.Point {
	if n, err := ed.Node(pt.Path); err == nil {
		switch {
		case n.IsText():
			return editor.Point{Path: pt.Path.Clone(), Offset: clamp(pt.Offset, 0, n.Len())}
		case n.IsLeaf():
			// legacy leaf-addressed points
			tp := pt.Path.Parent()
			t, _ := ed.Node(tp)
			return editor.Point{Path: tp, Offset: clamp(pt.Offset, 0, t.Len())}
		default:
			if start, ok := ed.Start(pt.Path); ok {
				return start
			}
		}
	}

	var before *editor.Path
	for i := range texts {
		if texts[i].IsAncestor(pt.Path) {
			t, _ := ed.Node(texts[i])
			return editor.Point{Path: texts[i].Clone(), Offset: clamp(pt.Offset, 0, t.Len())}
		}
		if texts[i].Compare(pt.Path) < 0 {
			before = &texts[i]
		}
	}
	if before != nil {
		end, _ := ed.End(*before)
		return end
	}
	for _, tp := range texts {
		if tp.Compare(pt.Path) > 0 {
			return editor.Point{Path: tp.Clone()}
		}
	}
	// pt sits on an ancestor of every text, which Start would have caught.
	return editor.Point{Path: texts[0].Clone()}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StartOfBlock is the first cursor position of a materialized block.
func StartOfBlock(ed *editor.Editor, id models.BlockID) (*editor.Selection, bool) {
	p, _, ok := ed.FindBlock(id)
	if !ok {
		return nil, false
	}
	pt, ok := ed.Start(p)
	if !ok {
		return nil, false
	}
	return editor.Collapsed(pt), true
}

// EndOfBlock is the cursor position after the last character of the block's
// own text, not counting nested blocks.
func EndOfBlock(ed *editor.Editor, id models.BlockID) (*editor.Selection, bool) {
	p, n, ok := ed.FindBlock(id)
	if !ok || n.TextChild() == nil {
		return nil, false
	}
	return editor.Collapsed(editor.Point{Path: p.Child(0), Offset: n.TextChild().Len()}), true
}

// At places a collapsed cursor at a rune offset of the block's text,
// clamped to the text length.
func At(ed *editor.Editor, id models.BlockID, offset int) (*editor.Selection, bool) {
	p, n, ok := ed.FindBlock(id)
	if !ok || n.TextChild() == nil {
		return nil, false
	}
	return editor.Collapsed(editor.Point{Path: p.Child(0), Offset: clamp(offset, 0, n.TextChild().Len())}), true
}

// Any returns the first valid cursor position of the document.
func Any(ed *editor.Editor) (*editor.Selection, bool) {
	s := FindNearestValid(ed, nil)
	return s, s != nil
}
