package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

func (e *Editor) textNode(p Path) (*Node, error) {
	n, err := e.Node(p)
	if err != nil {
		return nil, err
	}
	if !n.IsText() {
		return nil, fmt.Errorf("%w: %s at %v", constants.ErrNotText, n.Kind, p)
	}
	return n, nil
}

// ApplyDelta applies a rich-text delta to the text node at p. Leaves are
// rebuilt from the resulting runs and points inside the node follow the
// edit.
func (e *Editor) ApplyDelta(p Path, d models.Delta) error {
	n, err := e.textNode(p)
	if err != nil {
		return err
	}
	next, err := n.Runs().Apply(d)
	if err != nil {
		return fmt.Errorf("text at %v: %w", p, err)
	}
	n.setRuns(next)

	pos := 0
	for _, op := range d {
		switch op.Kind() {
		case models.OpRetain:
			pos += op.Retain
		case models.OpInsert:
			at, k := pos, utf8.RuneCountInString(op.Insert)
			e.transformPoints(func(pt *Point) {
				if pt.Path.Equal(p) && pt.Offset >= at {
					pt.Offset += k
				}
			})
			pos += k
		case models.OpDelete:
			at, k := pos, op.Delete
			e.transformPoints(func(pt *Point) {
				if pt.Path.Equal(p) && pt.Offset > at {
					pt.Offset = max(at, pt.Offset-k)
				}
			})
		case models.OpInvalid:
		}
	}
	e.version++
	return nil
}

func (e *Editor) InsertText(p Path, offset int, s string, attrs models.Attributes) error {
	return e.ApplyDelta(p, models.InsertDelta(offset, s, attrs))
}

func (e *Editor) DeleteText(p Path, offset, n int) error {
	return e.ApplyDelta(p, models.DeleteDelta(offset, n))
}

func (e *Editor) FormatText(p Path, offset, n int, attrs models.Attributes) error {
	return e.ApplyDelta(p, models.FormatDelta(offset, n, attrs))
}

// ReplaceText overwrites the content of the text node at p. Points inside
// it are clamped to the new length.
func (e *Editor) ReplaceText(p Path, runs models.Text) error {
	n, err := e.textNode(p)
	if err != nil {
		return err
	}
	n.setRuns(runs)
	size := n.Len()
	e.transformPoints(func(pt *Point) {
		if pt.Path.Equal(p) && pt.Offset > size {
			pt.Offset = size
		}
	})
	e.version++
	return nil
}
