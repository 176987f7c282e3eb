package editor

import (
	"fmt"
	"strings"
)

// Path locates a node by child indices from the root. Paths are only valid
// until the next structural change.
type Path []int

func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Compare orders paths in document order. A path and its ancestors compare
// equal.
func (p Path) Compare(o Path) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		switch {
		case p[i] < o[i]:
			return -1
		case p[i] > o[i]:
			return 1
		}
	}
	return 0
}

// IsAncestor reports whether p is a strict prefix of o.
func (p Path) IsAncestor(o Path) bool {
	return len(p) < len(o) && p.Compare(o) == 0
}

// EndsBefore reports whether p is a previous sibling of o or of one of o's
// ancestors.
func (p Path) EndsBefore(o Path) bool {
	if len(p) == 0 || len(o) < len(p) {
		return false
	}
	i := len(p) - 1
	return p[:i].Equal(o[:i]) && p[i] < o[i]
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

func (p Path) Child(i int) Path {
	return append(p.Clone(), i)
}

// Relative returns the part of p below ancestor, or nil when ancestor is
// not an ancestor of p.
func (p Path) Relative(ancestor Path) Path {
	if !ancestor.IsAncestor(p) && !ancestor.Equal(p) {
		return nil
	}
	return p[len(ancestor):].Clone()
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Point is a cursor position: a text node path and a code point offset.
type Point struct {
	Path   Path
	Offset int
}

func (pt Point) Clone() Point {
	return Point{Path: pt.Path.Clone(), Offset: pt.Offset}
}

func (pt Point) Equal(o Point) bool {
	return pt.Offset == o.Offset && pt.Path.Equal(o.Path)
}

// ComparePoints orders points in document order.
func ComparePoints(a, b Point) int {
	if c := a.Path.Compare(b.Path); c != 0 {
		return c
	}
	switch {
	case len(a.Path) < len(b.Path):
		return -1
	case len(a.Path) > len(b.Path):
		return 1
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

type Selection struct {
	Anchor Point
	Focus  Point
}

func Collapsed(pt Point) *Selection {
	return &Selection{Anchor: pt.Clone(), Focus: pt.Clone()}
}

func (s Selection) IsCollapsed() bool {
	return s.Anchor.Equal(s.Focus)
}

func (s Selection) Clone() *Selection {
	return &Selection{Anchor: s.Anchor.Clone(), Focus: s.Focus.Clone()}
}

// Edges returns the selection's points in document order.
func (s Selection) Edges() (start, end Point) {
	if ComparePoints(s.Anchor, s.Focus) <= 0 {
		return s.Anchor.Clone(), s.Focus.Clone()
	}
	return s.Focus.Clone(), s.Anchor.Clone()
}
