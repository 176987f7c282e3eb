package models

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

type OpKind uint8

const (
	OpInvalid OpKind = iota
	OpInsert
	OpDelete
	OpRetain
)

// Op is one rich-text delta operation. Exactly one of Insert, Delete and
// Retain is set.
type Op struct {
	Insert     string     `cbor:"insert,omitempty" json:"insert,omitempty"`
	Delete     int        `cbor:"delete,omitempty" json:"delete,omitempty"`
	Retain     int        `cbor:"retain,omitempty" json:"retain,omitempty"`
	Attributes Attributes `cbor:"attributes,omitempty" json:"attributes,omitempty"`
}

func (o Op) Kind() OpKind {
	switch {
	case o.Insert != "" && o.Delete == 0 && o.Retain == 0:
		return OpInsert
	case o.Insert == "" && o.Delete > 0 && o.Retain == 0:
		return OpDelete
	case o.Insert == "" && o.Delete == 0 && o.Retain > 0:
		return OpRetain
	default:
		return OpInvalid
	}
}

// Delta is an ordered list of operations applied from offset 0. Content
// past the last operation is kept.
type Delta []Op

func retain(n int) Delta {
	if n <= 0 {
		return nil
	}
	return Delta{{Retain: n}}
}

func InsertDelta(offset int, s string, attrs Attributes) Delta {
	if s == "" {
		return retain(offset)
	}
	return append(retain(offset), Op{Insert: s, Attributes: attrs.Compact()})
}

func DeleteDelta(offset, n int) Delta {
	if n <= 0 {
		return retain(offset)
	}
	return append(retain(offset), Op{Delete: n})
}

func FormatDelta(offset, n int, attrs Attributes) Delta {
	if n <= 0 {
		return retain(offset)
	}
	return append(retain(offset), Op{Retain: n, Attributes: attrs})
}

// TextDelta inserts every run of t at offset.
func TextDelta(offset int, t Text) Delta {
	d := retain(offset)
	for _, r := range t.Normalize() {
		d = append(d, Op{Insert: r.Insert, Attributes: r.Attributes.Clone()})
	}
	return d
}

// Apply returns a new Text with d applied. The receiver is not modified.
func (t Text) Apply(d Delta) (Text, error) {
	it := newRunIter(t)
	out := Text{}
	for i, op := range d {
		switch op.Kind() {
		case OpInsert:
			out = append(out, Run{Insert: op.Insert, Attributes: op.Attributes.Compact()})
		case OpRetain:
			runs, ok := it.take(op.Retain)
			if !ok {
				return nil, fmt.Errorf("%w: op %d retains %d past the end", constants.ErrInvalidDelta, i, op.Retain)
			}
			for _, r := range runs {
				if op.Attributes != nil {
					r.Attributes = r.Attributes.Merge(op.Attributes)
				}
				out = append(out, r)
			}
		case OpDelete:
			if _, ok := it.take(op.Delete); !ok {
				return nil, fmt.Errorf("%w: op %d deletes %d past the end", constants.ErrInvalidDelta, i, op.Delete)
			}
		case OpInvalid:
			return nil, fmt.Errorf("%w: op %d is malformed", constants.ErrInvalidDelta, i)
		}
	}
	out = append(out, it.rest()...)
	return out.Normalize(), nil
}
