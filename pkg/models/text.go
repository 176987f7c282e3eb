package models

import (
	"reflect"
	"strings"
	"unicode/utf8"
)

// Inline object and formatting attribute keys.
const (
	AttrBold      = "bold"
	AttrItalic    = "italic"
	AttrUnderline = "underline"
	AttrCode      = "code"
	AttrHref      = "href"
	AttrMention   = "mention"
	AttrFormula   = "formula"
)

// Attributes formats a run. A nil value in a format operation removes the key.
type Attributes map[string]any

func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal treats nil and empty as equal.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(a), map[string]any(b))
}

// Merge applies patch on a copy of a. Nil values remove keys.
func (a Attributes) Merge(patch Attributes) Attributes {
	out := a.Clone()
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		if out == nil {
			out = Attributes{}
		}
		out[k] = cloneValue(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Compact drops nil values, as an insert cannot remove anything.
func (a Attributes) Compact() Attributes {
	return Attributes(nil).Merge(a)
}

// Inline reports whether the run is an inline object (mention or formula)
// rather than formatted characters.
func (a Attributes) Inline() bool {
	_, mention := a[AttrMention]
	_, formula := a[AttrFormula]
	return mention || formula
}

// Run is a span of characters sharing the same attributes.
type Run struct {
	Insert     string     `cbor:"insert" json:"insert"`
	Attributes Attributes `cbor:"attributes,omitempty" json:"attributes,omitempty"`
}

func (r Run) Len() int {
	return utf8.RuneCountInString(r.Insert)
}

// Text is the ordered run sequence of a text entity.
type Text []Run

// PlainText returns a single unformatted run, or an empty Text for "".
func PlainText(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{{Insert: s}}
}

func (t Text) String() string {
	var sb strings.Builder
	for _, r := range t {
		sb.WriteString(r.Insert)
	}
	return sb.String()
}

func (t Text) Len() int {
	n := 0
	for _, r := range t {
		n += r.Len()
	}
	return n
}

func (t Text) Clone() Text {
	if t == nil {
		return nil
	}
	out := make(Text, len(t))
	for i, r := range t {
		out[i] = Run{Insert: r.Insert, Attributes: r.Attributes.Clone()}
	}
	return out
}

// Normalize drops empty runs and merges neighbours with equal attributes.
func (t Text) Normalize() Text {
	out := make(Text, 0, len(t))
	for _, r := range t {
		if r.Insert == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Attributes.Equal(r.Attributes) {
			out[n-1].Insert += r.Insert
			continue
		}
		out = append(out, Run{Insert: r.Insert, Attributes: r.Attributes.Clone()})
	}
	return out
}

// Equal compares normalized content and formatting.
func (t Text) Equal(o Text) bool {
	a, b := t.Normalize(), o.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Insert != b[i].Insert || !a[i].Attributes.Equal(b[i].Attributes) {
			return false
		}
	}
	return true
}

// Slice returns the runs covering [from, to). Bounds are clamped.
func (t Text) Slice(from, to int) Text {
	if from < 0 {
		from = 0
	}
	if to > t.Len() {
		to = t.Len()
	}
	out := Text{}
	if from >= to {
		return out
	}
	it := newRunIter(t)
	it.take(from)
	runs, _ := it.take(to - from)
	return append(out, runs...)
}

// Concat appends o to t.
func (t Text) Concat(o Text) Text {
	out := t.Clone()
	return append(out, o.Clone()...).Normalize()
}

// AttributesAt returns the attributes typing at offset would inherit: those
// of the character before the offset, or of the first character at 0.
func (t Text) AttributesAt(offset int) Attributes {
	if len(t) == 0 {
		return nil
	}
	pos := 0
	for _, r := range t {
		end := pos + r.Len()
		if offset <= end && offset > pos || (offset == 0 && pos == 0) {
			return r.Attributes.Clone()
		}
		pos = end
	}
	return t[len(t)-1].Attributes.Clone()
}

func (t Text) Insert(offset int, s string, attrs Attributes) (Text, error) {
	return t.Apply(InsertDelta(offset, s, attrs))
}

func (t Text) Delete(offset, n int) (Text, error) {
	return t.Apply(DeleteDelta(offset, n))
}

func (t Text) Format(offset, n int, attrs Attributes) (Text, error) {
	return t.Apply(FormatDelta(offset, n, attrs))
}

// runIter walks a Text in code points.
type runIter struct {
	runs []Run
	idx  int
	off  int // code points consumed from runs[idx]
}

func newRunIter(t Text) *runIter {
	return &runIter{runs: t}
}

// take consumes n code points, splitting runs at the boundaries. It reports
// false when fewer than n remain.
func (it *runIter) take(n int) ([]Run, bool) {
	var out []Run
	for n > 0 {
		if it.idx >= len(it.runs) {
			return out, false
		}
		cur := []rune(it.runs[it.idx].Insert)
		avail := len(cur) - it.off
		if avail <= 0 {
			it.idx++
			it.off = 0
			continue
		}
		k := min(n, avail)
		out = append(out, Run{
			Insert:     string(cur[it.off : it.off+k]),
			Attributes: it.runs[it.idx].Attributes.Clone(),
		})
		it.off += k
		n -= k
		if it.off == len(cur) {
			it.idx++
			it.off = 0
		}
	}
	return out, true
}

func (it *runIter) rest() []Run {
	var out []Run
	for it.idx < len(it.runs) {
		cur := []rune(it.runs[it.idx].Insert)
		if it.off < len(cur) {
			out = append(out, Run{
				Insert:     string(cur[it.off:]),
				Attributes: it.runs[it.idx].Attributes.Clone(),
			})
		}
		it.idx++
		it.off = 0
	}
	return out
}
