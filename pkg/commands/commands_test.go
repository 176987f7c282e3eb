package commands

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/selection"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
	"github.com/serenorg/AppFlowy-Web/pkg/translate"
)

type node struct {
	id   string
	typ  models.BlockType
	text models.Text
	data models.BlockData
	kids []node
}

func blk(typ models.BlockType, id, text string, kids ...node) node {
	n := node{id: id, typ: typ, kids: kids}
	if models.KindOf(typ).TextBearing() {
		n.text = models.PlainText(text)
	}
	return n
}

func para(id, text string, kids ...node) node {
	return blk(models.Paragraph, id, text, kids...)
}

func (n node) with(data models.BlockData) node {
	n.data = data
	return n
}

type env struct {
	t       *testing.T
	doc     *sharedtree.Doc
	ed      *editor.Editor
	cmd     *Commands
	batches int
	opened  []string
}

func (e *env) OpenView(id models.BlockID, viewID string) {
	e.opened = append(e.opened, string(id)+":"+viewID)
}

func setup(t *testing.T, nodes ...node) *env {
	t.Helper()
	e := &env{t: t, doc: sharedtree.New(sharedtree.WithPageID("page")), ed: editor.New()}
	require.NoError(t, e.doc.Transact("seed", func(txn *sharedtree.Txn) error {
		return insertAll(txn, "page", nodes)
	}))
	tr := translate.New(e.doc, e.ed, nil)
	tr.Rebuild()
	t.Cleanup(tr.Attach())
	t.Cleanup(e.doc.Observe(func(sharedtree.Batch) { e.batches++ }))

	seq := 0
	e.cmd = New(e.doc, e.ed,
		WithIDGenerator(func() models.BlockID {
			seq++
			return models.BlockID(fmt.Sprintf("n%d", seq))
		}),
		WithViewOpener(e),
	)
	return e
}

func insertAll(txn *sharedtree.Txn, parent models.BlockID, nodes []node) error {
	for i, n := range nodes {
		b := models.Block{ID: models.BlockID(n.id), Type: n.typ, Data: n.data}
		var err error
		if models.KindOf(n.typ).TextBearing() {
			b.ExternalID = models.TextID("t" + n.id)
			err = txn.InsertTextBlock(b, n.text, parent, i)
		} else {
			err = txn.InsertBlock(b, parent, i)
		}
		if err != nil {
			return err
		}
		if err := insertAll(txn, b.ID, n.kids); err != nil {
			return err
		}
	}
	return nil
}

// outline renders the store as `id"text"{children}`, and checks that the
// editable tree renders the same.
func (e *env) outline() string {
	e.t.Helper()
	got := outlineDoc(e.doc, e.doc.PageID())
	assert.Equal(e.t, got, outlineNodes(e.ed.Children()), "editor out of sync")
	return got
}

func outlineDoc(doc *sharedtree.Doc, id models.BlockID) string {
	var parts []string
	for _, c := range doc.ChildrenOrder(id) {
		b, _ := doc.Block(c)
		s := string(c)
		if b.HasText() {
			txt, _ := doc.Text(b.ExternalID)
			s += fmt.Sprintf("%q", txt.String())
		}
		if kids := outlineDoc(doc, c); kids != "" {
			s += "{" + kids + "}"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func outlineNodes(nodes []*editor.Node) string {
	var parts []string
	for _, n := range nodes {
		s := string(n.BlockID)
		if tc := n.TextChild(); tc != nil {
			s += fmt.Sprintf("%q", tc.String())
		}
		if kids := outlineNodes(n.ChildBlocks()); kids != "" {
			s += "{" + kids + "}"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func (e *env) cursor(id models.BlockID, offset int) {
	e.t.Helper()
	s, ok := selection.At(e.ed, id, offset)
	require.True(e.t, ok)
	require.NoError(e.t, e.ed.Select(*s))
}

func (e *env) selectRange(anchor models.BlockID, aOff int, focus models.BlockID, fOff int) {
	e.t.Helper()
	a, ok := selection.At(e.ed, anchor, aOff)
	require.True(e.t, ok)
	f, ok := selection.At(e.ed, focus, fOff)
	require.True(e.t, ok)
	require.NoError(e.t, e.ed.Select(editor.Selection{Anchor: a.Anchor, Focus: f.Focus}))
}

func (e *env) assertCaret(id models.BlockID, offset int) {
	e.t.Helper()
	want, ok := selection.At(e.ed, id, offset)
	require.True(e.t, ok)
	got := e.ed.Selection()
	require.NotNil(e.t, got)
	assert.Equal(e.t, *want, *got)
}

func (e *env) block(id models.BlockID) models.Block {
	e.t.Helper()
	b, err := e.doc.Block(id)
	require.NoError(e.t, err)
	return b
}

func TestBackspaceLiftsNestedBlock(t *testing.T) {
	e := setup(t,
		blk(models.BulletedList, "l", "List",
			blk(models.BulletedList, "m", "Mid",
				para("p", "Deep"))))
	e.cursor("p", 0)

	require.NoError(t, e.cmd.DeleteBackward())
	assert.Equal(t, `l"List"{m"Mid" p"Deep"}`, e.outline())
	assert.Equal(t, models.BlockID("l"), e.block("p").Parent)
	e.assertCaret("p", 0)
}

func TestBackspaceRules(t *testing.T) {
	cases := []struct {
		name   string
		nodes  []node
		at     models.BlockID
		offset int
		want   string
		check  func(*env)
	}{
		{
			name:  "merges top-level paragraph",
			nodes: []node{para("a", "Alpha"), para("b", "Beta")},
			at:    "b",
			want:  `a"AlphaBeta"`,
			check: func(e *env) { e.assertCaret("a", 5) },
		},
		{
			name:  "merged block children take its place",
			nodes: []node{para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")), para("d", "Delta")},
			at:    "b",
			want:  `a"AlphaBeta" c"Gamma" d"Delta"`,
		},
		{
			name:  "merges into the deepest previous block",
			nodes: []node{para("a", "Alpha", para("c", "Gamma")), para("b", "Beta")},
			at:    "b",
			want:  `a"Alpha"{c"GammaBeta"}`,
			check: func(e *env) { e.assertCaret("c", 5) },
		},
		{
			name:  "first block does nothing",
			nodes: []node{para("a", "Alpha")},
			at:    "a",
			want:  `a"Alpha"`,
		},
		{
			name:  "heading turns into paragraph",
			nodes: []node{para("a", "Alpha"), blk(models.Heading, "h", "Head")},
			at:    "h",
			want:  `a"Alpha" h"Head"`,
			check: func(e *env) { assert.Equal(t, models.Paragraph, e.block("h").Type) },
		},
		{
			name:  "list item inside quote turns into paragraph",
			nodes: []node{blk(models.Quote, "q", "Q", blk(models.BulletedList, "i", "Item"))},
			at:    "i",
			want:  `q"Q"{i"Item"}`,
			check: func(e *env) { assert.Equal(t, models.Paragraph, e.block("i").Type) },
		},
		{
			name:  "void block before is deleted",
			nodes: []node{para("a", "Alpha"), blk(models.Divider, "d", ""), para("b", "Beta")},
			at:    "b",
			want:  `a"Alpha" b"Beta"`,
			check: func(e *env) { e.assertCaret("b", 0) },
		},
		{
			name:   "inside text removes one character",
			nodes:  []node{para("a", "Alpha")},
			at:     "a",
			offset: 3,
			want:   `a"Alha"`,
			check:  func(e *env) { e.assertCaret("a", 2) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := setup(t, tc.nodes...)
			e.cursor(tc.at, tc.offset)
			require.NoError(t, e.cmd.DeleteBackward())
			assert.Equal(t, tc.want, e.outline())
			if tc.check != nil {
				tc.check(e)
			}
		})
	}
}

func TestDeleteForward(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")))
	e.cursor("a", 5)
	require.NoError(t, e.cmd.DeleteForward())
	assert.Equal(t, `a"AlphaBeta" c"Gamma"`, e.outline())
	e.assertCaret("a", 5)

	e.cursor("a", 0)
	require.NoError(t, e.cmd.DeleteForward())
	assert.Equal(t, `a"lphaBeta" c"Gamma"`, e.outline())

	e.cursor("c", 5)
	require.NoError(t, e.cmd.DeleteForward())
	assert.Equal(t, `a"lphaBeta" c"Gamma"`, e.outline())
}

func TestDeleteFragmentAcrossBlocks(t *testing.T) {
	e := setup(t,
		para("a", "Alpha"),
		para("b", "Beta", para("c", "Gamma")),
		para("d", "Delta", para("x", "Xi")))
	e.selectRange("d", 3, "a", 2)

	require.NoError(t, e.cmd.DeleteFragment())
	assert.Equal(t, `a"Alta" x"Xi"`, e.outline())
	e.assertCaret("a", 2)
}

func TestDeleteFragmentInsideContainer(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")))
	e.selectRange("a", 1, "c", 2)

	require.NoError(t, e.cmd.DeleteFragment())
	assert.Equal(t, `a"Amma" b""`, e.outline())
}

func TestTabIndentAcrossTwoBlocks(t *testing.T) {
	e := setup(t, para("p", "Para"), para("a", "Alpha"), para("b", "Beta"))
	e.selectRange("a", 3, "b", 2)

	require.NoError(t, e.cmd.Indent())
	assert.Equal(t, `p"Para"{a"Alpha" b"Beta"}`, e.outline())

	sel := e.ed.Selection()
	require.NotNil(t, sel)
	assert.True(t, e.ed.IsValidSelection(*sel))
	assert.Equal(t, editor.Point{Path: editor.Path{0, 1, 0}, Offset: 3}, sel.Anchor)
	assert.Equal(t, editor.Point{Path: editor.Path{0, 2, 0}, Offset: 2}, sel.Focus)

	require.NoError(t, e.cmd.Outdent())
	assert.Equal(t, `p"Para" a"Alpha" b"Beta"`, e.outline())
	sel = e.ed.Selection()
	require.NotNil(t, sel)
	assert.True(t, e.ed.IsValidSelection(*sel))
	assert.Equal(t, 3, sel.Anchor.Offset)
}

func TestIndentSkipsNestedSelectedBlocks(t *testing.T) {
	e := setup(t, para("p", "Para"), para("a", "Alpha", para("c", "Gamma")), para("b", "Beta"))
	e.selectRange("a", 0, "b", 1)

	require.NoError(t, e.cmd.Indent())
	assert.Equal(t, `p"Para"{a"Alpha"{c"Gamma"} b"Beta"}`, e.outline())
}

func TestIndentOutdentNoOps(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")), blk(models.Heading, "h", "Head"), para("x", "X"))
	before := e.outline()

	e.cursor("a", 1)
	require.NoError(t, e.cmd.Indent())
	require.NoError(t, e.cmd.Outdent())

	e.cursor("c", 0)
	require.NoError(t, e.cmd.Indent())

	id, err := e.cmd.IndentBlock("x")
	require.NoError(t, err)
	assert.Equal(t, models.BlockID("x"), id)

	assert.Equal(t, before, e.outline())
	assert.Zero(t, e.batches)
	e.assertCaret("c", 0)
}

func TestOutdentAdoptsFollowingSiblings(t *testing.T) {
	e := setup(t, blk(models.BulletedList, "l", "L", para("x", "X"), para("y", "Y"), para("z", "Z")))
	_, err := e.cmd.OutdentBlock("y")
	require.NoError(t, err)
	assert.Equal(t, `l"L"{x"X"} y"Y"{z"Z"}`, e.outline())
	assert.Equal(t, 1, e.batches)
}

func TestInsertBreak(t *testing.T) {
	cases := []struct {
		name   string
		nodes  []node
		at     models.BlockID
		offset int
		want   string
		caret  models.BlockID
		check  func(*env)
	}{
		{
			name:   "splits paragraph",
			nodes:  []node{para("a", "Alpha")},
			at:     "a",
			offset: 2,
			want:   `a"Al" n1"pha"`,
			caret:  "n1",
		},
		{
			name:   "new todo starts unchecked",
			nodes:  []node{blk(models.TodoList, "t", "Task").with(models.BlockData{models.DataChecked: true})},
			at:     "t",
			offset: 4,
			want:   `t"Task" n1""`,
			caret:  "n1",
			check: func(e *env) {
				b := e.block("n1")
				assert.Equal(t, models.TodoList, b.Type)
				assert.False(t, b.Data.Bool(models.DataChecked))
			},
		},
		{
			name:   "heading continues as paragraph",
			nodes:  []node{blk(models.Heading, "h", "Head")},
			at:     "h",
			offset: 4,
			want:   `h"Head" n1""`,
			caret:  "n1",
			check:  func(e *env) { assert.Equal(t, models.Paragraph, e.block("n1").Type) },
		},
		{
			name:   "start of text inserts above",
			nodes:  []node{para("a", "Alpha")},
			at:     "a",
			offset: 0,
			want:   `n1"" a"Alpha"`,
			caret:  "a",
		},
		{
			name:   "block with children gets a first child",
			nodes:  []node{para("b", "Beta", para("c", "Gamma"))},
			at:     "b",
			offset: 2,
			want:   `b"Be"{n1"ta" c"Gamma"}`,
			caret:  "n1",
		},
		{
			name:   "empty nested list item is lifted",
			nodes:  []node{blk(models.BulletedList, "l", "L", blk(models.BulletedList, "e", ""))},
			at:     "e",
			want:   `l"L" e""`,
			caret:  "e",
		},
		{
			name:  "empty top-level list item becomes paragraph",
			nodes: []node{blk(models.NumberedList, "e", "")},
			at:    "e",
			want:  `e""`,
			caret: "e",
			check: func(e *env) { assert.Equal(t, models.Paragraph, e.block("e").Type) },
		},
		{
			name:  "empty quote becomes paragraph",
			nodes: []node{blk(models.Quote, "q", "")},
			at:    "q",
			want:  `q""`,
			caret: "q",
			check: func(e *env) { assert.Equal(t, models.Paragraph, e.block("q").Type) },
		},
		{
			name:   "code inserts newline",
			nodes:  []node{blk(models.Code, "k", "ab")},
			at:     "k",
			offset: 1,
			want:   "k\"a\\nb\"",
			check:  func(e *env) { e.assertCaret("k", 2) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := setup(t, tc.nodes...)
			e.cursor(tc.at, tc.offset)
			require.NoError(t, e.cmd.InsertBreak())
			assert.Equal(t, tc.want, e.outline())
			if tc.caret != "" {
				e.assertCaret(tc.caret, 0)
			}
			if tc.check != nil {
				tc.check(e)
			}
		})
	}
}

func TestInsertBreakOverRangeIsOneBatch(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta"))
	e.selectRange("a", 2, "b", 1)

	require.NoError(t, e.cmd.InsertBreak())
	assert.Equal(t, `a"Al" n1"eta"`, e.outline())
	assert.Equal(t, 1, e.batches)
	e.assertCaret("n1", 0)
}

func TestNoSelection(t *testing.T) {
	e := setup(t, para("a", "Alpha"))
	require.ErrorIs(t, e.cmd.InsertBreak(), constants.ErrNoSelection)
	require.ErrorIs(t, e.cmd.DeleteBackward(), constants.ErrNoSelection)
	require.ErrorIs(t, e.cmd.Indent(), constants.ErrNoSelection)
	require.ErrorIs(t, e.cmd.InsertText("x"), constants.ErrNoSelection)
	require.ErrorIs(t, e.cmd.PastePlainText("x"), constants.ErrPasteRejected)
	assert.Zero(t, e.batches)
}

func TestDeleteBlock(t *testing.T) {
	t.Run("last child gets a placeholder", func(t *testing.T) {
		e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")))
		require.NoError(t, e.cmd.DeleteBlock("c"))
		assert.Equal(t, `a"Alpha" b"Beta"{n1""}`, e.outline())
		assert.Len(t, e.doc.ChildrenOrder("b"), 1)
		assert.Equal(t, models.Paragraph, e.block("n1").Type)
		e.assertCaret("b", 0)
	})
	t.Run("only top-level block gets a placeholder", func(t *testing.T) {
		e := setup(t, para("a", "Alpha"))
		require.NoError(t, e.cmd.DeleteBlock("a"))
		assert.Equal(t, `n1""`, e.outline())
	})
	t.Run("cursor moves to the end of the previous sibling", func(t *testing.T) {
		e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")), para("x", "X"))
		require.NoError(t, e.cmd.DeleteBlock("x"))
		assert.Equal(t, `a"Alpha" b"Beta"{c"Gamma"}`, e.outline())
		e.assertCaret("c", 5)
	})
	t.Run("unrenderable target deselects", func(t *testing.T) {
		e := setup(t, para("a", "Alpha"), blk(models.Divider, "d", ""), para("x", "X"))
		e.cursor("x", 1)
		require.NoError(t, e.cmd.DeleteBlock("x"))
		assert.Equal(t, `a"Alpha" d`, e.outline())
		assert.Nil(t, e.ed.Selection())
	})
	t.Run("page cannot be deleted", func(t *testing.T) {
		e := setup(t, para("a", "Alpha"))
		require.ErrorIs(t, e.cmd.DeleteBlock("page"), constants.ErrRootImmutable)
	})
}

func TestTurnInto(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")))

	id, err := e.cmd.TurnInto("a", models.Paragraph, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BlockID("a"), id)
	assert.Zero(t, e.batches)

	id, err = e.cmd.TurnInto("a", models.Heading, models.BlockData{models.DataLevel: 2})
	require.NoError(t, err)
	assert.Equal(t, models.BlockID("a"), id)
	assert.Equal(t, models.Heading, e.block("a").Type)
	assert.Equal(t, 2, e.block("a").Data[models.DataLevel])
	_, n, _ := e.ed.FindBlock("a")
	assert.Equal(t, models.Heading, n.Type)

	id, err = e.cmd.TurnInto("b", models.Divider, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BlockID("n1"), id)
	assert.Equal(t, `a"Alpha" n1 c"Gamma"`, e.outline())
	assert.False(t, e.doc.Contains("b"))
}

func TestAddBlock(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta"))

	id, err := e.cmd.AddBlock("a", models.Paragraph, nil, Below)
	require.NoError(t, err)
	assert.Equal(t, `a"Alpha" n1"" b"Beta"`, e.outline())
	e.assertCaret(id, 0)

	_, err = e.cmd.AddBlock("a", models.Quote, nil, Above)
	require.NoError(t, err)
	_, err = e.cmd.AddBlock("b", models.TodoList, nil, Child)
	require.NoError(t, err)
	assert.Equal(t, `n2"" a"Alpha" n1"" b"Beta"{n3""}`, e.outline())
	e.assertCaret("n3", 0)

	id, err = e.cmd.AddBlock("b", models.Grid, models.BlockData{models.DataViewID: "v1"}, Below)
	require.NoError(t, err)
	assert.Equal(t, []string{"n4:v1"}, e.opened)
	e.assertCaret("n3", 0)
	assert.Equal(t, models.Grid, e.block(id).Type)

	_, err = e.cmd.AddBlock("page", models.Paragraph, nil, Above)
	require.ErrorIs(t, err, constants.ErrRootImmutable)
}

func TestDuplicateBlock(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta", para("c", "Gamma")))

	id, err := e.cmd.DuplicateBlock("b", "")
	require.NoError(t, err)
	assert.Equal(t, models.BlockID("n1"), id)
	assert.Equal(t, `a"Alpha" b"Beta"{c"Gamma"} n1"Beta"{n2"Gamma"}`, e.outline())
	assert.NotEqual(t, e.block("b").ExternalID, e.block("n1").ExternalID)

	_, err = e.cmd.DuplicateBlock("b", "c")
	require.NoError(t, err)
	assert.Equal(t, `a"Alpha" b"Beta"{c"Gamma" n3"Beta"{n4"Gamma"}} n1"Beta"{n2"Gamma"}`, e.outline())
	require.NoError(t, e.doc.Validate())
}

func TestToggles(t *testing.T) {
	e := setup(t, blk(models.TodoList, "t", "T",
		blk(models.TodoList, "u", "U"),
		para("p", "P", blk(models.TodoList, "v", "V"))))

	require.NoError(t, e.cmd.ToggleCheckbox("t", true))
	for _, id := range []models.BlockID{"t", "u", "v"} {
		assert.True(t, e.block(id).Data.Bool(models.DataChecked), id)
	}
	assert.NotContains(t, e.block("p").Data, models.DataChecked)

	require.NoError(t, e.cmd.ToggleCheckbox("t", false))
	assert.False(t, e.block("t").Data.Bool(models.DataChecked))
	assert.True(t, e.block("u").Data.Bool(models.DataChecked))

	require.NoError(t, e.cmd.ToggleCollapse("t"))
	_, n, _ := e.ed.FindBlock("t")
	assert.Equal(t, true, n.Data[models.DataCollapsed])
	require.NoError(t, e.cmd.ToggleCollapse("t"))
	assert.Equal(t, false, n.Data[models.DataCollapsed])
}

func TestInsertTextInheritsFormatting(t *testing.T) {
	bold := models.Attributes{models.AttrBold: true}
	mention := models.Attributes{models.AttrMention: map[string]any{"type": "person"}}
	a := para("a", "")
	a.text = models.Text{{Insert: "Al", Attributes: bold}, {Insert: "pha"}, {Insert: "@bob", Attributes: mention}}
	e := setup(t, a)

	e.cursor("a", 2)
	require.NoError(t, e.cmd.InsertText("X"))
	txt, err := e.doc.Text("ta")
	require.NoError(t, err)
	assert.Equal(t, "AlXpha@bob", txt.String())
	assert.Equal(t, bold, txt.AttributesAt(3))
	e.assertCaret("a", 3)

	e.cursor("a", 10)
	require.NoError(t, e.cmd.InsertText("!"))
	txt, _ = e.doc.Text("ta")
	assert.Empty(t, txt.AttributesAt(11))

	got, ok := e.ed.BlockText("a")
	require.True(t, ok)
	assert.Equal(t, txt.String(), got)
}

func TestInsertTextReplacesRange(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta"))
	e.selectRange("a", 1, "b", 3)
	require.NoError(t, e.cmd.InsertText("--"))
	assert.Equal(t, `a"A--a"`, e.outline())
	e.assertCaret("a", 3)
}

func TestPastePlainText(t *testing.T) {
	e := setup(t, para("a", "Alpha"), para("b", "Beta"))
	e.cursor("a", 2)
	require.NoError(t, e.cmd.PastePlainText("one\r\ntwo\nthree"))
	assert.Equal(t, `a"Alone" n1"two" n2"threepha" b"Beta"`, e.outline())
	e.assertCaret("n2", 5)
	assert.Equal(t, 1, e.batches)

	e.cursor("b", 4)
	require.NoError(t, e.cmd.PastePlainText("!"))
	assert.Equal(t, `a"Alone" n1"two" n2"threepha" b"Beta!"`, e.outline())
}

func TestPasteIntoCodeKeepsNewlines(t *testing.T) {
	e := setup(t, blk(models.Code, "k", "x"))
	e.cursor("k", 1)
	require.NoError(t, e.cmd.PastePlainText("\ny"))
	assert.Equal(t, "k\"x\\ny\"", e.outline())
}
