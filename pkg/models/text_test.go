package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

func bold(s string) Run {
	return Run{Insert: s, Attributes: Attributes{AttrBold: true}}
}

func TestTextApply(t *testing.T) {
	base := Text{{Insert: "Hello "}, bold("wörld")}

	cases := []struct {
		name  string
		delta Delta
		want  Text
	}{
		{
			name:  "insert in the middle of a run keeps formatting around it",
			delta: InsertDelta(8, "XY", nil),
			want:  Text{{Insert: "Hello "}, bold("wö"), {Insert: "XY"}, bold("rld")},
		},
		{
			name:  "delete across runs",
			delta: DeleteDelta(4, 4),
			want:  Text{{Insert: "Hell"}, bold("rld")},
		},
		{
			name:  "format merges with neighbour",
			delta: FormatDelta(3, 3, Attributes{AttrBold: true}),
			want:  Text{{Insert: "Hel"}, bold("lo wörld")},
		},
		{
			name:  "nil attribute removes formatting",
			delta: FormatDelta(6, 5, Attributes{AttrBold: nil}),
			want:  Text{{Insert: "Hello wörld"}},
		},
		{
			name:  "empty delta is identity",
			delta: nil,
			want:  base,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := base.Apply(tc.delta)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %#v", got)
			assert.Equal(t, "Hello wörld", base.String(), "receiver must not change")
		})
	}
}

func TestTextApplyRejectsOverflow(t *testing.T) {
	base := PlainText("abc")
	_, err := base.Apply(DeleteDelta(2, 5))
	require.ErrorIs(t, err, constants.ErrInvalidDelta)
	_, err = base.Apply(Delta{{Retain: 9}})
	require.ErrorIs(t, err, constants.ErrInvalidDelta)
	_, err = base.Apply(Delta{{}})
	require.ErrorIs(t, err, constants.ErrInvalidDelta)
}

func TestTextSliceAndConcat(t *testing.T) {
	txt := Text{{Insert: "ab"}, bold("cd"), {Insert: "é"}}
	assert.Equal(t, 5, txt.Len())
	assert.Equal(t, "bcd", txt.Slice(1, 4).String())
	assert.Equal(t, "", txt.Slice(4, 2).String())
	assert.Equal(t, "cdé", txt.Slice(2, 99).String())

	joined := txt.Slice(0, 2).Concat(txt.Slice(2, 5))
	assert.True(t, txt.Equal(joined))
}

func TestAttributesAt(t *testing.T) {
	txt := Text{{Insert: "ab"}, bold("cd")}
	assert.Nil(t, txt.AttributesAt(0))
	assert.Nil(t, txt.AttributesAt(2))
	assert.Equal(t, Attributes{AttrBold: true}, txt.AttributesAt(3))
	assert.Equal(t, Attributes{AttrBold: true}, txt.AttributesAt(4))
	assert.Nil(t, Text{}.AttributesAt(0))
}
