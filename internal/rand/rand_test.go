package rand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

func TestString(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 31} {
		s := String(n)
		require.Len(t, s, n)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(charset, r), "unexpected rune %q", r)
		}
	}
}

func TestIDsAreDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		id := NewBlockID()
		require.Len(t, id, constants.BlockIDLength)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, NewRequestID(), constants.RequestIDLength)
}

func BenchmarkNewBlockID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewBlockID()
	}
}
