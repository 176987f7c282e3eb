package translate

import (
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// pathCache remembers where blocks were inserted during one batch, so that
// children added right after their parent are placed without a search.
// Entries go stale as soon as the tree changes and are checked before use.
type pathCache map[models.BlockID]editor.Path

func (c pathCache) fill(n *editor.Node, p editor.Path) {
	if !n.IsBlock() {
		return
	}
	c[n.BlockID] = p.Clone()
	for i, child := range n.Children {
		c.fill(child, p.Child(i))
	}
}

// resolve returns the path and node of a materialized block, preferring a
// cached path when it still points at that block.
func (t *Translator) resolve(id models.BlockID, cache pathCache) (editor.Path, *editor.Node, bool) {
	if p, ok := cache[id]; ok {
		if n, err := t.ed.Node(p); err == nil && n.IsBlock() && n.BlockID == id {
			return p, n, true
		}
		delete(cache, id)
	}
	p, n, ok := t.ed.FindBlock(id)
	if ok {
		cache[id] = p
	}
	return p, n, ok
}
