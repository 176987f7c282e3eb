// Package translate keeps an editor.Editor in step with a sharedtree.Doc by
// applying the store's change events to the editable tree.
package translate

import (
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/selection"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// Translator is the only writer of the editable tree.
type Translator struct {
	doc *sharedtree.Doc
	ed  *editor.Editor
	log logger.Logger
}

func New(doc *sharedtree.Doc, ed *editor.Editor, log logger.Logger) *Translator {
	return &Translator{doc: doc, ed: ed, log: logger.OrNop(log)}
}

// Attach subscribes the translator to every batch the store commits.
func (t *Translator) Attach() (dispose func()) {
	return t.doc.Observe(func(b sharedtree.Batch) {
		t.log.Debug("translating batch", "label", b.Label, "origin", string(b.Origin), "events", len(b.Events))
		t.Apply(b.Events)
	})
}

// Rebuild re-translates the whole document, discarding the current tree.
// Blocks that fail to convert are skipped and logged.
func (t *Translator) Rebuild() {
	var nodes []*editor.Node
	for _, id := range t.doc.ChildrenOrder(t.doc.PageID()) {
		n, err := BlockToNode(t.doc, id)
		if err != nil {
			t.log.Error("skipping block on rebuild", "block_id", string(id), "error", err)
			continue
		}
		nodes = append(nodes, n)
	}
	t.ed.Reset(nodes)
	t.repairSelection()
}

// Apply patches the editable tree with one batch of events. A failing event
// is logged and skipped; the rest of the batch still applies.
func (t *Translator) Apply(events []sharedtree.Event) {
	cache := pathCache{}
	for _, e := range events {
		switch e.Target() {
		case sharedtree.TargetBlockMap:
			t.applyBlockMap(e.Keys, cache)
		case sharedtree.TargetBlock:
			t.applyBlockFields(e)
		case sharedtree.TargetText:
			t.applyText(e)
		case sharedtree.TargetUnknown:
			t.log.Warn("ignoring event with unknown path", "path", e.Path)
		}
	}
	t.repairSelection()
}

// applyBlockMap handles deletions strictly before additions and updates:
// an add computes its index against the parent's current children, which
// must no longer include the deleted siblings.
func (t *Translator) applyBlockMap(keys []sharedtree.KeyChange, cache pathCache) {
	for _, k := range keys {
		if k.Action == sharedtree.Deleted {
			t.deleteBlock(k.ID)
		}
	}
	for _, k := range keys {
		switch k.Action {
		case sharedtree.Added:
			t.addBlock(k.ID, cache)
		case sharedtree.Updated:
			// Field changes arrive as single-block events.
			t.log.Debug("ignoring block map update", "block_id", string(k.ID))
		case sharedtree.Deleted:
		default:
			t.log.Warn("ignoring unknown block change", "block_id", string(k.ID), "action", string(k.Action))
		}
	}
}

func (t *Translator) deleteBlock(id models.BlockID) {
	p, _, ok := t.ed.FindBlock(id)
	if !ok {
		t.log.Debug("delete of block not in editor", "block_id", string(id))
		return
	}
	if _, err := t.ed.RemoveNode(p); err != nil {
		t.log.Error("failed to remove block", "block_id", string(id), "error", err)
	}
}

func (t *Translator) addBlock(id models.BlockID, cache pathCache) {
	if _, _, ok := t.ed.FindBlock(id); ok {
		t.log.Debug("block already in editor", "block_id", string(id))
		return
	}
	b, err := t.doc.Block(id)
	if err != nil {
		t.log.Warn("skipping add of missing block", "block_id", string(id), "error", err)
		return
	}

	siblings, offset := t.ed.Children(), 0
	var parentPath editor.Path
	if b.Parent != t.doc.PageID() {
		p, parent, ok := t.resolve(b.Parent, cache)
		if !ok {
			t.log.Warn("skipping add: parent not in editor", "block_id", string(id), "parent_id", string(b.Parent))
			return
		}
		parentPath, siblings, offset = p, parent.Children, parent.BlockOffset()
	}

	node, err := BlockToNode(t.doc, id)
	if err != nil {
		t.log.Warn("skipping add: block cannot be converted", "block_id", string(id), "error", err)
		return
	}

	index := offset + materializedBefore(t.doc.ChildrenOrder(b.Parent), id, siblings)
	path := parentPath.Child(index)
	if err := t.ed.InsertNode(path, node); err != nil {
		t.log.Error("failed to insert block", "block_id", string(id), "path", path.String(), "error", err)
		return
	}
	cache.fill(node, path)
}

// materializedBefore counts the siblings preceding id in the store order
// that are already present in the editor.
func materializedBefore(order []models.BlockID, id models.BlockID, siblings []*editor.Node) int {
	present := make(map[models.BlockID]struct{}, len(siblings))
	for _, s := range siblings {
		if s.IsBlock() {
			present[s.BlockID] = struct{}{}
		}
	}
	n := 0
	for _, s := range order {
		if s == id {
			break
		}
		if _, ok := present[s]; ok {
			n++
		}
	}
	return n
}

// applyBlockFields keeps node identity: type and data are patched in place.
// Only a type change that adds or drops the text child replaces the node.
func (t *Translator) applyBlockFields(e sharedtree.Event) {
	p, n, ok := t.ed.FindBlock(e.BlockID)
	if !ok {
		t.log.Debug("field change of block not in editor", "block_id", string(e.BlockID))
		return
	}
	if e.NewType != "" && e.NewType != n.Type {
		b, err := t.doc.Block(e.BlockID)
		if err == nil && b.HasText() != (n.TextChild() != nil) {
			t.replaceBlock(p, e.BlockID)
			return
		}
		if err := t.ed.SetType(p, e.NewType); err != nil {
			t.log.Error("failed to set block type", "block_id", string(e.BlockID), "error", err)
			return
		}
	}
	if e.OldData.Equal(e.NewData) {
		return
	}
	if err := t.ed.SetData(p, models.DiffData(n.Data, e.NewData)); err != nil {
		t.log.Error("failed to patch block data", "block_id", string(e.BlockID), "error", err)
	}
}

func (t *Translator) replaceBlock(p editor.Path, id models.BlockID) {
	node, err := BlockToNode(t.doc, id)
	if err != nil {
		t.log.Warn("skipping replace: block cannot be converted", "block_id", string(id), "error", err)
		return
	}
	if err := t.ed.ReplaceNode(p, node); err != nil {
		t.log.Error("failed to replace block", "block_id", string(id), "error", err)
	}
}

// applyText applies the delta to the text node; if the node and the delta
// disagree, the node is resynced from the store.
func (t *Translator) applyText(e sharedtree.Event) {
	p, _, ok := t.ed.FindText(e.TextID)
	if !ok {
		t.log.Debug("text change of text not in editor", "text_id", string(e.TextID))
		return
	}
	err := t.ed.ApplyDelta(p, e.Delta)
	if err == nil {
		return
	}
	t.log.Warn("delta does not fit editor text, resyncing", "text_id", string(e.TextID), "error", err)
	txt, err := t.doc.Text(e.TextID)
	if err != nil {
		t.log.Error("cannot resync text", "text_id", string(e.TextID), "error", err)
		return
	}
	if err := t.ed.ReplaceText(p, txt); err != nil {
		t.log.Error("failed to resync text", "text_id", string(e.TextID), "error", err)
	}
}

func (t *Translator) repairSelection() {
	sel := t.ed.Selection()
	if sel == nil || t.ed.IsValidSelection(*sel) {
		return
	}
	repaired := selection.FindNearestValid(t.ed, sel)
	if repaired == nil {
		t.log.Debug("no valid selection left, deselecting")
	}
	t.ed.SetSelection(repaired)
}
