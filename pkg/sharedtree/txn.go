package sharedtree

import (
	"fmt"
	"slices"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// Txn is the mutation handle passed to Transact callbacks. Every method
// validates before it mutates, so a failed call leaves the state as it was.
type Txn struct {
	doc    *Doc
	label  string
	origin Origin
	client string
	ops    []Operation

	// replaced holds blocks that were moved or deleted; if they are present
	// at commit, observers see them removed and added again.
	replaced   map[models.BlockID]struct{}
	textOrder  []models.TextID
	textDeltas map[models.TextID][]models.Delta
	textReset  map[models.TextID]bool

	// failed poisons the outermost transaction when a joined inner
	// transaction returned an error.
	failed error
}

func newTxn(d *Doc, label string, origin Origin, client string) *Txn {
	return &Txn{
		doc:        d,
		label:      label,
		origin:     origin,
		client:     client,
		replaced:   map[models.BlockID]struct{}{},
		textDeltas: map[models.TextID][]models.Delta{},
		textReset:  map[models.TextID]bool{},
	}
}

func (t *Txn) Label() string {
	return t.label
}

// Doc gives read access to the in-progress state.
func (t *Txn) Doc() *Doc {
	return t.doc
}

func (t *Txn) InsertBlock(b models.Block, parent models.BlockID, index int) error {
	return t.apply(InsertBlockOp(b, parent, index))
}

// AppendBlock inserts b as the last child of parent.
func (t *Txn) AppendBlock(b models.Block, parent models.BlockID) error {
	return t.InsertBlock(b, parent, len(t.doc.st.children[parent]))
}

// InsertTextBlock creates the text entity and then the block referencing it.
func (t *Txn) InsertTextBlock(b models.Block, text models.Text, parent models.BlockID, index int) error {
	if b.ExternalID == "" {
		b.ExternalID = models.NewTextID()
	}
	b.ExternalType = models.ExternalTypeText
	if err := t.CreateText(b.ExternalID, text); err != nil {
		return err
	}
	return t.InsertBlock(b, parent, index)
}

// DeleteBlock removes the block, its descendants and their texts.
func (t *Txn) DeleteBlock(id models.BlockID) error {
	return t.apply(DeleteBlockOp(id))
}

func (t *Txn) MoveBlock(id, parent models.BlockID, index int) error {
	return t.apply(MoveBlockOp(id, parent, index))
}

func (t *Txn) SetBlockData(id models.BlockID, data models.BlockData) error {
	return t.apply(SetDataOp(id, data))
}

// PatchBlockData merges patch into the block data. Nil values remove keys.
func (t *Txn) PatchBlockData(id models.BlockID, patch models.BlockData) error {
	return t.apply(PatchDataOp(id, patch))
}

func (t *Txn) SetBlockType(id models.BlockID, typ models.BlockType) error {
	return t.apply(SetTypeOp(id, typ))
}

func (t *Txn) CreateText(id models.TextID, text models.Text) error {
	return t.apply(CreateTextOp(id, text))
}

func (t *Txn) RemoveText(id models.TextID) error {
	return t.apply(RemoveTextOp(id))
}

func (t *Txn) ApplyDelta(id models.TextID, d models.Delta) error {
	return t.apply(ApplyDeltaOp(id, d))
}

func (t *Txn) InsertText(id models.TextID, offset int, s string, attrs models.Attributes) error {
	if s == "" {
		return nil
	}
	return t.ApplyDelta(id, models.InsertDelta(offset, s, attrs))
}

func (t *Txn) DeleteText(id models.TextID, offset, n int) error {
	if n <= 0 {
		return nil
	}
	return t.ApplyDelta(id, models.DeleteDelta(offset, n))
}

func (t *Txn) FormatText(id models.TextID, offset, n int, attrs models.Attributes) error {
	if n <= 0 {
		return nil
	}
	return t.ApplyDelta(id, models.FormatDelta(offset, n, attrs))
}

func (t *Txn) apply(op Operation) error {
	var err error
	switch op.Action {
	case ActionInsertBlock:
		err = t.insertBlock(op)
	case ActionDeleteBlock:
		err = t.deleteBlock(op.BlockID)
	case ActionMoveBlock:
		err = t.moveBlock(op.BlockID, op.Parent, op.Index)
	case ActionSetData, ActionPatchData, ActionSetType:
		err = t.updateBlock(op)
	case ActionCreateText:
		err = t.createText(op.TextID, op.Text)
	case ActionRemoveText:
		err = t.removeText(op.TextID)
	case ActionApplyDelta:
		err = t.applyDelta(op.TextID, op.Delta)
	default:
		err = fmt.Errorf("%w: %q", constants.ErrUnknownOperation, op.Action)
	}
	if err != nil {
		return err
	}
	t.ops = append(t.ops, op)
	return nil
}

func (t *Txn) insertBlock(op Operation) error {
	st := t.doc.st
	if op.Block == nil || op.Block.ID == "" {
		return fmt.Errorf("%w: insert without a block", constants.ErrUnknownOperation)
	}
	b := op.Block.Clone()
	if _, exists := st.blocks[b.ID]; exists {
		return fmt.Errorf("%w: %s", constants.ErrBlockExists, b.ID)
	}
	parent := op.Parent
	if parent == "" {
		parent = b.Parent
	}
	if _, ok := st.blocks[parent]; !ok {
		return fmt.Errorf("%w: %s for %s", constants.ErrParentNotFound, parent, b.ID)
	}
	if b.ExternalID != "" {
		if _, ok := st.texts[b.ExternalID]; !ok {
			return fmt.Errorf("%w: %s for %s", constants.ErrTextNotFound, b.ExternalID, b.ID)
		}
	}
	if op.Index < 0 || op.Index > len(st.children[parent]) {
		return fmt.Errorf("%w: %d under %s", constants.ErrInvalidIndex, op.Index, parent)
	}
	st.blocks[b.ID] = b
	st.attach(b.ID, parent, op.Index)
	return nil
}

func (t *Txn) deleteBlock(id models.BlockID) error {
	st := t.doc.st
	if id == st.page {
		return constants.ErrRootImmutable
	}
	if _, ok := st.blocks[id]; !ok {
		return fmt.Errorf("%w: %s", constants.ErrBlockNotFound, id)
	}
	subtree := append([]models.BlockID{id}, st.descendants(id)...)
	st.detach(id)
	for _, d := range subtree {
		if ext := st.blocks[d].ExternalID; ext != "" {
			delete(st.texts, ext)
			t.forgetText(ext)
		}
		delete(st.children, d)
		delete(st.blocks, d)
		t.replaced[d] = struct{}{}
	}
	return nil
}

func (t *Txn) moveBlock(id, parent models.BlockID, index int) error {
	st := t.doc.st
	if id == st.page {
		return constants.ErrRootImmutable
	}
	b, ok := st.blocks[id]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrBlockNotFound, id)
	}
	if _, ok := st.blocks[parent]; !ok {
		return fmt.Errorf("%w: %s for %s", constants.ErrParentNotFound, parent, id)
	}
	if parent == id || st.isAncestor(id, parent) {
		return fmt.Errorf("%w: %s into %s", constants.ErrCycle, id, parent)
	}
	limit := len(st.children[parent])
	if b.Parent == parent {
		limit--
	}
	if index < 0 || index > limit {
		return fmt.Errorf("%w: %d under %s", constants.ErrInvalidIndex, index, parent)
	}
	st.detach(id)
	st.attach(id, parent, index)
	t.replaced[id] = struct{}{}
	return nil
}

func (t *Txn) updateBlock(op Operation) error {
	st := t.doc.st
	b, ok := st.blocks[op.BlockID]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrBlockNotFound, op.BlockID)
	}
	switch op.Action {
	case ActionSetData:
		b.Data = op.Data.Clone()
	case ActionPatchData:
		b.Data = b.Data.Patch(op.Data)
	case ActionSetType:
		if op.BlockID == st.page || op.Type == models.PageType {
			return constants.ErrRootImmutable
		}
		b.Type = op.Type
	}
	st.blocks[op.BlockID] = b
	return nil
}

func (t *Txn) createText(id models.TextID, text models.Text) error {
	st := t.doc.st
	if id == "" {
		return fmt.Errorf("%w: empty text id", constants.ErrUnknownOperation)
	}
	if _, exists := st.texts[id]; exists {
		return fmt.Errorf("%w: %s", constants.ErrTextExists, id)
	}
	st.texts[id] = text.Normalize()
	t.touchText(id)
	return nil
}

func (t *Txn) removeText(id models.TextID) error {
	st := t.doc.st
	if _, ok := st.texts[id]; !ok {
		return fmt.Errorf("%w: %s", constants.ErrTextNotFound, id)
	}
	if owner, ok := st.textOwners()[id]; ok {
		return fmt.Errorf("%w: text %s still referenced by %s", constants.ErrCorruptDocument, id, owner)
	}
	delete(st.texts, id)
	t.forgetText(id)
	return nil
}

func (t *Txn) applyDelta(id models.TextID, d models.Delta) error {
	st := t.doc.st
	cur, ok := st.texts[id]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrTextNotFound, id)
	}
	next, err := cur.Apply(d)
	if err != nil {
		return fmt.Errorf("text %s: %w", id, err)
	}
	st.texts[id] = next
	t.touchText(id)
	if !t.textReset[id] {
		t.textDeltas[id] = append(t.textDeltas[id], slices.Clone(d))
	}
	return nil
}

func (t *Txn) touchText(id models.TextID) {
	if !slices.Contains(t.textOrder, id) {
		t.textOrder = append(t.textOrder, id)
	}
}

// forgetText marks a text dropped in this transaction. A text recreated
// under the same id only belongs to a freshly added block, so its deltas
// are never reported.
func (t *Txn) forgetText(id models.TextID) {
	t.textReset[id] = true
	delete(t.textDeltas, id)
	t.touchText(id)
}
