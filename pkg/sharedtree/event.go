package sharedtree

import "github.com/serenorg/AppFlowy-Web/pkg/models"

// ChangeAction tags a key of a block-map change.
type ChangeAction string

const (
	Added   ChangeAction = "added"
	Deleted ChangeAction = "deleted"
	Updated ChangeAction = "updated"
)

type KeyChange struct {
	ID     models.BlockID
	Action ChangeAction
}

// Target classifies an event by its path.
type Target uint8

const (
	TargetUnknown Target = iota
	TargetBlockMap
	TargetBlock
	TargetText
)

const (
	pathBlocks  = "blocks"
	pathMeta    = "meta"
	pathTextMap = "text_map"
)

// Event is one change notification. Path says which part of the document
// changed; the remaining fields are filled according to the target.
type Event struct {
	Path []string

	// block map
	Keys []KeyChange

	// single block
	BlockID          models.BlockID
	OldType, NewType models.BlockType
	OldData, NewData models.BlockData

	// text
	TextID models.TextID
	Delta  models.Delta
}

func (e Event) Target() Target {
	switch {
	case len(e.Path) == 1 && e.Path[0] == pathBlocks:
		return TargetBlockMap
	case len(e.Path) == 2 && e.Path[0] == pathBlocks:
		return TargetBlock
	case len(e.Path) == 3 && e.Path[0] == pathMeta && e.Path[1] == pathTextMap:
		return TargetText
	default:
		return TargetUnknown
	}
}

func BlockMapEvent(keys ...KeyChange) Event {
	return Event{Path: []string{pathBlocks}, Keys: keys}
}

func BlockEvent(id models.BlockID, oldType, newType models.BlockType, oldData, newData models.BlockData) Event {
	return Event{
		Path:    []string{pathBlocks, string(id)},
		BlockID: id,
		OldType: oldType,
		NewType: newType,
		OldData: oldData,
		NewData: newData,
	}
}

func TextEvent(id models.TextID, d models.Delta) Event {
	return Event{Path: []string{pathMeta, pathTextMap, string(id)}, TextID: id, Delta: d}
}

// events derives the batch by comparing the states around the transaction.
// Blocks created and removed within the transaction never show up, and no
// field or text events are produced inside subtrees that are reported as
// added, since adding materializes their current state.
func (t *Txn) events(before, after *state) []Event {
	var keys []KeyChange
	for _, id := range before.preorder() {
		_, kept := after.blocks[id]
		_, replaced := t.replaced[id]
		if !kept || replaced {
			keys = append(keys, KeyChange{ID: id, Action: Deleted})
		}
	}

	order := after.preorder()
	covered := make(map[models.BlockID]bool, len(order))
	for _, id := range order {
		_, existed := before.blocks[id]
		_, replaced := t.replaced[id]
		fresh := !existed || replaced
		if fresh {
			keys = append(keys, KeyChange{ID: id, Action: Added})
		}
		covered[id] = fresh || covered[after.blocks[id].Parent]
	}

	var out []Event
	if len(keys) > 0 {
		out = append(out, BlockMapEvent(keys...))
	}

	for _, id := range append([]models.BlockID{after.page}, order...) {
		if covered[id] {
			continue
		}
		old, cur := before.blocks[id], after.blocks[id]
		if old.Type != cur.Type || !old.Data.Equal(cur.Data) {
			out = append(out, BlockEvent(id, old.Type, cur.Type, old.Data.Clone(), cur.Data.Clone()))
		}
	}

	owners := after.textOwners()
	for _, tid := range t.textOrder {
		_, existed := before.texts[tid]
		_, exists := after.texts[tid]
		owner, owned := owners[tid]
		if !existed || !exists || !owned || covered[owner] || t.textReset[tid] {
			continue
		}
		for _, d := range t.textDeltas[tid] {
			out = append(out, TextEvent(tid, d))
		}
	}
	return out
}
