package sharedtree

import "github.com/serenorg/AppFlowy-Web/pkg/models"

// OpAction names a serialized store mutation.
type OpAction string

const (
	ActionInsertBlock OpAction = "insert_block"
	ActionDeleteBlock OpAction = "delete_block"
	ActionMoveBlock   OpAction = "move_block"
	ActionSetData     OpAction = "set_data"
	ActionPatchData   OpAction = "patch_data"
	ActionSetType     OpAction = "set_type"
	ActionCreateText  OpAction = "create_text"
	ActionRemoveText  OpAction = "remove_text"
	ActionApplyDelta  OpAction = "apply_delta"
)

// Operation is one replayable mutation. Which fields are set depends on
// Action.
type Operation struct {
	Action  OpAction         `cbor:"action" json:"action"`
	Block   *models.Block    `cbor:"block,omitempty" json:"block,omitempty"`
	BlockID models.BlockID   `cbor:"block_id,omitempty" json:"block_id,omitempty"`
	Parent  models.BlockID   `cbor:"parent,omitempty" json:"parent,omitempty"`
	Index   int              `cbor:"index,omitempty" json:"index,omitempty"`
	Data    models.BlockData `cbor:"data,omitempty" json:"data,omitempty"`
	Type    models.BlockType `cbor:"type,omitempty" json:"type,omitempty"`
	TextID  models.TextID    `cbor:"text_id,omitempty" json:"text_id,omitempty"`
	Text    models.Text      `cbor:"text,omitempty" json:"text,omitempty"`
	Delta   models.Delta     `cbor:"delta,omitempty" json:"delta,omitempty"`
}

func InsertBlockOp(b models.Block, parent models.BlockID, index int) Operation {
	b = b.Clone()
	return Operation{Action: ActionInsertBlock, Block: &b, Parent: parent, Index: index}
}

func DeleteBlockOp(id models.BlockID) Operation {
	return Operation{Action: ActionDeleteBlock, BlockID: id}
}

func MoveBlockOp(id, parent models.BlockID, index int) Operation {
	return Operation{Action: ActionMoveBlock, BlockID: id, Parent: parent, Index: index}
}

func SetDataOp(id models.BlockID, data models.BlockData) Operation {
	return Operation{Action: ActionSetData, BlockID: id, Data: data.Clone()}
}

func PatchDataOp(id models.BlockID, patch models.BlockData) Operation {
	return Operation{Action: ActionPatchData, BlockID: id, Data: patch.Clone()}
}

func SetTypeOp(id models.BlockID, t models.BlockType) Operation {
	return Operation{Action: ActionSetType, BlockID: id, Type: t}
}

func CreateTextOp(id models.TextID, t models.Text) Operation {
	return Operation{Action: ActionCreateText, TextID: id, Text: t.Clone()}
}

func RemoveTextOp(id models.TextID) Operation {
	return Operation{Action: ActionRemoveText, TextID: id}
}

func ApplyDeltaOp(id models.TextID, d models.Delta) Operation {
	return Operation{Action: ActionApplyDelta, TextID: id, Delta: d}
}

// Update is the serialized form of one committed transaction.
type Update struct {
	DocID  models.DocumentID `cbor:"doc" json:"doc"`
	Client string            `cbor:"client,omitempty" json:"client,omitempty"`
	Label  string            `cbor:"label,omitempty" json:"label,omitempty"`
	Ops    []Operation       `cbor:"ops" json:"ops"`
}
