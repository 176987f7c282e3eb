package models

import "github.com/serenorg/AppFlowy-Web/internal/rand"

type (
	BlockID string
	TextID  string
)

// NewBlockID returns a fresh random block id.
func NewBlockID() BlockID {
	return BlockID(rand.NewBlockID())
}

// NewTextID returns a fresh random text id.
func NewTextID() TextID {
	return TextID(rand.NewBlockID())
}

// ExternalTypeText marks a block whose ExternalID refers to a text entity.
const ExternalTypeText = "text"

// Block is one node of the document structure. Child order is not part of
// the record; the store keeps it in its children map.
type Block struct {
	ID           BlockID   `cbor:"id" json:"id"`
	Type         BlockType `cbor:"ty" json:"ty"`
	Parent       BlockID   `cbor:"parent" json:"parent"`
	Data         BlockData `cbor:"data,omitempty" json:"data,omitempty"`
	ExternalID   TextID    `cbor:"external_id,omitempty" json:"external_id,omitempty"`
	ExternalType string    `cbor:"external_type,omitempty" json:"external_type,omitempty"`
}

func (b Block) Clone() Block {
	b.Data = b.Data.Clone()
	return b
}

func (b Block) Kind() BlockKind {
	return KindOf(b.Type)
}

// HasText reports whether the block references a text entity.
func (b Block) HasText() bool {
	return b.ExternalID != ""
}
