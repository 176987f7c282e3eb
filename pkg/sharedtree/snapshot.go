package sharedtree

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/internal/codec"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

const snapshotVersion = 1

// Snapshot is the complete persisted state of a document.
type Snapshot struct {
	Version  int                                 `cbor:"v" json:"v"`
	DocID    models.DocumentID                   `cbor:"doc" json:"doc"`
	PageID   models.BlockID                      `cbor:"page" json:"page"`
	Blocks   map[models.BlockID]models.Block     `cbor:"blocks" json:"blocks"`
	Children map[models.BlockID][]models.BlockID `cbor:"children" json:"children"`
	Texts    map[models.TextID]models.Text       `cbor:"texts" json:"texts"`
}

var wire codec.Codec = codec.CBOR{}

// Snapshot copies the current state.
func (d *Doc) Snapshot() Snapshot {
	st := d.st.clone()
	return Snapshot{
		Version:  snapshotVersion,
		DocID:    d.id,
		PageID:   st.page,
		Blocks:   st.blocks,
		Children: st.children,
		Texts:    st.texts,
	}
}

// FromSnapshot builds a document from s after validating it. Options are
// applied first; the snapshot's document id wins over WithDocumentID when set.
func FromSnapshot(s Snapshot, opts ...Option) (*Doc, error) {
	if s.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	d := newDoc(opts)
	if !s.DocID.IsNil() {
		d.id = s.DocID
	}
	st := &state{
		page:     s.PageID,
		blocks:   make(map[models.BlockID]models.Block, len(s.Blocks)),
		children: make(map[models.BlockID][]models.BlockID, len(s.Children)),
		texts:    make(map[models.TextID]models.Text, len(s.Texts)),
	}
	for id, b := range s.Blocks {
		st.blocks[id] = b.Clone()
	}
	for id, c := range s.Children {
		if len(c) > 0 {
			st.children[id] = append([]models.BlockID(nil), c...)
		}
	}
	for id, t := range s.Texts {
		st.texts[id] = t.Normalize()
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	d.pageID = st.page
	d.st = st
	return d, nil
}

// Validate checks the document invariants.
func (d *Doc) Validate() error {
	return d.st.validate()
}

func (d *Doc) EncodeSnapshot() ([]byte, error) {
	return wire.Marshal(d.Snapshot())
}

func DecodeSnapshot(data []byte, opts ...Option) (*Doc, error) {
	var s Snapshot
	if err := wire.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return FromSnapshot(s, opts...)
}

func EncodeUpdate(u Update) ([]byte, error) {
	return wire.Marshal(u)
}

func DecodeUpdate(data []byte) (Update, error) {
	var u Update
	if err := wire.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}
	return u, nil
}
