// Package sharedtree is the in-memory shared document store: a page root
// owning a block map, an ordered children map and a text map.
//
// All mutations happen inside transactions. When a transaction commits,
// observers receive one Batch holding the change events (tagged with the
// paths "blocks", "blocks/<id>" and "meta/text_map/<id>") and the
// serialized operations that reproduce the transaction on another peer.
//
// A Doc is not safe for concurrent use.
package sharedtree

import (
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

// Origin tells observers where a batch came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

type Doc struct {
	id       models.DocumentID
	clientID string
	pageID   models.BlockID
	st       *state

	txn         *Txn
	observers   []observer
	nextObs     int
	dispatching bool
	pending     []deferred

	log logger.Logger
}

type Option func(*Doc)

func WithLogger(l logger.Logger) Option {
	return func(d *Doc) {
		d.log = logger.OrNop(l)
	}
}

func WithDocumentID(id models.DocumentID) Option {
	return func(d *Doc) {
		d.id = id
	}
}

func WithPageID(id models.BlockID) Option {
	return func(d *Doc) {
		d.pageID = id
	}
}

// WithClientID tags outbound updates with the local peer id.
func WithClientID(id string) Option {
	return func(d *Doc) {
		d.clientID = id
	}
}

// New creates an empty document holding only its page root.
func New(opts ...Option) *Doc {
	d := newDoc(opts)
	if d.pageID == "" {
		d.pageID = models.NewBlockID()
	}
	d.st = newState(d.pageID)
	return d
}

func newDoc(opts []Option) *Doc {
	d := &Doc{log: logger.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.id.IsNil() {
		d.id = models.NewDocumentID()
	}
	return d
}

func (d *Doc) ID() models.DocumentID {
	return d.id
}

func (d *Doc) ClientID() string {
	return d.clientID
}

func (d *Doc) PageID() models.BlockID {
	return d.st.page
}

// Block returns a copy of the block record.
func (d *Doc) Block(id models.BlockID) (models.Block, error) {
	b, ok := d.st.blocks[id]
	if !ok {
		return models.Block{}, fmt.Errorf("%w: %s", constants.ErrBlockNotFound, id)
	}
	return b.Clone(), nil
}

func (d *Doc) Contains(id models.BlockID) bool {
	_, ok := d.st.blocks[id]
	return ok
}

func (d *Doc) Parent(id models.BlockID) (models.BlockID, error) {
	b, ok := d.st.blocks[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", constants.ErrBlockNotFound, id)
	}
	return b.Parent, nil
}

// ChildrenOrder returns a copy of the ordered child ids of id.
func (d *Doc) ChildrenOrder(id models.BlockID) []models.BlockID {
	return append([]models.BlockID(nil), d.st.children[id]...)
}

// IndexOf returns the position of id among its siblings.
func (d *Doc) IndexOf(id models.BlockID) (int, error) {
	b, ok := d.st.blocks[id]
	if !ok {
		return -1, fmt.Errorf("%w: %s", constants.ErrBlockNotFound, id)
	}
	if id == d.st.page {
		return 0, nil
	}
	return d.st.indexOf(b.Parent, id)
}

// Text returns a copy of the text runs.
func (d *Doc) Text(id models.TextID) (models.Text, error) {
	t, ok := d.st.texts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrTextNotFound, id)
	}
	return t.Clone(), nil
}

// Len returns the number of blocks, the page included.
func (d *Doc) Len() int {
	return len(d.st.blocks)
}

// Preorder lists every block below the page in document order.
func (d *Doc) Preorder() []models.BlockID {
	return d.st.descendants(d.st.page)
}

// Descendants lists the blocks below id in document order.
func (d *Doc) Descendants(id models.BlockID) []models.BlockID {
	return d.st.descendants(id)
}

// Ancestors returns the parent chain of id, nearest first, ending at the page.
func (d *Doc) Ancestors(id models.BlockID) []models.BlockID {
	var out []models.BlockID
	seen := map[models.BlockID]struct{}{id: {}}
	for {
		b, ok := d.st.blocks[id]
		if !ok || b.Parent == "" {
			return out
		}
		if _, loop := seen[b.Parent]; loop {
			return out
		}
		seen[b.Parent] = struct{}{}
		out = append(out, b.Parent)
		id = b.Parent
	}
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (d *Doc) IsAncestor(anc, id models.BlockID) bool {
	for _, a := range d.Ancestors(id) {
		if a == anc {
			return true
		}
	}
	return false
}
