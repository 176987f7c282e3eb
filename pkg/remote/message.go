package remote

import (
	"errors"
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// MessageType names a frame of the sync protocol.
type MessageType string

const (
	// TypeJoin asks the peer for the current snapshot of DocID and subscribes
	// the connection to its updates.
	TypeJoin MessageType = "join"
	// TypeSnapshot answers a join with the encoded snapshot.
	TypeSnapshot MessageType = "snapshot"
	// TypeUpdate carries one committed transaction. It flows both ways.
	TypeUpdate MessageType = "update"
	// TypeError answers a request that could not be served.
	TypeError MessageType = "error"
)

// Message is one CBOR frame on the wire. ID correlates a join with its reply
// and is empty for pushed updates.
type Message struct {
	Type     MessageType        `cbor:"type"`
	ID       string             `cbor:"id,omitempty"`
	DocID    models.DocumentID  `cbor:"doc"`
	Snapshot []byte             `cbor:"snapshot,omitempty"`
	Update   *sharedtree.Update `cbor:"update,omitempty"`
	Error    string             `cbor:"error,omitempty"`
}

// ErrorMessage builds the reply to request id carrying err.
func ErrorMessage(id string, docID models.DocumentID, err error) Message {
	return Message{Type: TypeError, ID: id, DocID: docID, Error: err.Error()}
}

// known lets a peer's error text be matched again with errors.Is.
var known = []error{
	constants.ErrSnapshotNotFound,
	constants.ErrDocumentMismatch,
	constants.ErrUnsupportedMessage,
}

// Err returns the error carried by m, or nil.
func (m Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	for _, k := range known {
		if m.Error == k.Error() {
			return fmt.Errorf("%w: doc %s", k, m.DocID)
		}
	}
	return errors.New(m.Error)
}
