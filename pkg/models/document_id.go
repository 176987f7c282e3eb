package models

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// TagBinaryUUID is the registered CBOR tag for binary UUIDs.
const TagBinaryUUID = 37

// DocumentID identifies a document across peers.
//
// It encodes to CBOR as tag 37 over the 16 raw bytes and to JSON as the
// canonical string form.
type DocumentID struct {
	uuid.UUID
}

func NewDocumentID() DocumentID {
	return DocumentID{uuid.Must(uuid.NewV4())}
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return DocumentID{}, fmt.Errorf("invalid document id %q: %w", s, err)
	}
	return DocumentID{u}, nil
}

func (d DocumentID) IsNil() bool {
	return d.UUID == uuid.Nil
}

func (d DocumentID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  TagBinaryUUID,
		Content: d.Bytes(),
	})
}

func (d *DocumentID) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != TagBinaryUUID {
		return fmt.Errorf("unexpected tag number for document id: got %d, want %d", tag.Number, TagBinaryUUID)
	}

	bytes, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("document id tag content must be byte string, got %T", tag.Content)
	}

	parsed, err := uuid.FromBytes(bytes)
	if err != nil {
		return fmt.Errorf("failed to parse document id bytes: %w", err)
	}

	d.UUID = parsed
	return nil
}
