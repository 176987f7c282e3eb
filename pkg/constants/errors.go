package constants

import "errors"

// Store errors
var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrParentNotFound   = errors.New("parent block not found")
	ErrTextNotFound     = errors.New("text not found")
	ErrBlockExists      = errors.New("block already exists")
	ErrTextExists       = errors.New("text already exists")
	ErrRootImmutable    = errors.New("page root cannot be moved or deleted")
	ErrCycle            = errors.New("block cannot be moved into its own subtree")
	ErrInvalidIndex     = errors.New("child index out of range")
	ErrInvalidDelta     = errors.New("delta does not fit the text")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrDocumentMismatch = errors.New("update belongs to a different document")
	ErrCorruptDocument  = errors.New("document structure is inconsistent")
)

// Editor errors
var (
	ErrInvalidPath      = errors.New("path does not resolve to a node")
	ErrNotBlock         = errors.New("node is not a block")
	ErrNotText          = errors.New("node is not a text")
	ErrNoSelection      = errors.New("no selection")
	ErrNoValidSelection = errors.New("document has no valid selection")
	ErrPasteRejected    = errors.New("paste is not allowed here")
)

// Transport and cache errors
var (
	ErrClosed             = errors.New("closed")
	ErrTimeout            = errors.New("timeout")
	ErrIDInUse            = errors.New("id already in use")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrUnsupportedMessage = errors.New("unsupported message")
	ErrNoMarshaler        = errors.New("marshaler is not set")
	ErrNoUnmarshaler      = errors.New("unmarshaler is not set")
)

// Format errors
var (
	ErrInvalidDocumentJSON = errors.New("invalid document json")
)
