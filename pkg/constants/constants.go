package constants

import "time"

const (
	// BlockIDLength is the length of generated block and text ids.
	BlockIDLength = 10
	// RequestIDLength is the length of ids correlating remote requests and replies.
	RequestIDLength = 16

	DefaultWSTimeout    = 30 * time.Second
	DefaultSnapshotTTL  = 24 * time.Hour
	DefaultUpdateBuffer = 64
	CloseMessageCode    = 1000
)

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
)
