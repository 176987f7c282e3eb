// Package remote carries document snapshots and update batches between a
// session and a collaboration peer over a WebSocket.
//
// The protocol is deliberately thin: a client joins a document and receives
// its snapshot, then both sides push update frames as transactions commit.
// A closed connection stays closed; to reconnect, create a new Client.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/serenorg/AppFlowy-Web/internal/codec"
	"github.com/serenorg/AppFlowy-Web/internal/rand"
	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

// DefaultDialer is the gorilla default dialer with compression enabled and
// the "cbor" subprotocol requested.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"cbor"},
}

type Config struct {
	// URL is the full WebSocket endpoint, e.g. ws://127.0.0.1:8000/sync.
	URL string
	// Timeout bounds how long Join waits for its reply. Zero means the
	// caller's context alone decides.
	Timeout time.Duration
	Logger  logger.Logger
	// Dialer overrides DefaultDialer.
	Dialer *gorilla.Dialer
}

type Client struct {
	url    string
	dialer *gorilla.Dialer
	codec  codec.Codec
	log    logger.Logger

	Timeout time.Duration

	conn *gorilla.Conn
	// connLock serializes writes and guards conn.
	connLock sync.Mutex

	responses     map[string]chan Message
	responsesLock sync.Mutex

	updates chan sharedtree.Update

	// connCloseCh is closed once, when the connection goes away for any
	// reason. It stops readLoop and fails pending and future requests.
	connCloseCh    chan struct{}
	closeOnce      sync.Once
	connCloseError error
	closed         atomic.Bool
}

func New(cfg Config) *Client {
	d := cfg.Dialer
	if d == nil {
		d = DefaultDialer
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = constants.DefaultWSTimeout
	}
	return &Client{
		url:         cfg.URL,
		dialer:      d,
		codec:       codec.CBOR{},
		log:         logger.OrNop(cfg.Logger),
		Timeout:     timeout,
		responses:   make(map[string]chan Message),
		updates:     make(chan sharedtree.Update, constants.DefaultUpdateBuffer),
		connCloseCh: make(chan struct{}),
	}
}

// Connect dials the peer and starts reading frames in the background.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return constants.ErrClosed
	}

	conn, res, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer res.Body.Close()

	c.connLock.Lock()
	c.conn = conn
	c.connLock.Unlock()

	go c.readLoop(conn)

	c.log.Debug("connected", "url", c.url)
	return nil
}

// IsClosed reports whether the connection has gone away.
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// Updates delivers update frames pushed by the peer, in arrival order. The
// channel is closed when the connection ends.
func (c *Client) Updates() <-chan sharedtree.Update {
	return c.updates
}

// Join subscribes to docID and returns its encoded snapshot.
func (c *Client) Join(ctx context.Context, docID models.DocumentID) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if err := c.ready(ctx); err != nil {
		return nil, err
	}

	id := rand.NewRequestID()
	ch, err := c.createResponseChannel(id)
	if err != nil {
		return nil, err
	}
	defer c.removeResponseChannel(id)

	if err := c.write(Message{Type: TypeJoin, ID: id, DocID: docID}); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: join %s", constants.ErrTimeout, docID)
		}
		return nil, ctx.Err()
	case <-c.connCloseCh:
		return nil, c.closeError()
	case msg := <-ch:
		if err := msg.Err(); err != nil {
			return nil, err
		}
		if msg.Type != TypeSnapshot {
			return nil, fmt.Errorf("%w: %q in reply to join", constants.ErrUnsupportedMessage, msg.Type)
		}
		return msg.Snapshot, nil
	}
}

// Send pushes one update frame to the peer.
func (c *Client) Send(ctx context.Context, u sharedtree.Update) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	return c.write(Message{Type: TypeUpdate, DocID: u.DocID, Update: &u})
}

// Publish sends every local batch committed on doc to the peer. Batches are
// queued by the observer and written by a background goroutine, so editing
// never waits on the network.
//
// The returned stop function unsubscribes from doc and must be called from
// the goroutine that owns doc.
func (c *Client) Publish(doc *sharedtree.Doc) (stop func()) {
	queue := make(chan sharedtree.Update, constants.DefaultUpdateBuffer)
	done := make(chan struct{})

	dispose := doc.Observe(func(b sharedtree.Batch) {
		if b.Origin != sharedtree.OriginLocal || len(b.Update.Ops) == 0 {
			return
		}
		select {
		case queue <- b.Update:
		case <-done:
		case <-c.connCloseCh:
		}
	})

	go func() {
		for {
			select {
			case u := <-queue:
				if err := c.Send(context.Background(), u); err != nil {
					c.log.Error("failed to publish update", "doc", u.DocID.String(), "label", u.Label, "error", err)
				}
			case <-done:
				return
			case <-c.connCloseCh:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			dispose()
			close(done)
		})
	}
}

// Close sends a close frame and releases the connection. The context bounds
// how long the close frame write may take; the socket is closed either way.
func (c *Client) Close(ctx context.Context) error {
	if c.closed.Load() {
		return nil
	}
	c.closeWithError(constants.ErrClosed)

	c.connLock.Lock()
	defer c.connLock.Unlock()

	conn := c.conn
	c.conn = nil
	if conn == nil {
		return nil
	}

	writeErr := make(chan error, 1)
	go func() {
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetWriteDeadline(deadline); err != nil {
				writeErr <- err
				return
			}
		}
		writeErr <- conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(constants.CloseMessageCode, ""))
	}()

	select {
	case err := <-writeErr:
		if err != nil {
			c.log.Error("failed to write close message", "error", err)
		}
	case <-ctx.Done():
	}

	return conn.Close()
}

func (c *Client) ready(ctx context.Context) error {
	select {
	case <-c.connCloseCh:
		return c.closeError()
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (c *Client) write(msg Message) error {
	data, err := c.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msg.Type, err)
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.conn == nil {
		return c.closeError()
	}
	err = c.conn.WriteMessage(gorilla.BinaryMessage, data)
	if errors.Is(err, gorilla.ErrCloseSent) {
		c.closeWithError(err)
	}
	return err
}

func (c *Client) closeWithError(err error) {
	c.closeOnce.Do(func() {
		c.connCloseError = err
		c.closed.Store(true)
		close(c.connCloseCh)
	})
}

func (c *Client) closeError() error {
	<-c.connCloseCh
	if c.connCloseError == nil {
		return constants.ErrClosed
	}
	return fmt.Errorf("%w: %w", constants.ErrClosed, c.connCloseError)
}

func (c *Client) createResponseChannel(id string) (chan Message, error) {
	c.responsesLock.Lock()
	defer c.responsesLock.Unlock()

	if _, ok := c.responses[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}
	ch := make(chan Message, 1)
	c.responses[id] = ch
	return ch, nil
}

func (c *Client) removeResponseChannel(id string) {
	c.responsesLock.Lock()
	defer c.responsesLock.Unlock()
	delete(c.responses, id)
}

func (c *Client) responseChannel(id string) (chan Message, bool) {
	c.responsesLock.Lock()
	defer c.responsesLock.Unlock()
	ch, ok := c.responses[id]
	return ch, ok
}

// readLoop runs until the connection fails or is closed. Updates are
// handled inline so that they reach Updates in the order they arrived.
func (c *Client) readLoop(conn *gorilla.Conn) {
	defer close(c.updates)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleError(err)
			c.closeWithError(err)
			return
		}

		var msg Message
		if err := c.codec.Unmarshal(data, &msg); err != nil {
			c.log.Error("failed to decode message", "error", err)
			continue
		}

		if !c.handleMessage(msg) {
			return
		}
	}
}

func (c *Client) handleError(err error) {
	switch {
	case errors.Is(err, net.ErrClosed), c.closed.Load():
	case gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway):
		c.log.Debug("peer closed the connection", "error", err)
	default:
		c.log.Error("connection lost", "error", err)
	}
}

// handleMessage routes one frame and reports whether reading should go on.
func (c *Client) handleMessage(msg Message) bool {
	if msg.ID != "" {
		ch, ok := c.responseChannel(msg.ID)
		if !ok {
			c.log.Error("unavailable response channel", "id", msg.ID, "type", string(msg.Type))
			return true
		}
		ch <- msg
		return true
	}

	switch msg.Type {
	case TypeUpdate:
		if msg.Update == nil {
			c.log.Warn("update frame without payload", "doc", msg.DocID.String())
			return true
		}
		select {
		case c.updates <- *msg.Update:
			return true
		case <-c.connCloseCh:
			return false
		}
	case TypeError:
		c.log.Error("peer reported an error", "doc", msg.DocID.String(), "error", msg.Error)
	default:
		c.log.Warn(constants.ErrUnsupportedMessage.Error(), "type", string(msg.Type))
	}
	return true
}
