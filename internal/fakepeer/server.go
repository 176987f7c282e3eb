// Package fakepeer provides an in-process collaboration server for tests.
//
// It speaks the sync protocol of pkg/remote over WebSocket using CBOR and
// keeps one server-side copy of every seeded document. A join answers with
// the current snapshot; an update is applied to that copy and relayed to
// every other connection that joined the same document.
//
// The WebSocket server is implemented using the `gws` library.
package fakepeer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/lxzan/gws"

	"github.com/serenorg/AppFlowy-Web/internal/codec"
	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/remote"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

type Server struct {
	addr     string
	listener net.Listener
	server   *gws.Server
	codec    codec.Codec
	log      logger.Logger

	mu      sync.Mutex
	docs    map[models.DocumentID]*sharedtree.Doc
	members map[models.DocumentID]map[*gws.Conn]struct{}
	joined  map[*gws.Conn]models.DocumentID
	// received counts update frames per document, accepted or not.
	received map[models.DocumentID]int
}

// Handler implements gws.Event for the server's connections.
type Handler struct {
	server *Server
}

// NewServer creates a server that will listen on addr once started.
// Use "127.0.0.1:0" to bind to a random available port.
func NewServer(addr string, log logger.Logger) *Server {
	s := &Server{
		addr:     addr,
		codec:    codec.CBOR{},
		log:      logger.OrNop(log),
		docs:     make(map[models.DocumentID]*sharedtree.Doc),
		members:  make(map[models.DocumentID]map[*gws.Conn]struct{}),
		joined:   make(map[*gws.Conn]models.DocumentID),
		received: make(map[models.DocumentID]int),
	}

	s.server = gws.NewServer(&Handler{server: s}, &gws.ServerOption{})
	s.server.OnError = func(_ net.Conn, err error) {
		if !isClosedError(err) {
			s.log.Error("server error", "error", err)
		}
	}
	return s
}

// Seed stores a copy of doc for clients to join.
func (s *Server) Seed(doc *sharedtree.Doc) error {
	cp, err := sharedtree.FromSnapshot(doc.Snapshot(), sharedtree.WithLogger(s.log))
	if err != nil {
		return fmt.Errorf("seed %s: %w", doc.ID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[cp.ID()] = cp
	return nil
}

// Snapshot returns the server's current copy of id.
func (s *Server) Snapshot(id models.DocumentID) (sharedtree.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return sharedtree.Snapshot{}, false
	}
	return d.Snapshot(), true
}

// Received returns how many update frames arrived for id.
func (s *Server) Received(id models.DocumentID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received[id]
}

// Start binds the listener and serves connections in the background.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.RunListener(listener); err != nil && !isClosedError(err) {
			s.log.Error("server error", "error", err)
		}
	}()
	return nil
}

// Stop closes the listener.
func (s *Server) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the WebSocket endpoint clients should dial.
func (s *Server) URL() string {
	return constants.WebsocketScheme + "://" + s.Address() + "/sync"
}

func (h *Handler) OnOpen(socket *gws.Conn) {}

func (h *Handler) OnClose(socket *gws.Conn, err error) {
	s := h.server
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.joined[socket]; ok {
		delete(s.members[id], socket)
		delete(s.joined, socket)
	}
}

func (h *Handler) OnPing(socket *gws.Conn, payload []byte) {
	if err := socket.WritePong(payload); err != nil {
		h.server.log.Error("failed to write pong", "error", err)
	}
}

func (h *Handler) OnPong(socket *gws.Conn, payload []byte) {}

func (h *Handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var msg remote.Message
	if err := h.server.codec.Unmarshal(message.Bytes(), &msg); err != nil {
		h.send(socket, remote.Message{Type: remote.TypeError, Error: "parse error: " + err.Error()})
		return
	}

	switch msg.Type {
	case remote.TypeJoin:
		h.handleJoin(socket, msg)
	case remote.TypeUpdate:
		h.handleUpdate(socket, msg)
	default:
		h.send(socket, remote.ErrorMessage(msg.ID, msg.DocID, constants.ErrUnsupportedMessage))
	}
}

func (h *Handler) handleJoin(socket *gws.Conn, msg remote.Message) {
	s := h.server
	s.mu.Lock()
	d, ok := s.docs[msg.DocID]
	if !ok {
		s.mu.Unlock()
		h.send(socket, remote.ErrorMessage(msg.ID, msg.DocID, constants.ErrSnapshotNotFound))
		return
	}
	data, err := d.EncodeSnapshot()
	if err == nil {
		if prev, ok := s.joined[socket]; ok {
			delete(s.members[prev], socket)
		}
		if s.members[msg.DocID] == nil {
			s.members[msg.DocID] = make(map[*gws.Conn]struct{})
		}
		s.members[msg.DocID][socket] = struct{}{}
		s.joined[socket] = msg.DocID
	}
	s.mu.Unlock()

	if err != nil {
		h.send(socket, remote.ErrorMessage(msg.ID, msg.DocID, err))
		return
	}
	h.send(socket, remote.Message{Type: remote.TypeSnapshot, ID: msg.ID, DocID: msg.DocID, Snapshot: data})
}

// handleUpdate applies the update and relays it while holding the lock, so
// every member sees updates in the order the server applied them.
func (h *Handler) handleUpdate(socket *gws.Conn, msg remote.Message) {
	s := h.server
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received[msg.DocID]++

	d, ok := s.docs[msg.DocID]
	if !ok || msg.Update == nil {
		h.send(socket, remote.ErrorMessage(msg.ID, msg.DocID, constants.ErrSnapshotNotFound))
		return
	}
	if err := d.ApplyUpdate(*msg.Update); err != nil {
		s.log.Warn("rejected update", "doc", msg.DocID.String(), "error", err)
		h.send(socket, remote.ErrorMessage(msg.ID, msg.DocID, err))
		return
	}

	relay := remote.Message{Type: remote.TypeUpdate, DocID: msg.DocID, Update: msg.Update}
	for member := range s.members[msg.DocID] {
		if member == socket {
			continue
		}
		h.send(member, relay)
	}
}

func (h *Handler) send(socket *gws.Conn, msg remote.Message) {
	data, err := h.server.codec.Marshal(msg)
	if err != nil {
		h.server.log.Error("failed to encode message", "type", string(msg.Type), "error", err)
		return
	}
	if err := socket.WriteMessage(gws.OpcodeBinary, data); err != nil {
		h.server.log.Error("failed to write message", "error", err)
	}
}

func isClosedError(err error) bool {
	return err != nil && (errors.Is(err, net.ErrClosed) ||
		strings.HasSuffix(err.Error(), "use of closed network connection"))
}
