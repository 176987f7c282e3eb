package appflowy

import (
	"context"
	"errors"
	"fmt"

	"github.com/serenorg/AppFlowy-Web/pkg/commands"
	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
	"github.com/serenorg/AppFlowy-Web/pkg/translate"
)

type options struct {
	log      logger.Logger
	clientID string
	opener   commands.ViewOpener
}

type Option func(*options)

func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithClientID tags local updates of documents opened from a snapshot.
func WithClientID(id string) Option {
	return func(o *options) {
		o.clientID = id
	}
}

func WithViewOpener(v commands.ViewOpener) Option {
	return func(o *options) {
		o.opener = v
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = logger.OrNop(o.log)
	return o
}

type Session struct {
	doc     *sharedtree.Doc
	ed      *editor.Editor
	tr      *translate.Translator
	cmd     *commands.Commands
	log     logger.Logger
	dispose func()
	closed  bool
}

// New starts a session over an existing document and translates it once.
func New(doc *sharedtree.Doc, opts ...Option) *Session {
	return newSession(doc, buildOptions(opts))
}

func newSession(doc *sharedtree.Doc, o options) *Session {
	ed := editor.New()
	s := &Session{
		doc: doc,
		ed:  ed,
		tr:  translate.New(doc, ed, o.log),
		log: o.log,
	}
	cmdOpts := []commands.Option{commands.WithLogger(o.log)}
	if o.opener != nil {
		cmdOpts = append(cmdOpts, commands.WithViewOpener(o.opener))
	}
	s.cmd = commands.New(doc, ed, cmdOpts...)
	s.tr.Rebuild()
	s.dispose = s.tr.Attach()
	return s
}

// Open decodes a CBOR snapshot and starts a session over it.
func Open(snapshot []byte, opts ...Option) (*Session, error) {
	o := buildOptions(opts)
	doc, err := sharedtree.DecodeSnapshot(snapshot,
		sharedtree.WithLogger(o.log),
		sharedtree.WithClientID(o.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return newSession(doc, o), nil
}

func (s *Session) Doc() *sharedtree.Doc {
	return s.doc
}

func (s *Session) Editor() *editor.Editor {
	return s.ed
}

func (s *Session) Commands() *commands.Commands {
	return s.cmd
}

// ApplyRemote applies one batch produced by another peer.
func (s *Session) ApplyRemote(u sharedtree.Update) error {
	if s.closed {
		return constants.ErrClosed
	}
	return s.doc.ApplyUpdate(u)
}

// Run applies updates until ctx is done or the channel is closed. A batch
// that fails to apply is logged and skipped, except for a batch addressed
// to another document, which stops the loop.
func (s *Session) Run(ctx context.Context, updates <-chan sharedtree.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			err := s.ApplyRemote(u)
			switch {
			case err == nil:
			case errors.Is(err, constants.ErrDocumentMismatch), errors.Is(err, constants.ErrClosed):
				return err
			default:
				s.log.Error("failed to apply remote update", "label", u.Label, "client", u.Client, "error", err)
			}
		}
	}
}

// Rebuild discards the editable tree and translates the document again.
func (s *Session) Rebuild() {
	s.tr.Rebuild()
}

// Snapshot encodes the current document.
func (s *Session) Snapshot() ([]byte, error) {
	return s.doc.EncodeSnapshot()
}

// Close detaches the translator. The document stays usable on its own.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.dispose()
}
