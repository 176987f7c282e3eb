package remote_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenorg/AppFlowy-Web/internal/fakepeer"
	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/remote"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

func seededDoc(t *testing.T) *sharedtree.Doc {
	t.Helper()
	doc := sharedtree.New(sharedtree.WithPageID("page"))
	require.NoError(t, doc.Transact("seed", func(txn *sharedtree.Txn) error {
		return txn.InsertTextBlock(
			models.Block{ID: "a", Type: models.Paragraph, ExternalID: "a-text"},
			models.PlainText("Hello"), "page", 0)
	}))
	return doc
}

func startPeer(t *testing.T, docs ...*sharedtree.Doc) *fakepeer.Server {
	t.Helper()
	server := fakepeer.NewServer("127.0.0.1:0", nil)
	for _, d := range docs {
		require.NoError(t, server.Seed(d))
	}
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		if err := server.Stop(); err != nil {
			t.Errorf("failed to stop server: %v", err)
		}
	})
	return server
}

func connect(t *testing.T, server *fakepeer.Server) *remote.Client {
	t.Helper()
	c := remote.New(remote.Config{URL: server.URL(), Timeout: 5 * time.Second})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func TestJoinReturnsSnapshot(t *testing.T) {
	doc := seededDoc(t)
	server := startPeer(t, doc)
	c := connect(t, server)

	data, err := c.Join(context.Background(), doc.ID())
	require.NoError(t, err)

	got, err := sharedtree.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, doc.ID(), got.ID())
	assert.Equal(t, doc.Preorder(), got.Preorder())
	text, err := got.Text("a-text")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text.String())
}

func TestJoinUnknownDocument(t *testing.T) {
	server := startPeer(t)
	c := connect(t, server)

	_, err := c.Join(context.Background(), models.NewDocumentID())
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrSnapshotNotFound)
}

func TestPublishRelaysLocalBatches(t *testing.T) {
	doc := seededDoc(t)
	server := startPeer(t, doc)

	alice := connect(t, server)
	bob := connect(t, server)

	ctx := context.Background()
	aliceData, err := alice.Join(ctx, doc.ID())
	require.NoError(t, err)
	_, err = bob.Join(ctx, doc.ID())
	require.NoError(t, err)

	aliceDoc, err := sharedtree.DecodeSnapshot(aliceData, sharedtree.WithClientID("alice"))
	require.NoError(t, err)
	stop := alice.Publish(aliceDoc)
	defer stop()

	require.NoError(t, aliceDoc.Transact("type", func(txn *sharedtree.Txn) error {
		return txn.InsertText("a-text", 5, ", world", nil)
	}))

	select {
	case u, ok := <-bob.Updates():
		require.True(t, ok)
		assert.Equal(t, "alice", u.Client)
		assert.Equal(t, "type", u.Label)
		assert.Equal(t, doc.ID(), u.DocID)
	case <-time.After(5 * time.Second):
		t.Fatal("update was not relayed")
	}

	assert.Eventually(t, func() bool {
		snap, ok := server.Snapshot(doc.ID())
		return ok && snap.Texts["a-text"].String() == "Hello, world"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPublishSkipsRemoteBatches(t *testing.T) {
	doc := seededDoc(t)
	server := startPeer(t, doc)
	c := connect(t, server)

	data, err := c.Join(context.Background(), doc.ID())
	require.NoError(t, err)
	local, err := sharedtree.DecodeSnapshot(data)
	require.NoError(t, err)

	stop := c.Publish(local)
	defer stop()

	other, err := sharedtree.FromSnapshot(doc.Snapshot(), sharedtree.WithClientID("other"))
	require.NoError(t, err)
	var update sharedtree.Update
	other.Observe(func(b sharedtree.Batch) { update = b.Update })
	require.NoError(t, other.Transact("type", func(txn *sharedtree.Txn) error {
		return txn.InsertText("a-text", 0, ">", nil)
	}))

	require.NoError(t, local.ApplyUpdate(update))
	require.NoError(t, local.Transact("type", func(txn *sharedtree.Txn) error {
		return txn.InsertText("a-text", 0, "!", nil)
	}))

	assert.Eventually(t, func() bool {
		return server.Received(doc.ID()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		return server.Received(doc.ID()) > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestClose(t *testing.T) {
	doc := seededDoc(t)
	server := startPeer(t, doc)
	c := remote.New(remote.Config{URL: server.URL()})
	require.NoError(t, c.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))
	assert.True(t, c.IsClosed())

	_, err := c.Join(context.Background(), doc.ID())
	assert.ErrorIs(t, err, constants.ErrClosed)
	assert.ErrorIs(t, c.Send(context.Background(), sharedtree.Update{DocID: doc.ID()}), constants.ErrClosed)

	select {
	case _, ok := <-c.Updates():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("updates channel was not closed")
	}

	assert.NoError(t, c.Close(ctx), "second close is a no-op")
}

func TestConnectFailure(t *testing.T) {
	c := remote.New(remote.Config{URL: "ws://127.0.0.1:1/sync"})
	err := c.Connect(context.Background())
	assert.Error(t, err)
}
