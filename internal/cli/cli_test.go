package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenorg/AppFlowy-Web/internal/fakepeer"
	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/docjson"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/remote"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

const welcome = `{"document": {
  "page_id": "page",
  "blocks": {
    "page": {"id": "page", "ty": "page", "parent": "", "children": "page", "data": "{}"},
    "h": {"id": "h", "ty": "heading", "parent": "page", "children": "h", "data": "{\"level\":1}", "external_id": "th", "external_type": "text"},
    "l": {"id": "l", "ty": "bulleted_list", "parent": "page", "children": "l", "data": "{}", "external_id": "tl", "external_type": "text"},
    "p": {"id": "p", "ty": "paragraph", "parent": "l", "children": "p", "data": "{}", "external_id": "tp", "external_type": "text"},
    "d": {"id": "d", "ty": "divider", "parent": "page", "children": "d", "data": "{}"}
  },
  "meta": {
    "children_map": {"page": ["h", "l", "d"], "l": ["p"]},
    "text_map": {"th": "[{\"insert\":\"Welcome\"}]", "tl": "[{\"insert\":\"First\"}]", "tp": "[{\"insert\":\"Nested\"}]"}
  }
}}`

const welcomeOutline = `heading h "Welcome" [level=1]
bulleted_list l "First"
  paragraph p "Nested"
divider d
`

// syncBuffer is written by the command under test and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-log-level", "error"}, args...), &out)
	return out.String(), err
}

func TestParse(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://env:6379/0")
	t.Setenv("APPFLOWY_SYNC_URL", "ws://env/sync")
	t.Setenv("APPFLOWY_LOG_LEVEL", "")

	cmd, config, err := Parse([]string{"-format", "cbor", "convert", "a.json", "b.bin"})
	require.NoError(t, err)
	assert.Equal(t, &ConvertCommand{Input: "a.json", Output: "b.bin"}, cmd)
	assert.Equal(t, FormatCBOR, config.Format)
	assert.Equal(t, "redis://env:6379/0", config.RedisURL)
	assert.Equal(t, "ws://env/sync", config.SyncURL)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, constants.DefaultSnapshotTTL, config.TTL)

	cmd, config, err = Parse([]string{"-redis", "redis://flag:6379/1", "-save", "-ttl", "1h", "sync", "x"})
	require.NoError(t, err)
	assert.Equal(t, &SyncCommand{DocID: "x", Save: true}, cmd)
	assert.Equal(t, "redis://flag:6379/1", config.RedisURL)
	assert.Equal(t, time.Hour, config.TTL)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "subcommand required"},
		{"unknown command", []string{"serve"}, "unknown command: serve"},
		{"missing argument", []string{"inspect"}, "expected 1 argument(s), got 0"},
		{"extra argument", []string{"convert", "a", "b", "c"}, "expected 2 argument(s), got 3"},
		{"bad format", []string{"-format", "xml", "inspect", "a"}, "invalid format: xml"},
		{"bad ttl", []string{"-ttl", "0s", "push", "a"}, "invalid ttl"},
		{"unknown flag", []string{"-nope", "inspect", "a"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInspect(t *testing.T) {
	path := writeFile(t, "welcome.json", welcome)

	out, err := runCLI(t, "inspect", path)
	require.NoError(t, err)

	lines := strings.SplitN(out, "\n", 3)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "document "))
	assert.Equal(t, "page page, 5 blocks", lines[1])
	assert.Equal(t, welcomeOutline, lines[2])
}

func TestInspectRejectsBrokenFiles(t *testing.T) {
	_, err := runCLI(t, "inspect", writeFile(t, "broken.json", `{"document": {}}`))
	assert.ErrorIs(t, err, constants.ErrInvalidDocumentJSON)

	_, err = runCLI(t, "inspect", writeFile(t, "broken.bin", "\x01\x02"))
	assert.Error(t, err)

	_, err = runCLI(t, "inspect", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, "welcome.json", welcome)
	bin := filepath.Join(dir, "welcome.snapshot")
	back := filepath.Join(dir, "back.json")

	_, err := runCLI(t, "convert", in, bin)
	require.NoError(t, err)
	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	doc, err := sharedtree.DecodeSnapshot(data)
	require.NoError(t, err, "extension other than .json writes CBOR")

	_, err = runCLI(t, "convert", bin, back)
	require.NoError(t, err)
	data, err = os.ReadFile(back)
	require.NoError(t, err)
	again, err := docjson.Import(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Preorder(), again.Preorder())

	out, err := runCLI(t, "inspect", back)
	require.NoError(t, err)
	assert.Contains(t, out, welcomeOutline)
}

func TestPushPull(t *testing.T) {
	s := miniredis.RunT(t)
	redisURL := "redis://" + s.Addr()
	id := models.NewDocumentID()
	path := writeFile(t, "welcome.json", welcome)

	out, err := runCLI(t, "-redis", redisURL, "-doc-id", id.String(), "-ttl", "5m", "push", path)
	require.NoError(t, err)
	assert.Equal(t, id.String()+"\n", out)
	assert.Equal(t, 5*time.Minute, s.TTL("appflowy:snapshot:"+id.String()))

	out, err = runCLI(t, "-redis", redisURL, "pull", id.String())
	require.NoError(t, err)
	doc, err := docjson.Import([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Len())

	target := filepath.Join(t.TempDir(), "pulled.snapshot")
	_, err = runCLI(t, "-redis", redisURL, "-o", target, "pull", id.String())
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	doc, err = sharedtree.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID())

	_, err = runCLI(t, "-redis", redisURL, "pull", models.NewDocumentID().String())
	assert.ErrorIs(t, err, constants.ErrSnapshotNotFound)
}

func TestPushNeedsRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	_, err := runCLI(t, "push", writeFile(t, "welcome.json", welcome))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no redis url")
}

func TestSync(t *testing.T) {
	seed, err := docjson.Import([]byte(welcome))
	require.NoError(t, err)

	server := fakepeer.NewServer("127.0.0.1:0", nil)
	require.NoError(t, server.Seed(seed))
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })

	s := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{
			"-log-level", "error",
			"-url", server.URL(),
			"-redis", "redis://" + s.Addr(),
			"-save",
			"sync", seed.ID().String(),
		}, &out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "joined "+seed.ID().String()+": 5 blocks")
	}, 5*time.Second, 10*time.Millisecond)

	// A second peer edits the document.
	peer := remote.New(remote.Config{URL: server.URL()})
	require.NoError(t, peer.Connect(context.Background()))
	defer peer.Close(context.Background())
	data, err := peer.Join(context.Background(), seed.ID())
	require.NoError(t, err)
	doc, err := sharedtree.DecodeSnapshot(data, sharedtree.WithClientID("bob"))
	require.NoError(t, err)
	stop := peer.Publish(doc)
	defer stop()
	require.NoError(t, doc.Transact("delete_divider", func(txn *sharedtree.Txn) error {
		return txn.DeleteBlock("d")
	}))

	require.Eventually(t, func() bool {
		got := out.String()
		return strings.Contains(got, "delete_divider from bob: ") && strings.Contains(got, " events, 4 blocks")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync did not stop")
	}

	assert.True(t, s.Exists("appflowy:snapshot:"+seed.ID().String()), "final snapshot is saved")
}
