package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	appflowy "github.com/serenorg/AppFlowy-Web"
	"github.com/serenorg/AppFlowy-Web/pkg/docjson"
	"github.com/serenorg/AppFlowy-Web/pkg/editor"
	"github.com/serenorg/AppFlowy-Web/pkg/logger"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/remote"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
	"github.com/serenorg/AppFlowy-Web/pkg/snapshot"
)

const (
	FormatJSON = "json"
	FormatCBOR = "cbor"

	filePermission = 0o644
)

// Config holds the settings shared by every command.
type Config struct {
	// Format selects the encoding written by convert and pull. Empty means
	// decide from the output file extension.
	Format string
	Output string
	DocID  string
	TTL    time.Duration

	RedisURL string
	SyncURL  string

	LogFile  string
	LogLevel string

	// Timeout bounds remote requests and the close handshake.
	Timeout time.Duration
}

// App runs commands against one configuration.
type App struct {
	config *Config
	log    *logger.ZeroLogger
	out    io.Writer
	cache  *snapshot.RedisCache
}

// New builds the file or stderr logger. Connections to Redis and to peers
// are opened by the commands that need them.
func New(config *Config, out io.Writer) (*App, error) {
	build := logger.Build().WithLevel(config.LogLevel)
	if config.LogFile != "" {
		build = build.FromPath(config.LogFile)
	} else {
		build = build.FromWriter(os.Stderr)
	}
	log, err := build.Make()
	if err != nil {
		return nil, err
	}
	return &App{config: config, log: log, out: out}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.log.Close())
	return errors.Join(errs...)
}

func (a *App) snapshots() (*snapshot.RedisCache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	if a.config.RedisURL == "" {
		return nil, errors.New("no redis url: set -redis or REDIS_URL")
	}
	c, err := snapshot.NewRedisCache(a.config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.cache = c
	return c, nil
}

func (a *App) Inspect(_ context.Context, c *InspectCommand) error {
	doc, err := a.readDoc(c.Input)
	if err != nil {
		return err
	}

	s := appflowy.New(doc, appflowy.WithLogger(a.log))
	defer s.Close()

	fmt.Fprintf(a.out, "document %s\npage %s, %d blocks\n", doc.ID(), doc.PageID(), doc.Len())
	writeOutline(a.out, s.Editor().Children(), 0)
	return nil
}

func writeOutline(w io.Writer, nodes []*editor.Node, depth int) {
	for _, n := range nodes {
		if !n.IsBlock() {
			continue
		}
		line := strings.Repeat("  ", depth) + string(n.Type) + " " + string(n.BlockID)
		if n.TextChild() != nil {
			line += fmt.Sprintf(" %q", n.String())
		}
		if len(n.Data) > 0 {
			line += " " + formatData(n.Data)
		}
		fmt.Fprintln(w, line)
		writeOutline(w, n.ChildBlocks(), depth+1)
	}
}

func formatData(d models.BlockData) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, d[k])
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a *App) Convert(_ context.Context, c *ConvertCommand) error {
	doc, err := a.readDoc(c.Input)
	if err != nil {
		return err
	}
	data, err := encodeDoc(doc, a.format(c.Output))
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Output, data, filePermission); err != nil {
		return err
	}
	a.log.Info("converted document", "doc", doc.ID().String(), "from", c.Input, "to", c.Output)
	return nil
}

func (a *App) Push(ctx context.Context, c *PushCommand) error {
	doc, err := a.readDoc(c.Input)
	if err != nil {
		return err
	}
	cache, err := a.snapshots()
	if err != nil {
		return err
	}
	if err := cache.SaveDoc(ctx, doc, a.config.TTL); err != nil {
		return err
	}
	fmt.Fprintln(a.out, doc.ID())
	return nil
}

func (a *App) Pull(ctx context.Context, c *PullCommand) error {
	id, err := models.ParseDocumentID(c.DocID)
	if err != nil {
		return err
	}
	cache, err := a.snapshots()
	if err != nil {
		return err
	}
	doc, err := cache.LoadDoc(ctx, id, sharedtree.WithLogger(a.log))
	if err != nil {
		return err
	}
	data, err := encodeDoc(doc, a.format(a.config.Output))
	if err != nil {
		return err
	}
	if a.config.Output == "" {
		_, err = a.out.Write(data)
		return err
	}
	return os.WriteFile(a.config.Output, data, filePermission)
}

// Sync returns nil when ctx is cancelled or the peer closes the connection.
func (a *App) Sync(ctx context.Context, c *SyncCommand) error {
	if a.config.SyncURL == "" {
		return errors.New("no peer url: set -url or APPFLOWY_SYNC_URL")
	}
	id, err := models.ParseDocumentID(c.DocID)
	if err != nil {
		return err
	}

	client := remote.New(remote.Config{URL: a.config.SyncURL, Timeout: a.config.Timeout, Logger: a.log})
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), a.config.Timeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			a.log.Warn("failed to close connection", "error", err)
		}
	}()

	data, err := client.Join(ctx, id)
	if err != nil {
		return err
	}
	s, err := appflowy.Open(data, appflowy.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer s.Close()

	dispose := s.Doc().Observe(func(b sharedtree.Batch) {
		if b.Origin != sharedtree.OriginRemote {
			return
		}
		a.log.Info("applied remote batch", "label", b.Label, "client", b.Update.Client, "events", len(b.Events))
		fmt.Fprintf(a.out, "%s from %s: %d events, %d blocks\n", b.Label, b.Update.Client, len(b.Events), s.Doc().Len())
	})
	defer dispose()

	fmt.Fprintf(a.out, "joined %s: %d blocks\n", id, s.Doc().Len())

	err = s.Run(ctx, client.Updates())
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if c.Save {
		cache, cerr := a.snapshots()
		if cerr == nil {
			cerr = cache.SaveDoc(context.Background(), s.Doc(), a.config.TTL)
		}
		if cerr != nil {
			return errors.Join(err, fmt.Errorf("save snapshot: %w", cerr))
		}
		a.log.Info("saved snapshot", "doc", id.String())
	}
	return err
}

func (a *App) format(output string) string {
	if a.config.Format != "" {
		return a.config.Format
	}
	if output == "" || strings.EqualFold(filepath.Ext(output), ".json") {
		return FormatJSON
	}
	return FormatCBOR
}

func (a *App) readDoc(path string) (*sharedtree.Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := []sharedtree.Option{sharedtree.WithLogger(a.log)}
	if a.config.DocID != "" {
		id, err := models.ParseDocumentID(a.config.DocID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sharedtree.WithDocumentID(id))
	}

	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		doc, err := docjson.Import(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return doc, nil
	}
	doc, err := sharedtree.DecodeSnapshot(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func encodeDoc(doc *sharedtree.Doc, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return docjson.Export(doc, docjson.WithIndent("  "))
	case FormatCBOR:
		return doc.EncodeSnapshot()
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
