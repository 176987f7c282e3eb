// Package cli implements appflowy-doc, a developer tool for looking at,
// converting, caching and following collaborative documents.
//
// # Command Line Usage
//
//	appflowy-doc [flags] <inspect|convert|push|pull|sync> [args]
//
// # Environment Variables
//
//	REDIS_URL           - snapshot cache used by push, pull and sync -save
//	APPFLOWY_SYNC_URL   - collaboration peer used by sync (e.g. ws://localhost:8000/sync)
//	APPFLOWY_LOG_FILE   - append logs to this file instead of stderr
//	APPFLOWY_LOG_LEVEL  - minimum log level (default: info)
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Main parses args and runs the command, writing results to stdout. It can
// be called directly from tests without building the binary.
func Main(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(config, out)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *InspectCommand:
		err = app.Inspect(ctx, c)
	case *ConvertCommand:
		err = app.Convert(ctx, c)
	case *PushCommand:
		err = app.Push(ctx, c)
	case *PullCommand:
		err = app.Pull(ctx, c)
	case *SyncCommand:
		err = app.Sync(ctx, c)
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}
	return nil
}
