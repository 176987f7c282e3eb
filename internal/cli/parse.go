package cli

import (
	"flag"
	"fmt"
	"time"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

const usage = `subcommand required

Usage: appflowy-doc [flags] <command> [args]

Commands:
  inspect <file>          Print the block outline of a JSON or CBOR document
  convert <in> <out>      Convert between the JSON export format and CBOR snapshots
  push <file>             Store a document in the snapshot cache
  pull <doc-id>           Load a document from the snapshot cache
  sync <doc-id>           Join a document on a peer and print remote batches

Examples:
  appflowy-doc inspect welcome.json
  appflowy-doc -format cbor convert welcome.json welcome.snapshot
  appflowy-doc -redis redis://localhost:6379/0 push welcome.json
  appflowy-doc -o welcome.json pull 6f1c0c1e-8d6b-4d8e-9d7a-2f1f0f3b9f10
  appflowy-doc -url ws://localhost:8000/sync -save sync 6f1c0c1e-8d6b-4d8e-9d7a-2f1f0f3b9f10`

// Parse parses command line arguments into the command to execute and the
// configuration shared by all commands. Flags override the environment.
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("appflowy-doc", flag.ContinueOnError)

	var (
		format   = flagSet.String("format", "", "Output format: json or cbor (default: from the output file extension)")
		output   = flagSet.String("o", "", "Output file for pull (default: stdout)")
		docID    = flagSet.String("doc-id", "", "Document id to assign when reading the JSON format")
		ttl      = flagSet.Duration("ttl", constants.DefaultSnapshotTTL, "Lifetime of cached snapshots")
		save     = flagSet.Bool("save", false, "sync: store the final snapshot in the cache on exit")
		redisURL = flagSet.String("redis", "", "Redis URL (default: $REDIS_URL)")
		syncURL  = flagSet.String("url", "", "Collaboration peer WebSocket URL (default: $APPFLOWY_SYNC_URL)")
		logFile  = flagSet.String("log-file", "", "Append logs to this file instead of stderr (default: $APPFLOWY_LOG_FILE)")
		logLevel = flagSet.String("log-level", "", "Minimum log level (default: $APPFLOWY_LOG_LEVEL or info)")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf(usage)
	}

	want := func(n int) error {
		if len(rest)-1 != n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", rest[0], n, len(rest)-1)
		}
		return nil
	}

	var cmd Command
	switch rest[0] {
	case "inspect":
		if err := want(1); err != nil {
			return nil, nil, err
		}
		cmd = &InspectCommand{Input: rest[1]}
	case "convert":
		if err := want(2); err != nil {
			return nil, nil, err
		}
		cmd = &ConvertCommand{Input: rest[1], Output: rest[2]}
	case "push":
		if err := want(1); err != nil {
			return nil, nil, err
		}
		cmd = &PushCommand{Input: rest[1]}
	case "pull":
		if err := want(1); err != nil {
			return nil, nil, err
		}
		cmd = &PullCommand{DocID: rest[1]}
	case "sync":
		if err := want(1); err != nil {
			return nil, nil, err
		}
		cmd = &SyncCommand{DocID: rest[1], Save: *save}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: inspect, convert, push, pull, sync", rest[0])
	}

	switch *format {
	case "", FormatJSON, FormatCBOR:
	default:
		return nil, nil, fmt.Errorf("invalid format: %s (must be 'json' or 'cbor')", *format)
	}
	if *ttl <= 0 {
		return nil, nil, fmt.Errorf("invalid ttl: %s", *ttl)
	}

	config := &Config{
		Format:   *format,
		Output:   *output,
		DocID:    *docID,
		TTL:      *ttl,
		RedisURL: orEnv(*redisURL, "REDIS_URL", ""),
		SyncURL:  orEnv(*syncURL, "APPFLOWY_SYNC_URL", ""),
		LogFile:  orEnv(*logFile, "APPFLOWY_LOG_FILE", ""),
		LogLevel: orEnv(*logLevel, "APPFLOWY_LOG_LEVEL", "info"),
		Timeout:  10 * time.Second,
	}
	return cmd, config, nil
}

func orEnv(flagValue, key, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnv(key, defaultValue)
}
