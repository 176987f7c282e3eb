package cli

// Command is one subcommand of appflowy-doc together with its arguments.
// Parse builds it and Main dispatches on its concrete type.
type Command interface {
	// Name returns the subcommand as typed on the command line.
	Name() string
}

// InspectCommand prints the block outline of a document file.
//
// The file may hold either the JSON export format or a CBOR snapshot; the
// encoding is detected from the content. The outline is rendered from the
// editable tree, so it shows exactly what an editor would.
//
//	appflowy-doc inspect welcome.json
type InspectCommand struct {
	Input string
}

func (c *InspectCommand) Name() string {
	return "inspect"
}

// ConvertCommand rewrites a document file in another encoding.
//
//	appflowy-doc -format cbor convert welcome.json welcome.snapshot
//	appflowy-doc convert welcome.snapshot welcome.json
type ConvertCommand struct {
	Input  string
	Output string
}

func (c *ConvertCommand) Name() string {
	return "convert"
}

// PushCommand stores a document file in the snapshot cache and prints the
// id it was stored under.
type PushCommand struct {
	Input string
}

func (c *PushCommand) Name() string {
	return "push"
}

// PullCommand loads a document from the snapshot cache and writes it to the
// output file, or to stdout.
type PullCommand struct {
	DocID string
}

func (c *PullCommand) Name() string {
	return "pull"
}

// SyncCommand joins a document on a collaboration peer and prints every
// remote batch as it is applied, until interrupted.
type SyncCommand struct {
	DocID string
	// Save stores the final snapshot in the cache on exit.
	Save bool
}

func (c *SyncCommand) Name() string {
	return "sync"
}
