// Package appflowy binds the pieces of a collaborative document together.
//
// # Session
//
// A [Session] owns one [sharedtree.Doc], the [editor.Editor] projected from
// it, the [translate.Translator] that keeps the two in step, and the
// [commands.Commands] the UI layer calls. Every entry point takes the
// session explicitly; there is no package-level document.
//
// The shared tree is the only source of truth. Commands and remote updates
// write to it, and the editable tree follows through change events. If the
// two ever disagree, [Session.Rebuild] re-translates the whole document.
//
// # Remote updates
//
// Updates produced by other peers are applied with [Session.ApplyRemote], or
// streamed with [Session.Run]. A session is not safe for concurrent use:
// Run applies updates on the calling goroutine, which must be the one that
// also issues commands.
package appflowy
