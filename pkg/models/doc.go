// Package models holds the document data model shared by the store, the
// editor projection and the wire formats: blocks, their closed kind
// classification, block data maps, rich text runs and text deltas.
//
// Text offsets are counted in Unicode code points throughout.
package models
