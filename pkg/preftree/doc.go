// Package preftree renders a hierarchical, depth-first result list into a
// nested view one batch at a time.
//
// Results arrive from a Backend as flat slices of Nodes ordered by a
// depth-first walk, each carrying its depth (Indent), a Match flag and a
// group key. The Controller turns those batches into a tree of panels,
// entries, child containers and collapsed "hidden" containers without
// re-rendering what is already on screen. It owns:
//   - the node registry, merging every node seen across batches,
//   - the placement rules that find where a node goes relative to the one
//     rendered before it,
//   - per-node expand/collapse state with lazy child loading,
//   - search and pagination bookkeeping, discarding responses that arrive
//     after a newer one has been applied.
//
// The Controller never performs I/O and is not safe for concurrent use.
// Operations that need data return a *Query; the host runs it against a
// Backend (see Run) on whatever goroutine it likes and hands the outcome
// back through Receive on the goroutine that owns the Controller.
//
// The visual tree lives behind the View interface. The memview subpackage
// provides a headless implementation used by the command line tools, the
// terminal explorer and tests.
package preftree
