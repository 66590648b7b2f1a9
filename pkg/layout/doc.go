// Package layout computes positioned nodes and styled edges for compliance
// rule-base graphs.
//
// The engine is one pure function: given an immutable domain graph and the
// set of currently-expanded group IDs, Compute returns a non-overlapping 2-D
// position for every visible node and the edge set consistent with the
// expand state. Re-running with identical inputs yields byte-identical
// output, so the function can be invoked on every user interaction.
//
// # Pipeline
//
// Compute composes four stages:
//
//  1. Classify: partition country groups into origin, receiving, both, and
//     unconnected using edge relationship tags.
//  2. Columns: assign fixed horizontal bands (group, country, rule) or
//     named collapsible lanes.
//  3. Pack: assign non-overlapping vertical offsets per column, reconciling
//     the group and country columns where an expanded group makes one
//     taller than the other.
//  4. Synthesize: emit direct group↔rule edges for collapsed groups, or
//     group→country→rule chains for expanded ones.
//
// # Error Policy
//
// The engine never fails a layout pass. Malformed payloads get defensive
// defaults, edges referencing absent nodes are dropped before rendering,
// and unknown node variants fall back to label-only placement. A broken
// frame is worse than a slightly-wrong one.
//
// # Concurrency
//
// Compute is synchronous, allocation-local, and safe for concurrent use:
// it closes over no mutable state. ExpandState is the only mutable input
// and snapshots itself atomically on read.
package layout
