// Package database provides SQLite-based access to analysis snapshots.
//
// Upstream inference pipelines store each analysed subject in a snapshot
// database laid out by Schema: samples, variants and their per-sample calls,
// the pairwise similarity and distance matrices, and the putative artifacts
// of the inferred phylogeny. SnapshotDB reads an analysis back into the
// model types the report is rendered from.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. A study-wide snapshot can be opened read-only by several renders
package database
