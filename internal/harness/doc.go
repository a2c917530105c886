// Package harness runs conformance scenarios against a live edit session.
//
// A scenario is a YAML file naming an initial document (delivered through
// a share link, as a recipient would open it), a list of UI steps and a
// list of assertions. Steps are submitted to the engine loop one at a
// time against a session backed by an in-memory SQLite template slot, a
// recording platform, sequential template ids and a fixed clock, so every
// run of a scenario produces the same snapshot.
//
// Snapshots are canonical JSON and compared against golden files under
// testdata/golden. To regenerate them, run:
//
//	go test ./internal/harness -update
package harness
