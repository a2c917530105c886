// Package store provides durable keyed slots for plandeck.
//
// A slot holds one string value under a string key, the same contract as a
// browser's local storage. Two implementations satisfy it:
//   - Store: SQLite-backed, used by the CLI
//   - Memory: in-process map with failure injection, used in tests
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection: SQLite has a single writer
//
// Every Set replaces the whole value and bumps the slot's revision.
package store
