// Package doc defines the document value model edited by plandeck.
//
// A document is an arbitrarily nested tree of Null, Bool, Number, String,
// Array and Object values. Value is a sealed interface: only the types in this
// package implement it, so every consumer can switch exhaustively.
//
// This package imports nothing internal. docpath, docstore, share and
// templates all build on it.
//
// Key constraints:
//   - Values are trees. There is no way to build a cycle.
//   - Numbers are finite (no NaN or Inf) since they must survive JSON.
//   - Strings are valid UTF-8. Canonical serialization never normalizes them,
//     so a share round-trip is byte-exact. Only Digest normalizes.
//   - Object key order is irrelevant; canonical output sorts keys by UTF-16
//     code units (RFC 8785).
package doc
