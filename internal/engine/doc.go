// Package engine serializes session commands through a single-writer loop.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// A session is owned by one logical editor and is not safe for concurrent
// use. Input may still arrive from several goroutines (a stdin reader, a
// signal handler, a timer). The engine queues every command and runs them
// one at a time on the goroutine that called Run, so:
// - Commands never overlap
// - Commands run in submission order
// - Each command sees the snapshot the previous one left
//
// Command Flow:
// 1. Submit stamps the command with a seq number and enqueues it (FIFO)
// 2. Run dequeues one command at a time and executes it against the session
// 3. The outcome is delivered on the command's reply channel
//
// ERROR HANDLING: a failing or panicking command is logged and the loop
// continues with the next one. Commands are never retried.
package engine
