// Package journal persists the live vote per (user, product) pair outside
// the vote critical path. The Writer drains a buffered channel in a
// background goroutine; the engine never waits on the store. The redis
// implementation backs process restarts, the memory implementation backs
// tests and journal-less runs.
package journal
