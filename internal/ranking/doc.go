// Package ranking implements the vote aggregation and live ranking core:
// the authoritative vote ledger, the incrementally maintained per-product
// stats, the debounced per-category ranking engine, the active-user
// tracker, and the service façade external callers use.
//
// The engine runs as a single actor goroutine; ledger, aggregator, and
// cached rankings are touched only from that goroutine. The façade resolves
// catalog lookups in the caller's goroutine and never inside the actor.
package ranking
