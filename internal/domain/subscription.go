package domain

// Listener receives one coalesced notification per flush cycle covering the
// union of categories whose rankings changed since the last cycle. A
// listener must not assume any ordering relative to other listeners.
type Listener func(categories []string)

// Notifier is the mutation-side view of the subscription bus.
type Notifier interface {
	Notify(categories []string)
}
