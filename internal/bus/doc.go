// Package bus implements the subscription fan-out: observers register a
// listener and receive one coalesced notification per flush cycle covering
// every category whose ranking changed. The bus runs as an actor goroutine,
// so each subscriber sees notifications in commit order; a panicking
// listener is isolated and never blocks delivery to the others or the
// mutation path.
package bus
