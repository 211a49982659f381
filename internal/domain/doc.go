// Package domain contains the core types and boundary interfaces of the
// vote aggregation and ranking engine. It depends on no other internal
// package; everything else depends on it.
package domain
