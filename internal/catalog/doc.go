// Package catalog provides the product-catalog collaborator: a postgres
// adapter for production, a JSON-file/in-memory adapter for development and
// tests, and a TTL cache that collapses concurrent lookups.
package catalog
