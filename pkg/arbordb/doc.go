// Package arbordb is a client for the ArborDB REST API, a remote hierarchical
// JSON store addressed by slash-delimited paths. The Client wraps the raw
// surface (GET/PUT/PATCH/POST/DELETE plus the range-query grammar) with typed
// primitives, cursor-based pagination over key-ordered queries, derived query
// helpers and a concurrent batch dispatcher. Requests are authenticated with
// bearer tokens from a caller-supplied TokenSource, typically a
// satoken.Provider.
package arbordb
