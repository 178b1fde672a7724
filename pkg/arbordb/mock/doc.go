// Package mock provides an in-memory emulation of the ArborDB REST surface:
// a hierarchical JSON tree addressed by slash paths, the range-query grammar
// (shallow, orderBy, bounds, limits), push-key generation and ETag-guarded
// conditional writes. The Store is exposed as an http.Handler for httptest
// servers and the sandbox binary, and as an in-process *http.Client for
// offline development without a listener.
package mock
