// Package satoken obtains and caches bearer tokens for ArborDB service
// accounts. A Provider exchanges an RS256-signed JWT assertion for an access
// token, keeps a single current token in memory, and de-duplicates concurrent
// refreshes so only one exchange is in flight at a time. An optional
// caller-supplied Cache lets multiple processes share one token; cache
// failures are logged and otherwise ignored.
package satoken
