// Package auth guards the mutating REST routes with an API key read from a
// request header. Read-only routes, the stream and /metrics are not wrapped.
package auth
