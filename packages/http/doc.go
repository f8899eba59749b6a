// Package http builds validated, immutable HTTP requests and sends them.
//
// Requests come from Build or the fluent Builder. Both check the method,
// URL, version, headers and body framing in that order and stop at the
// first problem, reporting it as a *reqerr.Error.
//
// Client adapts net/http as the transport:
//   - Configurable timeouts
//   - Redirect handling
//   - Proxy and TLS verification settings
//   - Token bucket rate limiting
//   - Request ID stamping
//   - Response contract checks (status codes and JSON schema)
package http
