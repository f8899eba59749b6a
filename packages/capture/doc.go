// Package capture extracts named values from HTTP responses.
//
// It supports capturing values from:
//   - Response body (gjson paths)
//   - Response headers
//   - Response status code
//   - Response duration
//
// Captures are written as "[name=]source[:path]", for example
// "id=body:data.items.0.id" or "header:X-Request-Id".
package capture
