// Package httpurl parses and validates http and https URLs into an immutable,
// structured URL value.
//
// It provides:
//   - Parse, which either returns a fully valid URL or a *ParseError
//   - Ordered query parameters (duplicates preserved)
//   - Percent-encoding helpers (Encode, Decode, EncodeQueryComponent)
//   - Canonical re-serialization through URL.String
//
// Parsing is a pure string transform; no DNS or network access happens here.
package httpurl
