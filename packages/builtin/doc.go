// Package builtin provides the functions available inside {{...}} references.
//
// Available functions:
//   - uuid(): Random UUID v4
//   - now(): Current UTC time in RFC 3339
//   - date(layout): Current UTC date, "2006-01-02" by default
//   - timestamp(), timestampMs(): Unix time in seconds or milliseconds
//   - random(min, max): Random integer in the inclusive range
//   - randomString(length): Random alphanumeric string
//   - base64(value), base64Decode(value)
//   - sha256(value): Hex encoded digest
//   - urlEncode(value), urlDecode(value): Query component escaping
//   - env(name, default): Environment variable with an optional fallback
package builtin
