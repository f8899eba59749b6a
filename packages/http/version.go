package http

import "strings"

// Version is the protocol version carried on the request line.
type Version int

const (
	HTTP10 Version = iota + 1
	HTTP11
	HTTP2
)

func (v Version) String() string {
	switch v {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	default:
		return "HTTP/?"
	}
}

// ParseVersion accepts "HTTP/1.0", "HTTP/1.1", "HTTP/2" and "HTTP/2.0",
// case-insensitively, as well as the bare numbers "1.0", "1.1" and "2".
// An empty string selects HTTP/1.1.
func ParseVersion(s string) (Version, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HTTP11, true
	}
	if len(s) >= 5 && strings.EqualFold(s[:5], "HTTP/") {
		s = s[5:]
	}
	switch s {
	case "1.0":
		return HTTP10, true
	case "1.1":
		return HTTP11, true
	case "2", "2.0":
		return HTTP2, true
	}
	return 0, false
}

// SupportsChunked reports whether a body may be framed without a
// Content-Length.
func (v Version) SupportsChunked() bool {
	return v == HTTP11 || v == HTTP2
}

func (v Version) valid() bool {
	return v >= HTTP10 && v <= HTTP2
}

func (v Version) major() int {
	if v == HTTP2 {
		return 2
	}
	return 1
}

func (v Version) minor() int {
	if v == HTTP11 {
		return 1
	}
	return 0
}
