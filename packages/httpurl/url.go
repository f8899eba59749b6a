package httpurl

import (
	"strconv"
	"strings"
)

// Scheme is one of the supported URL schemes.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
)

func (s Scheme) String() string {
	if s == SchemeHTTPS {
		return "https"
	}
	return "http"
}

// DefaultPort is the port assumed when the URL does not name one.
func (s Scheme) DefaultPort() int {
	if s == SchemeHTTPS {
		return 443
	}
	return 80
}

// ParseScheme maps "http" and "https" (any case) to a Scheme.
func ParseScheme(s string) (Scheme, bool) {
	switch strings.ToLower(s) {
	case "http":
		return SchemeHTTP, true
	case "https":
		return SchemeHTTPS, true
	}
	return 0, false
}

// URL is a parsed http(s) URL. A URL obtained from Parse always has a
// non-empty host, a port in 1-65535 and a path starting with '/'.
// It is immutable; accessors return copies where needed.
type URL struct {
	scheme   Scheme
	user     string
	host     string
	port     int
	path     string
	query    Query
	fragment string
}

func (u *URL) Scheme() Scheme   { return u.scheme }
func (u *URL) User() string     { return u.user }
func (u *URL) Host() string     { return u.host }
func (u *URL) Port() int        { return u.port }
func (u *URL) Path() string     { return u.path }
func (u *URL) Query() Query     { return NewQuery(u.query.pairs...) }
func (u *URL) Fragment() string { return u.fragment }

// IsSecure reports whether the scheme is https.
func (u *URL) IsSecure() bool {
	return u.scheme == SchemeHTTPS
}

// HostPort returns host:port, suitable for dialing.
func (u *URL) HostPort() string {
	return u.host + ":" + strconv.Itoa(u.port)
}

// Authority returns the Host header value: the port is omitted when it is
// the scheme default.
func (u *URL) Authority() string {
	if u.port == u.scheme.DefaultPort() {
		return u.host
	}
	return u.HostPort()
}

// RequestURI returns the encoded path and query, as used on the request line.
func (u *URL) RequestURI() string {
	uri := escape(u.path, encodePath)
	if q := u.query.Encode(); q != "" {
		uri += "?" + q
	}
	return uri
}

// WithQuery returns a copy of u with key=value appended to the query.
func (u *URL) WithQuery(key, value string) *URL {
	out := *u
	out.query = u.query.With(key, value)
	return &out
}

// String returns the canonical form of u. Parsing it again yields an equal URL.
func (u *URL) String() string {
	var b strings.Builder
	b.WriteString(u.scheme.String())
	b.WriteString("://")
	if u.user != "" {
		b.WriteString(u.user)
		b.WriteByte('@')
	}
	b.WriteString(u.Authority())
	b.WriteString(u.RequestURI())
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(escape(u.fragment, encodeFragment))
	}
	return b.String()
}

// Equal reports whether both URLs have identical components.
func (u *URL) Equal(other *URL) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.scheme == other.scheme &&
		u.user == other.user &&
		u.host == other.host &&
		u.port == other.port &&
		u.path == other.path &&
		u.fragment == other.fragment &&
		u.query.Equal(other.query)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level variables.
func MustParse(input string) *URL {
	u, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return u
}
