package httpurl

import (
	"strconv"
	"strings"
)

const maxPort = 65535

// Parse validates input and returns the structured URL, or a *ParseError.
//
// Accepted form: scheme://[userinfo@]host[:port][/path][?query][#fragment]
// with scheme http or https. Checks run in order and the first failure wins:
// empty input, scheme, illegal characters, host, port, then the
// path/query/fragment escapes.
func Parse(input string) (*URL, error) {
	if input == "" {
		return nil, &ParseError{Kind: EmptyURL, Input: input, Detail: "input is empty"}
	}

	sep := strings.Index(input, "://")
	if sep <= 0 {
		return nil, newError(InvalidScheme, input, "missing scheme")
	}
	scheme, ok := ParseScheme(input[:sep])
	if !ok {
		return nil, newError(InvalidScheme, input, "unsupported scheme %q", input[:sep])
	}

	rest := input[sep+3:]
	for i := 0; i < len(rest); i++ {
		if c := rest[i]; c <= ' ' || c == 0x7f {
			return nil, newError(IllFormed, input, "illegal character %q at offset %d", c, sep+3+i)
		}
	}

	authority, tail := rest, ""
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		authority, tail = rest[:i], rest[i:]
	}

	u := &URL{scheme: scheme, port: scheme.DefaultPort()}

	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		if err := checkUserinfo(input, authority[:at]); err != nil {
			return nil, err
		}
		u.user = authority[:at]
		authority = authority[at+1:]
	}

	host, portStr, hasPort, err := splitHostPort(input, authority)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return nil, newError(IllFormed, input, "missing host")
	}
	if err := checkHost(input, host); err != nil {
		return nil, err
	}
	u.host = strings.ToLower(host)

	if hasPort {
		port, err := parsePort(input, portStr)
		if err != nil {
			return nil, err
		}
		u.port = port
	}

	if err := u.setTail(input, tail); err != nil {
		return nil, err
	}
	return u, nil
}

func splitHostPort(input, authority string) (host, port string, hasPort bool, err error) {
	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", "", false, newError(IllFormed, input, "unterminated IPv6 literal")
		}
		host, after := authority[:end+1], authority[end+1:]
		if after == "" {
			return host, "", false, nil
		}
		if after[0] != ':' {
			return "", "", false, newError(IllFormed, input, "unexpected %q after IPv6 literal", after)
		}
		return host, after[1:], true, nil
	}

	if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		return authority[:i], authority[i+1:], true, nil
	}
	return authority, "", false, nil
}

// checkUserinfo allows unreserved and sub-delim characters, ':' and
// well-formed %XX escapes.
func checkUserinfo(input, user string) error {
	for i := 0; i < len(user); i++ {
		c := user[i]
		switch {
		case c == '%':
			if i+2 >= len(user) {
				return newError(IllFormed, input, "malformed escape in userinfo")
			}
			if _, ok := unhex(user[i+1]); !ok {
				return newError(IllFormed, input, "malformed escape in userinfo")
			}
			if _, ok := unhex(user[i+2]); !ok {
				return newError(IllFormed, input, "malformed escape in userinfo")
			}
			i += 2
		case isUnreserved(c), isSubDelim(c), c == ':':
		default:
			return newError(IllFormed, input, "invalid character %q in userinfo", c)
		}
	}
	return nil
}

func checkHost(input, host string) error {
	if host[0] == '[' {
		if len(host) == 2 {
			return newError(IllFormed, input, "empty IPv6 literal")
		}
		for i := 1; i < len(host)-1; i++ {
			c := host[i]
			if _, ok := unhex(c); !ok && c != ':' && c != '.' {
				return newError(IllFormed, input, "invalid character %q in IPv6 literal", c)
			}
		}
		return nil
	}
	for i := 0; i < len(host); i++ {
		if c := host[i]; !isUnreserved(c) && !isSubDelim(c) {
			return newError(IllFormed, input, "invalid character %q in host", c)
		}
	}
	return nil
}

func parsePort(input, s string) (int, error) {
	if s == "" {
		return 0, newError(InvalidPort, input, "empty port")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, newError(InvalidPort, input, "port %q is not numeric", s)
		}
	}
	if len(s) > 5 {
		return 0, newError(InvalidPort, input, "port %s out of range", s)
	}
	port, _ := strconv.Atoi(s)
	if port < 1 || port > maxPort {
		return 0, newError(InvalidPort, input, "port %d out of range", port)
	}
	return port, nil
}

// setTail splits "/path?query#fragment" at the first '?' and '#'.
func (u *URL) setTail(input, tail string) error {
	rawPath, rawQuery, rawFragment := tail, "", ""
	hasFragment := false
	if i := strings.IndexByte(rawPath, '#'); i >= 0 {
		rawPath, rawFragment, hasFragment = rawPath[:i], rawPath[i+1:], true
	}
	if i := strings.IndexByte(rawPath, '?'); i >= 0 {
		rawPath, rawQuery = rawPath[:i], rawPath[i+1:]
	}

	path, err := Decode(rawPath)
	if err != nil {
		return newError(IllFormed, input, "malformed escape in path %q", rawPath)
	}
	if path == "" {
		path = "/"
	}
	u.path = path

	query, err := ParseQuery(rawQuery)
	if err != nil {
		pe := err.(*ParseError)
		pe.Input = input
		return pe
	}
	u.query = query

	if hasFragment {
		fragment, err := Decode(rawFragment)
		if err != nil {
			return newError(IllFormed, input, "malformed escape in fragment %q", rawFragment)
		}
		u.fragment = fragment
	}
	return nil
}
