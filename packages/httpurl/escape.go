package httpurl

import "strings"

const upperhex = "0123456789ABCDEF"

type encoding int

const (
	encodeComponent encoding = iota
	encodePath
	encodeFragment
)

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

func shouldEscape(c byte, mode encoding) bool {
	if isUnreserved(c) {
		return false
	}
	switch mode {
	case encodePath:
		return !(isSubDelim(c) || c == ':' || c == '@' || c == '/')
	case encodeFragment:
		return !(isSubDelim(c) || c == ':' || c == '@' || c == '/' || c == '?')
	}
	return true
}

func escape(s string, mode encoding) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i], mode) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c, mode) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Encode percent-encodes every byte outside the RFC 3986 unreserved set.
func Encode(s string) string {
	return escape(s, encodeComponent)
}

// EncodePath encodes each "/"-separated segment of p with Encode, keeping
// the separators.
func EncodePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = Encode(seg)
	}
	return strings.Join(segments, "/")
}

// EncodeQueryComponent encodes a query key or value. Spaces become %20.
func EncodeQueryComponent(s string) string {
	return escape(s, encodeComponent)
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func unescape(s string, plusAsSpace bool) (string, error) {
	if strings.IndexByte(s, '%') < 0 && (!plusAsSpace || strings.IndexByte(s, '+') < 0) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%':
			if i+2 >= len(s) {
				return "", newError(IllFormed, s, "truncated escape at offset %d", i)
			}
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if !ok1 || !ok2 {
				return "", newError(IllFormed, s, "invalid escape %q at offset %d", s[i:i+3], i)
			}
			b.WriteByte(hi<<4 | lo)
			i += 2
		case c == '+' && plusAsSpace:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// Decode reverses percent-encoding. A '%' not followed by two hex digits is
// an IllFormed error.
func Decode(s string) (string, error) {
	return unescape(s, false)
}

// DecodeQueryComponent is Decode with '+' treated as a space.
func DecodeQueryComponent(s string) (string, error) {
	return unescape(s, true)
}
