package http

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
	"github.com/abdul-hamid-achik/hitcore/packages/schema"
)

// Build validates its inputs and returns an immutable Request. version may be
// empty for HTTP/1.1 and headers may be nil. Checks run in a fixed order and
// the first violation is returned as a *reqerr.Error:
//
//  1. method is a non-empty token (InvalidMethod)
//  2. rawURL parses (URLParse)
//  3. version is supported (InvalidVersion)
//  4. header names and values are well formed (InvalidHeaders)
//  5. the body can be framed on the chosen version (VersionNeedsContentLength)
//  6. a Builder expectation names real status codes and a compilable schema
//     (InvalidResponse)
func Build(method, rawURL, version string, headers *Headers, body []byte) (*Request, error) {
	d := draft{
		method:      method,
		rawURL:      rawURL,
		versionText: version,
		hasText:     true,
		headers:     headers,
		body:        body,
	}
	return d.build()
}

// draft is the mutable state shared by Build and Builder.
type draft struct {
	method      string
	rawURL      string
	version     Version
	versionText string
	hasText     bool
	headers     *Headers
	body        []byte
	query       []httpurl.QueryPair
	expect      *Expectation
	setLength   bool
	err         error
}

func (d *draft) build() (*Request, error) {
	if d.err != nil {
		return nil, d.err
	}

	if !isToken(d.method) {
		return nil, reqerr.Buildf(reqerr.InvalidMethod, "method %q is not a valid token", d.method)
	}

	u, err := httpurl.Parse(d.rawURL)
	if err != nil {
		return nil, reqerr.From(err)
	}
	for _, p := range d.query {
		u = u.WithQuery(p.Key, p.Value)
	}

	version := d.version
	if d.hasText {
		v, ok := ParseVersion(d.versionText)
		if !ok {
			return nil, reqerr.Buildf(reqerr.InvalidVersion, "unsupported version %q", d.versionText)
		}
		version = v
	}
	if !version.valid() {
		return nil, reqerr.Buildf(reqerr.InvalidVersion, "unsupported version %d", int(version))
	}

	headers := d.headers.Clone()
	if d.setLength {
		headers.Set("Content-Length", strconv.Itoa(len(d.body)))
	}
	if err := validateHeaders(headers, version); err != nil {
		return nil, err
	}
	if err := validateFraming(headers, version, len(d.body)); err != nil {
		return nil, err
	}

	compiled, err := validateExpectation(d.expect)
	if err != nil {
		return nil, err
	}

	return &Request{
		method:  d.method,
		url:     u,
		version: version,
		headers: headers,
		body:    append([]byte(nil), d.body...),
		expect:  d.expect.clone(),
		schema:  compiled,
	}, nil
}

var restrictedHeaders = []string{"Host", "Content-Length", "Transfer-Encoding"}

func validateHeaders(h *Headers, version Version) error {
	for _, f := range h.fields {
		if !isToken(f.Name) {
			return reqerr.Buildf(reqerr.InvalidHeaders, "invalid header name %q", f.Name)
		}
		if i := invalidValueByte(f.Value); i >= 0 {
			return reqerr.Buildf(reqerr.InvalidHeaders, "header %q contains control character %#02x", f.Name, f.Value[i])
		}
	}

	for _, name := range restrictedHeaders {
		if n := len(h.Values(name)); n > 1 {
			return reqerr.Buildf(reqerr.InvalidHeaders, "header %q appears %d times", name, n)
		}
	}

	if cl, ok := h.Lookup("Content-Length"); ok {
		if _, err := parseContentLength(cl); err != nil {
			return reqerr.Buildf(reqerr.InvalidHeaders, "invalid Content-Length %q", cl)
		}
	}

	if h.Has("Transfer-Encoding") {
		if h.Has("Content-Length") {
			return reqerr.Build(reqerr.InvalidHeaders, "Transfer-Encoding and Content-Length are mutually exclusive")
		}
		if !version.SupportsChunked() {
			return reqerr.Buildf(reqerr.InvalidHeaders, "Transfer-Encoding is not allowed on %s", version)
		}
	}
	return nil
}

func validateFraming(h *Headers, version Version, bodyLen int) error {
	if cl, ok := h.Lookup("Content-Length"); ok {
		n, _ := parseContentLength(cl)
		if n != int64(bodyLen) {
			return reqerr.Buildf(reqerr.VersionNeedsContentLength,
				"Content-Length %d does not match body length %d", n, bodyLen)
		}
		return nil
	}
	if bodyLen > 0 && !version.SupportsChunked() && !h.Has("Transfer-Encoding") {
		return reqerr.Buildf(reqerr.VersionNeedsContentLength,
			"%s request with a body requires Content-Length", version)
	}
	return nil
}

func validateExpectation(e *Expectation) (*schema.Schema, error) {
	if e == nil {
		return nil, nil
	}
	for _, code := range e.Status {
		if code < 100 || code > 599 {
			return nil, reqerr.Buildf(reqerr.InvalidResponse, "expected status %d is not a valid status code", code)
		}
	}
	if len(e.Schema) == 0 {
		return nil, nil
	}
	compiled, err := schema.Compile(e.Schema)
	if err != nil {
		return nil, reqerr.Build(reqerr.InvalidResponse, err.Error())
	}
	return compiled, nil
}

func parseContentLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(s, 10, 64)
}

// isToken reports whether s is a non-empty RFC 9110 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

// invalidValueByte returns the index of the first control character other
// than HTAB in v, or -1.
func invalidValueByte(v string) int {
	for i := 0; i < len(v); i++ {
		if c := v[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			return i
		}
	}
	return -1
}
