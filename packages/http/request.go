package http

import (
	"bytes"
	"io"
	"strconv"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
	"github.com/abdul-hamid-achik/hitcore/packages/schema"
)

// Request is a validated, immutable HTTP request. Values are only produced
// by Build and Builder.Build; accessors return copies.
type Request struct {
	method  string
	url     *httpurl.URL
	version Version
	headers *Headers
	body    []byte
	expect  *Expectation
	schema  *schema.Schema
}

// Expectation is a caller-supplied contract on the response. An empty
// Status list accepts any status; a nil Schema skips body validation.
type Expectation struct {
	Status []int
	Schema []byte
}

// Allows reports whether code satisfies the status part of the contract.
func (e *Expectation) Allows(code int) bool {
	if e == nil || len(e.Status) == 0 {
		return true
	}
	for _, s := range e.Status {
		if s == code {
			return true
		}
	}
	return false
}

func (e *Expectation) clone() *Expectation {
	if e == nil {
		return nil
	}
	return &Expectation{
		Status: append([]int(nil), e.Status...),
		Schema: append([]byte(nil), e.Schema...),
	}
}

func (r *Request) Method() string    { return r.method }
func (r *Request) URL() *httpurl.URL { return r.url }
func (r *Request) Version() Version  { return r.version }
func (r *Request) Headers() *Headers { return r.headers.Clone() }
func (r *Request) HasBody() bool     { return len(r.body) > 0 }

// Header returns the first value of the named header.
func (r *Request) Header(name string) string {
	return r.headers.Get(name)
}

// Body returns a copy of the payload.
func (r *Request) Body() []byte {
	return append([]byte(nil), r.body...)
}

// Expectation returns a copy of the response contract, or nil.
func (r *Request) Expectation() *Expectation {
	return r.expect.clone()
}

// WriteTo serialises r in HTTP/1.x message form. A Host header derived from
// the URL is written first unless one was set explicitly. HTTP/2 has no
// text framing, so an HTTP/2 request is an InvalidVersion error.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	if r.version.major() != 1 {
		return 0, reqerr.Buildf(reqerr.InvalidVersion, "%s has no text request line", r.version)
	}

	var buf bytes.Buffer
	buf.WriteString(r.method)
	buf.WriteByte(' ')
	buf.WriteString(r.url.RequestURI())
	buf.WriteByte(' ')
	buf.WriteString("HTTP/")
	buf.WriteString(strconv.Itoa(r.version.major()))
	buf.WriteByte('.')
	buf.WriteString(strconv.Itoa(r.version.minor()))
	buf.WriteString("\r\n")

	if !r.headers.Has("Host") {
		buf.WriteString("Host: ")
		buf.WriteString(r.url.Authority())
		buf.WriteString("\r\n")
	}
	if _, err := r.headers.WriteTo(&buf); err != nil {
		return 0, err
	}
	buf.WriteString("\r\n")
	buf.Write(r.body)

	return buf.WriteTo(w)
}

// withHeaders returns a copy of r with h replacing its header list.
func (r *Request) withHeaders(h *Headers) *Request {
	out := *r
	out.headers = h
	return &out
}
