package http

import (
	"encoding/base64"
	"encoding/json"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// Builder accumulates request parts and validates them all at once in Build.
// Setters never fail; problems surface from Build in the documented order.
type Builder struct {
	d draft
}

func NewBuilder(method, rawURL string) *Builder {
	return &Builder{d: draft{
		method:  method,
		rawURL:  rawURL,
		version: HTTP11,
		headers: NewHeaders(),
	}}
}

func (b *Builder) Version(v Version) *Builder {
	b.d.version = v
	b.d.hasText = false
	return b
}

// VersionString sets the version from its textual form, see ParseVersion.
func (b *Builder) VersionString(s string) *Builder {
	b.d.versionText = s
	b.d.hasText = true
	return b
}

// Header appends a header field.
func (b *Builder) Header(name, value string) *Builder {
	b.d.headers.Add(name, value)
	return b
}

// Headers appends every field of h.
func (b *Builder) Headers(h *Headers) *Builder {
	h.Each(func(name, value string) {
		b.d.headers.Add(name, value)
	})
	return b
}

func (b *Builder) Body(body []byte) *Builder {
	b.d.body = append([]byte(nil), body...)
	return b
}

func (b *Builder) BodyString(body string) *Builder {
	b.d.body = []byte(body)
	return b
}

// JSON marshals v as the body and sets Content-Type unless already present.
func (b *Builder) JSON(v any) *Builder {
	data, err := json.Marshal(v)
	if err != nil {
		b.d.err = reqerr.Newf("encode json body: %w", err)
		return b
	}
	b.d.body = data
	if !b.d.headers.Has("Content-Type") {
		b.d.headers.Set("Content-Type", "application/json")
	}
	return b
}

// ContentLength makes Build set Content-Length to the final body length.
func (b *Builder) ContentLength() *Builder {
	b.d.setLength = true
	return b
}

func (b *Builder) BasicAuth(username, password string) *Builder {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	b.d.headers.Set("Authorization", "Basic "+creds)
	return b
}

func (b *Builder) BearerToken(token string) *Builder {
	b.d.headers.Set("Authorization", "Bearer "+token)
	return b
}

// Query appends key=value to the URL query.
func (b *Builder) Query(key, value string) *Builder {
	b.d.query = append(b.d.query, httpurl.QueryPair{Key: key, Value: value})
	return b
}

func (b *Builder) Expect(e Expectation) *Builder {
	b.d.expect = e.clone()
	return b
}

// Build validates the accumulated parts. The Builder may be reused; each
// call returns an independent Request.
func (b *Builder) Build() (*Request, error) {
	return b.d.build()
}
