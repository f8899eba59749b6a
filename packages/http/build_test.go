package http

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

func TestBuild_Valid(t *testing.T) {
	h := NewHeaders().Add("Accept", "application/json").Add("X-Tag", "a\tb")
	req, err := Build("GET", "https://api.example.com/users?page=2", "HTTP/1.1", h, nil)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, HTTP11, req.Version())
	assert.Equal(t, "api.example.com", req.URL().Host())
	assert.Equal(t, 443, req.URL().Port())
	assert.Equal(t, "application/json", req.Header("accept"))
	assert.False(t, req.HasBody())
}

func TestBuild_DefaultVersion(t *testing.T) {
	req, err := Build("GET", "http://h/", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, HTTP11, req.Version())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		url     string
		version string
		headers *Headers
		body    string
		kind    reqerr.Kind
		build   reqerr.BuildKind
	}{
		{"empty method", "", "http://h/", "", nil, "", reqerr.RequestBuild, reqerr.InvalidMethod},
		{"method with space", "GE T", "http://h/", "", nil, "", reqerr.RequestBuild, reqerr.InvalidMethod},
		{"empty url", "GET", "", "", nil, "", reqerr.URLParse, 0},
		{"bad scheme", "GET", "ftp://h/", "", nil, "", reqerr.URLParse, 0},
		{"bad version", "GET", "http://h/", "HTTP/3", nil, "", reqerr.RequestBuild, reqerr.InvalidVersion},
		{"garbage version", "GET", "http://h/", "SPDY", nil, "", reqerr.RequestBuild, reqerr.InvalidVersion},
		{"header name with space", "GET", "http://h/", "", NewHeaders().Add("Bad Name", "x"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"empty header name", "GET", "http://h/", "", NewHeaders().Add("", "x"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"CRLF in value", "GET", "http://h/", "", NewHeaders().Add("X", "a\r\nInjected: 1"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"NUL in value", "GET", "http://h/", "", NewHeaders().Add("X", "a\x00"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"duplicate host", "GET", "http://h/", "", NewHeaders().Add("Host", "a").Add("host", "b"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"non-numeric length", "POST", "http://h/", "", NewHeaders().Add("Content-Length", "ten"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"negative length", "POST", "http://h/", "", NewHeaders().Add("Content-Length", "-1"), "", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"te with cl", "POST", "http://h/", "", NewHeaders().Add("Transfer-Encoding", "chunked").Add("Content-Length", "1"), "x", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"te on 1.0", "POST", "http://h/", "HTTP/1.0", NewHeaders().Add("Transfer-Encoding", "chunked"), "x", reqerr.RequestBuild, reqerr.InvalidHeaders},
		{"body on 1.0 without length", "POST", "http://h/", "HTTP/1.0", nil, "data", reqerr.RequestBuild, reqerr.VersionNeedsContentLength},
		{"length mismatch", "POST", "http://h/", "HTTP/1.1", NewHeaders().Add("Content-Length", "3"), "data", reqerr.RequestBuild, reqerr.VersionNeedsContentLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.body != "" {
				body = []byte(tt.body)
			}
			req, err := Build(tt.method, tt.url, tt.version, tt.headers, body)
			require.Error(t, err)
			assert.Nil(t, req)

			var rerr *reqerr.Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.kind, rerr.Kind)
			assert.Equal(t, tt.build, rerr.Build)
		})
	}
}

func TestBuild_FailFastOrder(t *testing.T) {
	bad := NewHeaders().Add("Bad Name", "x")

	// Method is checked before the URL.
	_, err := Build("", "", "HTTP/9", bad, []byte("x"))
	kind, ok := reqerr.BuildKindOf(err)
	require.True(t, ok)
	assert.Equal(t, reqerr.InvalidMethod, kind)

	// URL before version.
	_, err = Build("GET", "", "HTTP/9", bad, []byte("x"))
	assert.True(t, reqerr.IsKind(err, reqerr.URLParse))

	// Version before headers.
	_, err = Build("GET", "http://h/", "HTTP/9", bad, []byte("x"))
	kind, _ = reqerr.BuildKindOf(err)
	assert.Equal(t, reqerr.InvalidVersion, kind)

	// Headers before framing.
	_, err = Build("GET", "http://h/", "HTTP/1.0", bad, []byte("x"))
	kind, _ = reqerr.BuildKindOf(err)
	assert.Equal(t, reqerr.InvalidHeaders, kind)
}

func TestBuild_HTTP10WithContentLength(t *testing.T) {
	h := NewHeaders().Add("Content-Length", "4")
	req, err := Build("POST", "http://h/", "HTTP/1.0", h, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, HTTP10, req.Version())
	assert.Equal(t, []byte("data"), req.Body())
}

func TestBuild_URLErrorKeepsKind(t *testing.T) {
	_, err := Build("GET", "http://h:99999/", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpurl.ErrInvalidPort)
	assert.ErrorIs(t, err, reqerr.ErrURLParse)
}

func TestBuild_RejectsBadUserinfo(t *testing.T) {
	for _, raw := range []string{"http://a%zz@127.0.0.1:1/", "http://a<b@127.0.0.1:1/"} {
		_, err := Build("GET", raw, "", nil, nil)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, httpurl.ErrIllFormed, raw)
		assert.ErrorIs(t, err, reqerr.ErrURLParse, raw)
	}
}

func TestBuild_Immutability(t *testing.T) {
	h := NewHeaders().Add("X-A", "1")
	body := []byte("abc")
	req, err := Build("POST", "http://h/", "", h, body)
	require.NoError(t, err)

	h.Set("X-A", "changed")
	body[0] = 'z'
	assert.Equal(t, "1", req.Header("X-A"))
	assert.Equal(t, []byte("abc"), req.Body())

	got := req.Headers()
	got.Set("X-A", "mutated")
	req.Body()[0] = 'q'
	assert.Equal(t, "1", req.Header("X-A"))
	assert.Equal(t, []byte("abc"), req.Body())
}

func TestBuilder(t *testing.T) {
	req, err := NewBuilder("POST", "http://api.local:8080/items").
		Query("dry", "1").
		Header("X-Trace", "t1").
		JSON(map[string]int{"n": 1}).
		ContentLength().
		BearerToken("tok").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "/items?dry=1", req.URL().RequestURI())
	assert.Equal(t, "application/json", req.Header("Content-Type"))
	assert.Equal(t, "7", req.Header("Content-Length"))
	assert.Equal(t, "Bearer tok", req.Header("Authorization"))
	assert.JSONEq(t, `{"n":1}`, string(req.Body()))
}

func TestBuilder_BasicAuth(t *testing.T) {
	req, err := NewBuilder("GET", "http://h/").BasicAuth("user", "pass").Build()
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz", req.Header("Authorization"))
}

func TestBuilder_Version(t *testing.T) {
	_, err := NewBuilder("POST", "http://h/").Version(HTTP10).BodyString("x").Build()
	assert.ErrorIs(t, err, reqerr.ErrVersionNeedsContentLength)

	req, err := NewBuilder("POST", "http://h/").Version(HTTP10).BodyString("x").ContentLength().Build()
	require.NoError(t, err)
	assert.Equal(t, "1", req.Header("Content-Length"))

	_, err = NewBuilder("GET", "http://h/").Version(Version(42)).Build()
	assert.ErrorIs(t, err, reqerr.ErrInvalidVersion)

	req, err = NewBuilder("GET", "http://h/").VersionString("2").Build()
	require.NoError(t, err)
	assert.Equal(t, HTTP2, req.Version())
}

func TestBuilder_JSONError(t *testing.T) {
	_, err := NewBuilder("POST", "http://h/").JSON(make(chan int)).Build()
	require.Error(t, err)
	assert.True(t, reqerr.IsKind(err, reqerr.Generic))
}

func TestBuilder_Expectation(t *testing.T) {
	_, err := NewBuilder("GET", "http://h/").Expect(Expectation{Status: []int{200, 99}}).Build()
	assert.ErrorIs(t, err, reqerr.ErrInvalidResponse)

	_, err = NewBuilder("GET", "http://h/").Expect(Expectation{Schema: []byte(`{"type": 5}`)}).Build()
	assert.ErrorIs(t, err, reqerr.ErrInvalidResponse)

	req, err := NewBuilder("GET", "http://h/").Expect(Expectation{Status: []int{200}, Schema: []byte(`{"type":"object"}`)}).Build()
	require.NoError(t, err)
	exp := req.Expectation()
	require.NotNil(t, exp)
	assert.True(t, exp.Allows(200))
	assert.False(t, exp.Allows(404))
}

func TestBuilder_Reuse(t *testing.T) {
	b := NewBuilder("GET", "http://h/").Header("X-A", "1")
	first, err := b.Build()
	require.NoError(t, err)

	b.Header("X-B", "2")
	second, err := b.Build()
	require.NoError(t, err)

	assert.False(t, first.Headers().Has("X-B"))
	assert.True(t, second.Headers().Has("X-B"))
}

func TestRequest_WriteTo(t *testing.T) {
	req, err := NewBuilder("POST", "http://example.com:8080/a%20b?q=1").
		Header("Accept", "*/*").
		BodyString("hi").
		ContentLength().
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := req.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	expected := "POST /a%20b?q=1 HTTP/1.1\r\n" +
		"Host: example.com:8080\r\n" +
		"Accept: */*\r\n" +
		"Content-Length: 2\r\n" +
		"\r\n" +
		"hi"
	assert.Equal(t, expected, buf.String())
}

func TestRequest_WriteToExplicitHost(t *testing.T) {
	req, err := Build("GET", "http://example.com/", "HTTP/1.0", NewHeaders().Add("Host", "other"), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = req.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.0\r\nHost: other\r\n\r\n", buf.String())
}

func TestRequest_WriteToHTTP2(t *testing.T) {
	req, err := Build("GET", "http://example.com/", "HTTP/2", nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := req.WriteTo(&buf)
	assert.ErrorIs(t, err, reqerr.ErrInvalidVersion)
	assert.Equal(t, int64(0), n)
	assert.Zero(t, buf.Len())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected Version
		ok       bool
	}{
		{"HTTP/1.0", HTTP10, true},
		{"http/1.1", HTTP11, true},
		{"HTTP/2", HTTP2, true},
		{"HTTP/2.0", HTTP2, true},
		{"1.1", HTTP11, true},
		{"", HTTP11, true},
		{"HTTP/3", 0, false},
		{"HTTP/1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := ParseVersion(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}

	assert.False(t, HTTP10.SupportsChunked())
	assert.True(t, HTTP11.SupportsChunked())
	assert.True(t, HTTP2.SupportsChunked())
}
