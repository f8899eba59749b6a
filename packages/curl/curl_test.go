package curl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

func TestParse_SimpleGet(t *testing.T) {
	c, err := Parse(`curl https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "GET", c.Method)
	assert.Equal(t, "https://api.example.com/users", c.URL)
	assert.Equal(t, 0, c.Headers.Len())
}

func TestParse_PostWithData(t *testing.T) {
	c, err := Parse(`curl -X POST https://api.example.com/users -d '{"name":"John"}'`)
	require.NoError(t, err)

	assert.Equal(t, "POST", c.Method)
	assert.Equal(t, `{"name":"John"}`, c.Body)
}

func TestParse_ImplicitPost(t *testing.T) {
	c, err := Parse(`curl -d "name=John" -d age=3 https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "POST", c.Method)
	assert.Equal(t, "name=John&age=3", c.Body)

	// An explicit method wins regardless of flag order.
	c, err = Parse(`curl -X PUT -d x https://h/`)
	require.NoError(t, err)
	assert.Equal(t, "PUT", c.Method)
}

func TestParse_Headers(t *testing.T) {
	c, err := Parse(`curl -H "Content-Type: application/json" -H 'X-Multi: 1' -H 'X-Multi: 2' -A agent/1 -b a=1 https://api.example.com/users`)
	require.NoError(t, err)

	assert.Equal(t, "application/json", c.Headers.Get("content-type"))
	assert.Equal(t, []string{"1", "2"}, c.Headers.Values("X-Multi"))
	assert.Equal(t, "agent/1", c.Headers.Get("User-Agent"))
	assert.Equal(t, "a=1", c.Headers.Get("Cookie"))
}

func TestParse_Switches(t *testing.T) {
	c, err := Parse("curl -k -L --http1.0 \\\n  --compressed https://h/x")
	require.NoError(t, err)

	assert.True(t, c.Insecure)
	assert.True(t, c.FollowRedirects)
	assert.Equal(t, "HTTP/1.0", c.Version)
	assert.Equal(t, "https://h/x", c.URL)

	c, err = Parse(`curl -I https://h/`)
	require.NoError(t, err)
	assert.Equal(t, "HEAD", c.Method)

	c, err = Parse(`curl --json '{"a":1}' https://h/`)
	require.NoError(t, err)
	assert.Equal(t, "POST", c.Method)
	assert.Equal(t, "application/json", c.Headers.Get("Accept"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(`curl -X GET`)
	assert.Error(t, err)

	_, err = Parse(`curl`)
	assert.ErrorIs(t, err, ErrNoURL)

	_, err = Parse(`curl -H "no colon" https://h/`)
	assert.ErrorIs(t, err, reqerr.ErrInvalidHeaders)
}

func TestCommand_Builder(t *testing.T) {
	c, err := Parse(`curl -u admin:secret -H 'Accept: */*' --data-raw '{"a":1}' https://api.example.com/items`)
	require.NoError(t, err)

	req, err := c.Builder().Build()
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "Basic YWRtaW46c2VjcmV0", req.Header("Authorization"))
	assert.Equal(t, "*/*", req.Header("Accept"))
	assert.Equal(t, []byte(`{"a":1}`), req.Body())

	// HTTP/1.0 with a body and no length is rejected by request validation.
	c, err = Parse(`curl --http1.0 -d x https://h/`)
	require.NoError(t, err)
	_, err = c.Builder().Build()
	assert.ErrorIs(t, err, reqerr.ErrVersionNeedsContentLength)
}

func TestFormat_RoundTrip(t *testing.T) {
	req, err := http.NewBuilder("PATCH", "https://api.example.com/items/1?x=a%20b").
		VersionString("2").
		Header("Content-Type", "application/json").
		Header("X-Quote", "it's").
		BodyString(`{"name":"new name"}`).
		Build()
	require.NoError(t, err)

	line := Format(req)
	assert.Equal(t, `curl -X PATCH --http2 -H 'Content-Type: application/json' -H 'X-Quote: it'\''s' --data-binary '{"name":"new name"}' 'https://api.example.com/items/1?x=a%20b'`, line)

	c, err := Parse(line)
	require.NoError(t, err)
	again, err := c.Builder().Build()
	require.NoError(t, err)

	assert.Equal(t, req.Method(), again.Method())
	assert.Equal(t, req.Version(), again.Version())
	assert.True(t, req.URL().Equal(again.URL()))
	assert.Equal(t, req.Headers().Fields(), again.Headers().Fields())
	assert.Equal(t, req.Body(), again.Body())
}

func TestFormat_Get(t *testing.T) {
	req, err := http.NewBuilder("GET", "http://h/").Build()
	require.NoError(t, err)
	assert.Equal(t, "curl http://h/", Format(req))
}
