package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

func testResponse() *http.Response {
	return &http.Response{
		StatusCode: 201,
		Status:     "201 Created",
		Proto:      "HTTP/1.1",
		Headers:    http.NewHeaders().Add("Content-Type", "application/json").Add("Set-Cookie", "a=1").Add("Set-Cookie", "b=2"),
		Body:       []byte(`{"id":7}`),
		Duration:   42 * time.Millisecond,
		RequestID:  "req-1",
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	f, err := New("", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = New("json", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = New("xml", &buf, false, true)
	assert.Error(t, err)
}

func TestConsoleFormatter_Response(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatResponse(testResponse())

	out := buf.String()
	assert.Contains(t, out, "201 201 Created")
	assert.Contains(t, out, "HTTP/1.1 in 42ms")
	assert.Contains(t, out, "request id req-1")
	assert.Contains(t, out, "Content-Type: application/json")
	assert.Contains(t, out, "{\n  \"id\": 7\n}")
}

func TestConsoleFormatter_Request(t *testing.T) {
	req, err := http.NewBuilder("POST", "http://api.local/items?x=1").
		Header("Accept", "*/*").
		BodyString("plain").
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatRequest(req)

	assert.Equal(t, "POST /items?x=1 HTTP/1.1\nHost: api.local\nAccept: */*\n\nplain\n", buf.String())
}

func TestConsoleFormatter_Value(t *testing.T) {
	doc, err := jsondoc.Parse([]byte(`{"name":"hit","tags":["a"]}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	name, err := doc.Get(jsondoc.Key("name"))
	require.NoError(t, err)
	f.FormatValue("name", name)

	tags, err := doc.Get(jsondoc.Key("tags"))
	require.NoError(t, err)
	f.FormatValue("tags", tags)

	assert.Equal(t, "hit\n[\n  \"a\"\n]\n", buf.String())
}

func TestConsoleFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatError(reqerr.Build(reqerr.InvalidHeaders, "bad"))
	f.FormatError(fmt.Errorf("plain"))

	assert.Equal(t, "Error: request build: invalid headers: bad [request build]\nError: plain\n", buf.String())
}

func TestConsoleFormatter_Captures(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatCaptures(map[string]any{"b": 2, "a": "x", "list": []any{1, 2}})
	assert.Equal(t, "a=x\nb=2\nlist=[array with 2 items]\n", buf.String())
}

func TestJSONFormatter_Response(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter(JSONWithWriter(&buf)).FormatResponse(testResponse())

	var out struct {
		Response JSONResponse `json:"response"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 201, out.Response.StatusCode)
	assert.Equal(t, "a=1, b=2", out.Response.Headers["Set-Cookie"])
	assert.JSONEq(t, `{"id":7}`, string(out.Response.Body))
	assert.Equal(t, float64(42), out.Response.Duration)
}

func TestJSONFormatter_TextBody(t *testing.T) {
	resp := testResponse()
	resp.Body = []byte("not json")

	var buf bytes.Buffer
	NewJSONFormatter(JSONWithWriter(&buf)).FormatResponse(resp)

	var out struct {
		Response JSONResponse `json:"response"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "not json", out.Response.Text)
	assert.Nil(t, out.Response.Body)
}

func TestJSONFormatter_ValueAndError(t *testing.T) {
	doc, err := jsondoc.Parse([]byte(`{"n":[1,2]}`))
	require.NoError(t, err)
	v, err := doc.Find("n")
	require.NoError(t, err)

	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatValue("n", v)

	var value JSONValue
	require.NoError(t, json.Unmarshal(buf.Bytes(), &value))
	assert.Equal(t, "n", value.Path)
	assert.Equal(t, jsondoc.Array.String(), value.Kind)
	assert.JSONEq(t, `[1,2]`, string(value.Value))

	buf.Reset()
	f.FormatError(reqerr.Build(reqerr.InvalidVersion, "HTTP/3"))

	var out struct {
		Error JSONError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "request build", out.Error.Kind)
	assert.Equal(t, "invalid version", out.Error.Build)
}
