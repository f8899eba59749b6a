package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Version string            `json:"version"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Proto      string            `json:"proto,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Text       string            `json:"text,omitempty"`
	Duration   float64           `json:"duration"`
	RequestID  string            `json:"requestId,omitempty"`
}

// JSONValue represents a value taken from a document
type JSONValue struct {
	Path  string          `json:"path"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// JSONError represents a failure
type JSONError struct {
	Kind    string `json:"kind"`
	Build   string `json:"build,omitempty"`
	Message string `json:"message"`
}

// JSONFormatter writes one JSON object per call
type JSONFormatter struct {
	writer io.Writer
}

var _ Formatter = (*JSONFormatter)(nil)

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func (f *JSONFormatter) FormatRequest(req *http.Request) {
	out := JSONRequest{
		Method:  req.Method(),
		URL:     req.URL().String(),
		Version: req.Version().String(),
		Headers: flattenHeaders(req.Headers()),
	}
	if req.HasBody() {
		out.Body = string(req.Body())
	}
	f.encode(map[string]any{"request": out})
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) {
	out := JSONResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Headers:    flattenHeaders(resp.Headers),
		Duration:   float64(resp.DurationMs()),
		RequestID:  resp.RequestID,
	}
	if json.Valid(resp.Body) {
		out.Body = resp.Body
	} else if len(resp.Body) > 0 {
		out.Text = string(resp.Body)
	}
	f.encode(map[string]any{"response": out})
}

func (f *JSONFormatter) FormatValue(path string, v jsondoc.Value) {
	f.encode(JSONValue{
		Path:  path,
		Kind:  v.Kind().String(),
		Value: json.RawMessage(v.String()),
	})
}

func (f *JSONFormatter) FormatCaptures(captures map[string]any) {
	f.encode(map[string]any{"captures": captures})
}

func (f *JSONFormatter) FormatError(err error) {
	out := JSONError{Kind: reqerr.Generic.String(), Message: err.Error()}
	var rerr *reqerr.Error
	if errors.As(err, &rerr) {
		out.Kind = rerr.Kind.String()
		if rerr.Build != 0 {
			out.Build = rerr.Build.String()
		}
	}
	f.encode(map[string]any{"error": out})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// flattenHeaders joins repeated fields with ", ".
func flattenHeaders(h *http.Headers) map[string]string {
	if h.Len() == 0 {
		return nil
	}
	out := make(map[string]string, h.Len())
	h.Each(func(name, value string) {
		if prev, ok := out[name]; ok {
			out[name] = prev + ", " + value
			return
		}
		out[name] = value
	})
	return out
}
