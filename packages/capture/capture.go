package capture

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
)

type Source int

const (
	Body Source = iota
	Header
	Status
	Duration
)

func (s Source) String() string {
	switch s {
	case Body:
		return "body"
	case Header:
		return "header"
	case Status:
		return "status"
	case Duration:
		return "duration"
	default:
		return "unknown"
	}
}

// ParseSource maps a source name to its Source.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(s) {
	case "body":
		return Body, true
	case "header":
		return Header, true
	case "status":
		return Status, true
	case "duration":
		return Duration, true
	}
	return 0, false
}

type Capture struct {
	Name   string
	Source Source
	Path   string
}

// Parse reads "[name=]source[:path]". Without a name, the path (or the
// source when there is no path) names the capture.
func Parse(expr string) (*Capture, error) {
	name, rest := "", expr
	if eq := strings.IndexByte(expr, '='); eq >= 0 {
		if colon := strings.IndexByte(expr, ':'); colon < 0 || eq < colon {
			name, rest = expr[:eq], expr[eq+1:]
		}
	}
	srcText, path, _ := strings.Cut(rest, ":")

	src, ok := ParseSource(srcText)
	if !ok {
		return nil, fmt.Errorf("invalid capture %q: unknown source %q", expr, srcText)
	}
	if src == Header && path == "" {
		return nil, fmt.Errorf("invalid capture %q: header capture needs a header name", expr)
	}
	if name == "" {
		name = path
		if name == "" {
			name = src.String()
		}
	}
	return &Capture{Name: name, Source: src, Path: path}, nil
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() || gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = true
	}
	return e
}

func (e *Extractor) Extract(capture *Capture) (any, bool) {
	switch capture.Source {
	case Body:
		return e.extractFromBody(capture.Path)
	case Header:
		return e.extractFromHeader(capture.Path)
	case Status:
		return e.response.StatusCode, true
	case Duration:
		return e.response.DurationMs(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.isJSON {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value, ok := e.response.Headers.Lookup(name)
	if !ok {
		return nil, false
	}
	return value, true
}

// ExtractAll returns the captures that matched, keyed by name.
func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}
