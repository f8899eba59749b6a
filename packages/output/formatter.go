package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
)

// Formatter renders command results.
type Formatter interface {
	FormatRequest(req *http.Request)
	FormatResponse(resp *http.Response)
	FormatValue(path string, v jsondoc.Value)
	FormatCaptures(captures map[string]any)
	FormatError(err error)
	FormatHeader(version string)
}

// New returns the formatter registered under name. An empty name selects
// the console formatter.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console or json)", name)
	}
}
