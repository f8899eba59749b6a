package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

var _ Formatter = (*ConsoleFormatter)(nil)

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor || !isTerminal(f.writer) {
		color.NoColor = true
	}
	return f
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatRequest prints the request as it would appear on the wire.
func (f *ConsoleFormatter) FormatRequest(req *http.Request) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", bold(req.Method()), req.URL().RequestURI(), req.Version())
	fmt.Fprintf(f.writer, "%s: %s\n", cyan("Host"), hostHeader(req))
	req.Headers().Each(func(name, value string) {
		if strings.EqualFold(name, "Host") {
			return
		}
		fmt.Fprintf(f.writer, "%s: %s\n", cyan(name), value)
	})
	if req.HasBody() {
		fmt.Fprintf(f.writer, "\n%s\n", prettyBody(req.Body()))
	}
}

func hostHeader(req *http.Request) string {
	if h := req.Header("Host"); h != "" {
		return h
	}
	return req.URL().Authority()
}

func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", statusColor(resp).Sprintf("%d", resp.StatusCode), resp.Status)
	if f.verbose {
		fmt.Fprintf(f.writer, "%s\n", faint(fmt.Sprintf("%s in %dms", resp.Proto, resp.DurationMs())))
		if resp.RequestID != "" {
			fmt.Fprintf(f.writer, "%s\n", faint("request id "+resp.RequestID))
		}
		resp.Headers.Each(func(name, value string) {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(name), value)
		})
	}
	if len(resp.Body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", prettyBody(resp.Body))
	}
}

func statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen, color.Bold)
	case resp.IsRedirect():
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// prettyBody indents JSON bodies and returns anything else unchanged.
func prettyBody(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// FormatValue prints v as indented JSON. Verbose mode prefixes the path
// and kind.
func (f *ConsoleFormatter) FormatValue(path string, v jsondoc.Value) {
	if f.verbose {
		faint := color.New(color.Faint).SprintFunc()
		fmt.Fprintf(f.writer, "%s\n", faint(fmt.Sprintf("%s (%s)", path, v.Kind())))
	}
	if s, err := v.AsString(); err == nil {
		fmt.Fprintln(f.writer, s)
		return
	}
	fmt.Fprintln(f.writer, prettyBody([]byte(v.String())))
}

func (f *ConsoleFormatter) FormatCaptures(captures map[string]any) {
	green := color.New(color.FgGreen).SprintFunc()

	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(f.writer, "%s=%s\n", green(name), formatValue(captures[name], 200))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	var rerr *reqerr.Error
	if errors.As(err, &rerr) {
		fmt.Fprintf(f.writer, "%s %v %s\n", red("Error:"), err, faint("["+rerr.Kind.String()+"]"))
		return
	}
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitcore"), version)
}
