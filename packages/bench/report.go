package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
)

// Reporter prints a Summary for people or as JSON.
type Reporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{writer: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	if r.noColor {
		for _, c := range []*color.Color{r.green, r.red, r.cyan, r.bold} {
			c.DisableColor()
		}
	}
	return r
}

// Summary prints the aggregated result and any threshold verdicts.
func (r *Reporter) Summary(s *Summary, results []ThresholdResult) {
	w := r.writer

	r.bold.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Requests:  %d total, ", s.Total)
	r.green.Fprintf(w, "%d ok", s.Success)
	fmt.Fprint(w, ", ")
	if s.Errors > 0 {
		r.red.Fprintf(w, "%d failed", s.Errors)
	} else {
		fmt.Fprintf(w, "%d failed", s.Errors)
	}
	fmt.Fprintf(w, " (%s)\n", formatPercent(s.ErrorRate))
	fmt.Fprintf(w, "  Duration:  %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprint(w, "  Rate:      ")
	r.cyan.Fprintf(w, "%.1f", s.RPS)
	fmt.Fprintln(w, " req/s")
	fmt.Fprintf(w, "  Latency:   p50 %s  p95 %s  p99 %s\n", s.P50, s.P95, s.P99)
	fmt.Fprintf(w, "             min %s  mean %s  max %s\n", s.Min, s.Mean, s.Max)

	if len(s.StatusCodes) > 0 {
		fmt.Fprintln(w)
		r.bold.Fprintln(w, "Status codes")
		for _, code := range s.SortedStatuses() {
			fmt.Fprintf(w, "  %d: %d\n", code, s.StatusCodes[code])
		}
	}

	if len(s.ErrorKinds) > 0 {
		fmt.Fprintln(w)
		r.bold.Fprintln(w, "Errors")
		kinds := make([]string, 0, len(s.ErrorKinds))
		for k := range s.ErrorKinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			r.red.Fprintf(w, "  %s: %d\n", k, s.ErrorKinds[k])
		}
	}

	if len(results) > 0 {
		fmt.Fprintln(w)
		r.bold.Fprintln(w, "Thresholds")
		for _, res := range results {
			if res.Passed {
				r.green.Fprint(w, "  ✓ ")
			} else {
				r.red.Fprint(w, "  ✗ ")
			}
			fmt.Fprintf(w, "%s %s (actual %s)\n", res.Name, res.Expected, res.Actual)
		}
	}
}

// JSON writes the summary and threshold verdicts as one JSON object.
func (r *Reporter) JSON(s *Summary, results []ThresholdResult) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*Summary
		Thresholds []ThresholdResult `json:"thresholds,omitempty"`
	}{s, results})
}

// Passed reports whether every threshold result passed.
func Passed(results []ThresholdResult) bool {
	for _, res := range results {
		if !res.Passed {
			return false
		}
	}
	return true
}
