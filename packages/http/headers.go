package http

import (
	"io"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// Field is one header line.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields. Lookups ignore case and
// duplicates are kept. A nil *Headers is an empty, read-only list.
type Headers struct {
	fields []Field
}

func NewHeaders() *Headers {
	return &Headers{}
}

// HeadersFromMap copies m in name order, so the result is deterministic.
func HeadersFromMap(m map[string]string) *Headers {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	h := &Headers{fields: make([]Field, 0, len(m))}
	for _, name := range names {
		h.fields = append(h.fields, Field{Name: name, Value: m[name]})
	}
	return h
}

// Add appends a field, keeping any existing ones with the same name.
func (h *Headers) Add(name, value string) *Headers {
	h.fields = append(h.fields, Field{Name: name, Value: value})
	return h
}

// Set replaces every field named name with a single one at the position of
// the first, or appends it.
func (h *Headers) Set(name, value string) *Headers {
	kept := h.fields[:0]
	replaced := false
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
			continue
		}
		if !replaced {
			kept = append(kept, Field{Name: name, Value: value})
			replaced = true
		}
	}
	h.fields = kept
	if !replaced {
		h.fields = append(h.fields, Field{Name: name, Value: value})
	}
	return h
}

// Del removes every field named name.
func (h *Headers) Del(name string) *Headers {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	h.fields = kept
	return h
}

// Get returns the first value for name, or "".
func (h *Headers) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

func (h *Headers) Lookup(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

func (h *Headers) Values(name string) []string {
	if h == nil {
		return nil
	}
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

func (h *Headers) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Fields returns a copy of the fields in order.
func (h *Headers) Fields() []Field {
	if h == nil {
		return nil
	}
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Each calls fn for every field in order.
func (h *Headers) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, f := range h.fields {
		fn(f.Name, f.Value)
	}
}

func (h *Headers) Clone() *Headers {
	return &Headers{fields: h.Fields()}
}

// WriteTo writes the fields in wire form, one "Name: Value\r\n" per field.
func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	h.Each(func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	})
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// ParseHeaderLine splits "Name: Value". Whitespace around the value is
// trimmed; the name must be a token directly followed by the colon.
func ParseHeaderLine(line string) (name, value string, err error) {
	line = strings.TrimRight(line, "\r\n")
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", reqerr.Buildf(reqerr.InvalidHeaders, "header line %q has no colon", line)
	}
	name, value = line[:i], strings.Trim(line[i+1:], " \t")
	if !isToken(name) {
		return "", "", reqerr.Buildf(reqerr.InvalidHeaders, "invalid header name %q", name)
	}
	return name, value, nil
}
